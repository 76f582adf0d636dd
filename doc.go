// Package liveview shows live camera video inside a GUI widget using
// GStreamer.
//
// A Controller builds a capture pipeline for a V4L2 device, runs it on a
// dedicated processing thread, and delivers decoded frames to the widget in
// one of two ways:
//
//   - OverlayZeroCopy: frames are written straight into the widget's
//     hardware overlay plane on the engine's streaming thread, then a flip
//     is scheduled. The GUI thread is never involved.
//   - BufferedSample: each frame is handed to the GUI thread, kept as the
//     single pending frame, and painted into the widget's content box on the
//     next Draw.
//
// # Quick Start
//
//	loop := eventloop.New()
//	go loop.Run(ctx) // the GUI thread
//
//	cfg := liveview.Config{
//	    Device: "/dev/video0",
//	    Rect:   image.Rect(0, 0, 320, 240),
//	    Format: liveview.FormatRGB565,
//	    Mode:   liveview.BufferedSample,
//	}
//
//	ctl, err := liveview.New(widget, loop, gstengine.NewRuntime(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctl.Close()
//
//	// On the GUI thread:
//	if err := ctl.Start(); err != nil {
//	    log.Printf("capture failed: %s", ctl.ErrorMessage())
//	}
//
//	// From the widget's paint handler (GUI thread):
//	_ = ctl.Draw(surface)
//
// # Threading
//
// Every Controller method except Stats must be called on the GUI thread,
// the single goroutine draining the EventLoop. Frames and bus messages
// arrive on engine threads; whatever they need to do on the GUI thread is
// posted as a closure. The EventLoop must never block Post, because Stop
// waits for in-flight frame callbacks that may be posting at that moment.
//
// # Frame Ownership
//
// At most one buffered frame is held at a time. A newer frame releases the
// older one before taking its place (replace-not-queue), so a slow painter
// only ever draws the latest image and never builds a backlog. Pending
// frames are released when drawn, superseded, or when the pipeline stops.
//
// # Errors
//
// Construction fails with *InitializationError if the engine cannot be
// initialized. Start returns *PipelineBuildError or *StateTransitionError;
// in both cases ErrorMessage holds the text and the widget's EventError
// handlers have been invoked. Runtime pipeline errors (device unplugged,
// caps negotiation failure) are reported the same way through the bus,
// asynchronously.
package liveview
