package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/eventloop"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/gstengine"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/framerate"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/headless"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/overlay"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/pixfmt"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/restart"
)

var runOpts struct {
	output    string
	format    string
	every     int
	maxFrames int
	noRestart bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the live view and run until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.Output.Dir = runOpts.output
		}
		if flags.Changed("snapshot-format") {
			cfg.Output.Format = runOpts.format
		}
		if flags.Changed("every") {
			cfg.Output.Every = runOpts.every
		}
		if flags.Changed("max-frames") {
			cfg.Output.MaxFrames = runOpts.maxFrames
		}
		if runOpts.noRestart {
			cfg.Restart.Enabled = false
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runLive(cmd.Context())
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runOpts.output, "output", "o", "", "Directory to save drawn frames (optional)")
	f.StringVar(&runOpts.format, "snapshot-format", "png", "Snapshot format: png, jpeg")
	f.IntVar(&runOpts.every, "every", 1, "Save every Nth drawn frame")
	f.IntVar(&runOpts.maxFrames, "max-frames", 0, "Stop after saving N frames (0 = unlimited)")
	f.BoolVar(&runOpts.noRestart, "no-restart", false, "Do not restart capture after errors")
	rootCmd.AddCommand(runCmd)
}

// runLive owns the GUI thread: every controller call happens on this
// goroutine, either directly or through the event loop.
func runLive(ctx context.Context) error {
	capture, err := cfg.Capture()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printBanner(capture)

	loop := eventloop.New()
	defer loop.Close()

	drawn := framerate.NewWindow(cfg.StatsInterval)
	flips := framerate.NewWindow(cfg.StatsInterval)

	var screen liveview.Overlay
	if capture.Mode == liveview.OverlayZeroCopy {
		size := pixfmt.FrameSize(capture.Format.Token(), capture.Rect.Dx(), capture.Rect.Dy())
		fb, err := overlay.Open(overlay.Config{
			Path: cfg.Overlay.Device,
			Size: size,
			GEM:  cfg.Overlay.GEM,
			OnFlip: func() {
				flips.Add(time.Now())
			},
		})
		if err != nil {
			return err
		}
		// Unmapped after the controller stopped writing into it.
		defer fb.Close()
		screen = fb
	}

	widget := headless.New(capture.Rect, capture.Format, screen)

	ctl, err := liveview.New(widget, loop, gstengine.NewRuntime(), capture)
	if err != nil {
		return err
	}
	defer ctl.Close()

	var rec *headless.Recorder
	if cfg.Output.Dir != "" {
		rec, err = headless.NewRecorder(headless.RecorderConfig{
			Dir:         cfg.Output.Dir,
			Format:      cfg.Output.Format,
			JPEGQuality: cfg.Output.JPEGQuality,
			Every:       cfg.Output.Every,
			MaxFrames:   cfg.Output.MaxFrames,
		})
		if err != nil {
			return err
		}
	}

	widget.OnDamage = func() {
		if err := ctl.Draw(widget.Surface()); err != nil {
			slog.Warn("live-view: draw failed", "error", err)
			return
		}
		drawn.Add(time.Now())

		if rec == nil {
			return
		}
		if _, err := rec.Frame(widget.Content()); err != nil {
			if errors.Is(err, headless.ErrDone) {
				slog.Info("live-view: snapshot limit reached, stopping", "saved", rec.Saved())
				cancel()
				return
			}
			slog.Error("live-view: snapshot failed", "error", err)
		}
	}

	widget.On(liveview.EventPropertyChanged, func() {
		slog.Debug("live-view: state changed", "state", ctl.State())
	})

	policy := restart.Policy{
		MaxRetries:   cfg.Restart.MaxRetries,
		InitialDelay: cfg.Restart.InitialDelay,
		MaxDelay:     cfg.Restart.MaxDelay,
	}
	var rs restart.State
	restarting := false // GUI thread only

	widget.On(liveview.EventError, func() {
		fmt.Printf("\n❌ Capture error: %s\n", ctl.ErrorMessage())
		if !cfg.Restart.Enabled || restarting {
			return
		}
		restarting = true
		go func() {
			err := restart.Run(ctx, func(ctx context.Context) error {
				return startOnLoop(ctx, loop, ctl)
			}, policy, &rs)
			loop.Post(func() { restarting = false })

			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("live-view: giving up on capture", "error", err)
				cancel()
			}
		}()
	})

	if err := ctl.Start(); err != nil && !cfg.Restart.Enabled {
		return err
	}

	fmt.Printf("Starting live view...\n")
	fmt.Printf("Press Ctrl+C to stop gracefully\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n\n")

	started := time.Now()
	window := drawn
	if capture.Mode == liveview.OverlayZeroCopy {
		window = flips
	}
	if cfg.StatsInterval > 0 {
		go reportStats(ctx, ctl, window, &rs, started)
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Frames still queued own engine samples; release them through the
	// closed controller before the loop goes away.
	ctl.Close()
	loop.Close()
	loop.RunPending()

	printFinalStats(ctl.Stats(), window, &rs, time.Since(started))
	return nil
}

// startOnLoop runs ctl.Start on the GUI thread and waits for its result.
func startOnLoop(ctx context.Context, loop *eventloop.Queue, ctl *liveview.Controller) error {
	done := make(chan error, 1)
	loop.Post(func() {
		done <- ctl.Start()
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func reportStats(ctx context.Context, ctl *liveview.Controller, window *framerate.Window, rs *restart.State, started time.Time) {
	ticker := time.NewTicker(cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			stats := ctl.Stats()
			report := window.Report(now)
			printStats(stats, report, rs, now.Sub(started))

			if report.UnderDelivering(cfg.Camera.Framerate) {
				fmt.Printf("⚠️  WARNING: camera delivers %.1f fps, configured %d fps\n\n",
					report.FPSMean, cfg.Camera.Framerate)
			}
		}
	}
}

func printBanner(c liveview.Config) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║              Live View - Orion 2.0 Module                 ║\n")
	fmt.Printf("║                      Version %s                       ║\n", Version)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Device:        %s\n", c.Device)
	fmt.Printf("  Box:           %v (%dx%d)\n", c.Rect, c.Rect.Dx(), c.Rect.Dy())
	fmt.Printf("  Format:        %s (%s)\n", c.Format, c.Format.Token())
	fmt.Printf("  Framerate:     %d fps\n", c.Framerate)
	fmt.Printf("  Mode:          %s\n", c.Mode)
	if c.Mode == liveview.OverlayZeroCopy {
		fmt.Printf("  Overlay:       %s (kmssink: %v)\n", cfg.Overlay.Device, c.KMSSink)
	}
	if cfg.Output.Dir != "" {
		fmt.Printf("  Output Dir:    %s (%s, every %d)\n", cfg.Output.Dir, cfg.Output.Format, cfg.Output.Every)
	} else {
		fmt.Printf("  Output Dir:    (none - frames not saved)\n")
	}
	if cfg.Restart.Enabled {
		fmt.Printf("  Restart:       up to %d retries\n", cfg.Restart.MaxRetries)
	} else {
		fmt.Printf("  Restart:       disabled\n")
	}
	fmt.Printf("\n")
}

func printStats(s liveview.Stats, r framerate.Report, rs *restart.State, uptime time.Duration) {
	fmt.Printf("\n")
	fmt.Printf("╭─────────────────────────────────────────────────────────╮\n")
	fmt.Printf("│ Live View Statistics (Uptime: %s)\n", uptime.Round(time.Second))
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ State:              %s\n", s.State)
	fmt.Printf("│ Session:            %s\n", s.SessionID)
	loopState := "stopped"
	if s.EngineRunning {
		loopState = "running"
	}
	fmt.Printf("│ Engine Loop:        %s\n", loopState)
	fmt.Printf("│ Frames Delivered:   %6d\n", s.FramesDelivered)
	fmt.Printf("│ Frames Drawn:       %6d\n", s.FramesDrawn)
	fmt.Printf("│ Frames Superseded:  %6d\n", s.FramesSuperseded)
	fmt.Printf("│ Overlay Flips:      %6d\n", s.OverlayFlips)
	fmt.Printf("│ Flow Errors:        %6d\n", s.FlowErrors)
	fmt.Printf("│ FPS (window):       %6.2f fps (±%.2f)\n", r.FPSMean, r.FPSStdDev)
	fmt.Printf("│ Jitter Max:         %6.3f s\n", r.JitterMax)
	fmt.Printf("│ Restarts:           %6d\n", rs.Restarts.Load())
	fmt.Printf("╰─────────────────────────────────────────────────────────╯\n")
}

func printFinalStats(s liveview.Stats, window *framerate.Window, rs *restart.State, uptime time.Duration) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║                    Final Statistics                       ║\n")
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("  Uptime:            %s\n", uptime.Round(time.Second))
	fmt.Printf("  Pipelines Started: %d\n", s.Starts)
	fmt.Printf("  Frames Delivered:  %d\n", s.FramesDelivered)
	fmt.Printf("  Frames Drawn:      %d\n", s.FramesDrawn)
	fmt.Printf("  Frames Superseded: %d\n", s.FramesSuperseded)
	fmt.Printf("  Frames Stale:      %d\n", s.FramesStale)
	fmt.Printf("  Overlay Flips:     %d\n", s.OverlayFlips)
	fmt.Printf("  Bytes To Overlay:  %d\n", s.BytesRead)
	fmt.Printf("  Frames Measured:   %d\n", window.Total())
	fmt.Printf("  Restarts:          %d\n", rs.Restarts.Load())
	for category, n := range s.BusErrors {
		if n > 0 {
			fmt.Printf("  Bus Errors (%s): %d\n", category, n)
		}
	}
	fmt.Printf("\n")
}
