// Package delivery moves decoded frames from the engine's streaming thread
// to their destination: straight into an overlay plane, or across to the GUI
// thread for drawing.
package delivery

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// Mode selects the delivery path
type Mode int

const (
	// ModeBuffered hands each sample to the GUI thread.
	ModeBuffered Mode = iota
	// ModeOverlay copies each sample into the overlay buffer on the
	// streaming thread.
	ModeOverlay
)

// ErrNoSample marks a new-sample callback that found no sample.
var ErrNoSample = errors.New("no sample available")

// Poster schedules fn on the GUI event loop.
type Poster interface {
	Post(fn func())
}

// Overlay is the hardware plane written in ModeOverlay.
type Overlay interface {
	Raw() []byte
	ScheduleFlip()
}

// Counters holds atomic counters shared with the owner
type Counters struct {
	Delivered  atomic.Uint64 // samples handed over (posted or copied)
	FlowErrors atomic.Uint64 // callbacks that found no sample
	Flips      atomic.Uint64 // overlay flips requested
	BytesRead  atomic.Uint64 // mapped bytes copied to the overlay
}

// Config contains the parameters of one bridge
type Config struct {
	Mode Mode
	// Overlay is captured once when the pipeline starts. It is never read
	// from widget state on the streaming thread.
	Overlay Overlay
	Poster  Poster
	// Deliver runs on the GUI thread with a frame the callee now owns.
	Deliver  func(f *Frame)
	Counters *Counters
}

// Bridge is the new-sample callback of one pipeline.
type Bridge struct {
	cfg    Config
	seq    atomic.Uint64
	closed atomic.Bool
}

// New creates a bridge. A nil Counters is replaced by a private one.
func New(cfg Config) *Bridge {
	if cfg.Counters == nil {
		cfg.Counters = &Counters{}
	}
	return &Bridge{cfg: cfg}
}

// OnNewSample is called by the engine when a new frame is available.
//
// It runs on the engine's streaming thread. Returns engine.FlowError when no
// sample could be pulled; the pipeline keeps running and later callbacks
// may succeed.
func (b *Bridge) OnNewSample(sink engine.SampleSink) engine.Flow {
	sample := sink.PullSample()
	if sample == nil {
		b.cfg.Counters.FlowErrors.Add(1)
		slog.Debug("delivery: new-sample callback failed", "error", ErrNoSample)
		return engine.FlowError
	}

	if b.closed.Load() {
		sample.Release()
		return engine.FlowOK
	}

	switch b.cfg.Mode {
	case ModeOverlay:
		b.writeOverlay(sample)
	default:
		b.post(sample)
	}

	return engine.FlowOK
}

// writeOverlay copies the sample into the overlay plane and requests a
// flip. The sample never outlives this call and the GUI loop is not
// involved.
func (b *Bridge) writeOverlay(sample engine.Sample) {
	defer sample.Release()

	overlay := b.cfg.Overlay
	if overlay == nil {
		slog.Warn("delivery: overlay mode without an overlay plane, dropping frame")
		return
	}

	data, err := sample.Map()
	if err != nil {
		slog.Warn("delivery: failed to map sample buffer", "error", err)
		return
	}
	defer sample.Unmap()

	dst := overlay.Raw()
	n := copy(dst, data)
	if n < len(data) {
		slog.Debug("delivery: overlay buffer smaller than frame, truncated",
			"frame_bytes", len(data),
			"overlay_bytes", len(dst),
		)
	}
	overlay.ScheduleFlip()

	b.cfg.Counters.Delivered.Add(1)
	b.cfg.Counters.Flips.Add(1)
	b.cfg.Counters.BytesRead.Add(uint64(n))
}

// post wraps the sample in a Frame and hands it to the GUI thread.
func (b *Bridge) post(sample engine.Sample) {
	f := &Frame{
		Sample:  sample,
		Seq:     b.seq.Add(1),
		Arrived: time.Now(),
		TraceID: uuid.New().String(),
	}
	b.cfg.Counters.Delivered.Add(1)

	slog.Debug("delivery: frame posted",
		"seq", f.Seq,
		"trace_id", f.TraceID,
	)

	deliver := b.cfg.Deliver
	b.cfg.Poster.Post(func() {
		deliver(f)
	})
}

// Close makes later callbacks release their sample immediately. Frames
// already posted are still handed to Deliver.
func (b *Bridge) Close() {
	b.closed.Store(true)
}
