package liveview

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/busdispatch"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/delivery"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/pipeline"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/processing"
)

const (
	msgNoAppSink = "failed to get app sink element"
	msgPlayState = "failed to set pipeline to play state"
	msgNoRunLoop = "engine run loop is not running"
)

// Controller owns the capture pipeline of one widget.
//
// Apart from Stats, methods must be called on the GUI thread.
type Controller struct {
	widget  Widget
	loop    EventLoop
	runtime engine.Runtime
	cfg     Config
	thread  *processing.Thread

	// GUI thread only
	pipeline   engine.Pipeline
	bridge     *delivery.Bridge
	dispatcher *busdispatch.Dispatcher
	pending    delivery.Slot
	errorMsg   string
	generation uint64
	closed     bool

	// Shared with Stats
	mu        sync.Mutex
	state     State
	sessionID string
	active    *busdispatch.Dispatcher
	busTotals busdispatch.Counts

	counters   delivery.Counters
	starts     atomic.Uint64
	superseded atomic.Uint64
	drawn      atomic.Uint64
	stale      atomic.Uint64
}

// New creates a controller and starts the engine's processing thread.
//
// No pipeline is built until Start. Returns *InitializationError if the
// engine runtime cannot be initialized.
func New(w Widget, loop EventLoop, rt engine.Runtime, cfg Config) (*Controller, error) {
	if w == nil {
		return nil, fmt.Errorf("widget is required")
	}
	if loop == nil {
		return nil, fmt.Errorf("event loop is required")
	}
	if rt == nil {
		return nil, fmt.Errorf("engine runtime is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	thread, err := processing.New(rt)
	if err != nil {
		slog.Error("live-view: engine initialization failed", "error", err)
		return nil, &InitializationError{Err: err}
	}

	slog.Info("live-view: controller created",
		"device", cfg.Device,
		"rect", cfg.Rect.String(),
		"mode", cfg.Mode.String(),
		"kmssink", cfg.KMSSink,
	)

	return &Controller{
		widget:  w,
		loop:    loop,
		runtime: rt,
		cfg:     cfg,
		thread:  thread,
		state:   StateIdle,
	}, nil
}

// Start builds a new pipeline and sets it playing.
//
// Any running pipeline is stopped first. On failure the error text is
// stored for ErrorMessage, the widget's EventError handlers are invoked and
// a *PipelineBuildError or *StateTransitionError is returned.
func (c *Controller) Start() error {
	if c.closed {
		return fmt.Errorf("controller is closed")
	}

	c.Stop()

	select {
	case <-c.thread.Done():
		c.fail(msgNoRunLoop)
		return &StateTransitionError{Err: errors.New(msgNoRunLoop)}
	default:
	}

	c.generation++
	gen := c.generation

	// Snapshot the configuration this pipeline is built from.
	box := c.widget.ContentArea()
	format := c.cfg.Format
	if format == FormatUnspecified {
		format = c.widget.Format()
	}

	// Only a plane window is written to directly.
	var overlay Overlay
	if c.cfg.Mode == OverlayZeroCopy {
		if c.widget.PlaneWindow() {
			overlay = c.widget.Screen()
		}
		if overlay == nil {
			slog.Warn("live-view: overlay mode without an overlay plane, falling back to buffered delivery",
				"plane_window", c.widget.PlaneWindow())
		}
	}

	params := pipeline.Params{
		Device:    c.cfg.Device,
		Width:     box.Dx(),
		Height:    box.Dy(),
		Format:    format.Token(),
		Framerate: c.cfg.Framerate,
		Mode:      pipeline.ModeBuffered,
	}
	kms := overlay != nil && c.cfg.KMSSink && overlay.GEM() != ""
	if kms {
		params.Mode = pipeline.ModeOverlay
		params.GEM = overlay.GEM()
	}

	spec := pipeline.Build(params)
	slog.Debug("live-view: pipeline spec", "spec", spec)

	p, err := c.runtime.ParseLaunch(spec)
	if err != nil {
		c.fail(err.Error())
		return &PipelineBuildError{Spec: spec, Err: err}
	}
	c.pipeline = p

	c.dispatcher = busdispatch.New(c.loop, func(text string) {
		c.onBusError(gen, text)
	})
	if err := p.Watch(c.dispatcher.Handle); err != nil {
		c.fail(err.Error())
		c.Stop()
		return &PipelineBuildError{Spec: spec, Err: fmt.Errorf("failed to watch pipeline bus: %w", err)}
	}

	if !kms {
		sink, err := p.SampleSink(pipeline.AppSinkName)
		if err != nil {
			c.fail(msgNoAppSink)
			c.Stop()
			return &PipelineBuildError{Spec: spec, Err: fmt.Errorf("%s: %w", msgNoAppSink, err)}
		}

		mode := delivery.ModeBuffered
		var plane delivery.Overlay
		if overlay != nil {
			mode = delivery.ModeOverlay
			plane = overlay
		}
		c.bridge = delivery.New(delivery.Config{
			Mode:    mode,
			Overlay: plane,
			Poster:  c.loop,
			Deliver: func(f *delivery.Frame) {
				c.deliver(gen, f)
			},
			Counters: &c.counters,
		})
		sink.SetSampleHandler(c.bridge.OnNewSample)
	}

	sessionID := uuid.New().String()
	c.mu.Lock()
	c.active = c.dispatcher
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := p.SetState(engine.StatePlaying); err != nil {
		c.fail(msgPlayState)
		c.Stop()
		return &StateTransitionError{Err: fmt.Errorf("%s: %w", msgPlayState, err)}
	}

	c.errorMsg = ""
	c.starts.Add(1)
	c.setState(StatePlaying)

	slog.Info("live-view: pipeline playing",
		"pipeline", p.Name(),
		"session_id", sessionID,
		"size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"format", params.Format,
		"kmssink", kms,
	)
	return nil
}

// Stop tears down the running pipeline, if any.
//
// Blocks until in-flight frame callbacks have returned. A pipeline that
// refuses to stop is logged and released anyway. The pending frame is
// released.
func (c *Controller) Stop() {
	if c.pipeline == nil {
		return
	}
	p := c.pipeline

	if c.dispatcher != nil {
		c.dispatcher.Detach()
	}
	if c.bridge != nil {
		c.bridge.Close()
	}

	if err := p.SetState(engine.StateNull); err != nil {
		slog.Warn("live-view: pipeline stop failed",
			"pipeline", p.Name(),
			"error", fmt.Errorf("%w: %w", ErrStopTransition, err),
		)
	}

	c.mu.Lock()
	if c.dispatcher != nil {
		counts := c.dispatcher.Counts()
		c.busTotals.Device += counts.Device
		c.busTotals.Negotiation += counts.Negotiation
		c.busTotals.Permission += counts.Permission
		c.busTotals.Resource += counts.Resource
		c.busTotals.Unknown += counts.Unknown
	}
	c.active = nil
	c.mu.Unlock()

	c.pipeline = nil
	c.bridge = nil
	c.dispatcher = nil
	c.pending.Release()

	c.setState(StateStopped)
	slog.Debug("live-view: pipeline stopped", "pipeline", p.Name())
}

// Scale resizes the widget to the configured box size times sx and sy.
func (c *Controller) Scale(sx, sy float64) {
	size := image.Pt(
		int(math.Round(float64(c.cfg.Rect.Dx())*sx)),
		int(math.Round(float64(c.cfg.Rect.Dy())*sy)),
	)
	c.widget.Resize(size)
}

// ErrorMessage returns the text of the last error, or "" after a
// successful Start.
func (c *Controller) ErrorMessage() string {
	return c.errorMsg
}

// State returns the controller state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns current statistics. Safe to call from any goroutine.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	bus := c.busTotals
	if c.active != nil {
		counts := c.active.Counts()
		bus.Device += counts.Device
		bus.Negotiation += counts.Negotiation
		bus.Permission += counts.Permission
		bus.Resource += counts.Resource
		bus.Unknown += counts.Unknown
	}
	state := c.state
	session := c.sessionID
	c.mu.Unlock()

	return Stats{
		State:            state,
		Starts:           c.starts.Load(),
		FramesDelivered:  c.counters.Delivered.Load(),
		FramesSuperseded: c.superseded.Load(),
		FramesDrawn:      c.drawn.Load(),
		FramesStale:      c.stale.Load(),
		FlowErrors:       c.counters.FlowErrors.Load(),
		OverlayFlips:     c.counters.Flips.Load(),
		BytesRead:        c.counters.BytesRead.Load(),
		BusErrors: map[string]uint64{
			busdispatch.ErrCategoryDevice.String():      bus.Device,
			busdispatch.ErrCategoryNegotiation.String(): bus.Negotiation,
			busdispatch.ErrCategoryPermission.String():  bus.Permission,
			busdispatch.ErrCategoryResource.String():    bus.Resource,
			busdispatch.ErrCategoryUnknown.String():     bus.Unknown,
		},
		SessionID:     session,
		EngineRunning: c.thread.Running(),
	}
}

// Close stops the pipeline and the processing thread. Idempotent.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true

	c.Stop()
	c.thread.Stop()

	slog.Info("live-view: controller closed",
		"starts", c.starts.Load(),
		"frames_delivered", c.counters.Delivered.Load(),
		"frames_drawn", c.drawn.Load(),
	)
}

// deliver runs on the GUI thread for every buffered frame.
func (c *Controller) deliver(gen uint64, f *delivery.Frame) {
	if gen != c.generation || c.pipeline == nil {
		f.Release()
		c.stale.Add(1)
		return
	}
	if c.pending.Replace(f) {
		c.superseded.Add(1)
	}
	c.widget.Damage()
}

// onBusError runs on the GUI thread for every pipeline error message.
func (c *Controller) onBusError(gen uint64, text string) {
	if gen != c.generation {
		slog.Debug("live-view: dropping error from a previous pipeline", "error", text)
		return
	}
	c.fail(text)
}

func (c *Controller) fail(text string) {
	c.errorMsg = text
	slog.Error("live-view: pipeline error", "error", text)
	c.widget.InvokeHandlers(EventError)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if changed {
		c.widget.InvokeHandlers(EventPropertyChanged)
	}
}
