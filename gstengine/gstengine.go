//go:build cgo

// Package gstengine implements engine.Runtime on GStreamer.
//
// Pipelines are built with gst_parse_launch from the spec string, bus watches
// are attached to the default GLib main context (dispatched by the run loop
// returned from NewRunLoop), and samples are pulled from appsink through its
// callbacks rather than signals.
package gstengine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-glib/glib"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// Runtime is the GStreamer engine.Runtime.
type Runtime struct{}

// NewRuntime returns a GStreamer runtime. Call Init before anything else.
func NewRuntime() *Runtime { return &Runtime{} }

// Init initializes GStreamer and verifies that core elements can be created.
//
// gst.Init is safe to call multiple times.
func (r *Runtime) Init() error {
	gst.Init(nil)

	elem, err := gst.NewElement("fakesrc")
	if err != nil {
		return fmt.Errorf("failed to initialize gstreamer: %w", err)
	}
	elem.SetState(gst.StateNull)

	slog.Debug("gstengine: gstreamer initialized")
	return nil
}

// NewRunLoop returns a GLib main loop on the default main context.
func (r *Runtime) NewRunLoop() engine.RunLoop {
	return glib.NewMainLoop(glib.MainContextDefault(), false)
}

// ParseLaunch builds a pipeline from spec.
func (r *Runtime) ParseLaunch(spec string) (engine.Pipeline, error) {
	p, err := gst.NewPipelineFromString(spec)
	if err != nil {
		return nil, err
	}
	return &pipeline{p: p}, nil
}

type pipeline struct {
	p *gst.Pipeline
}

func (p *pipeline) Name() string { return p.p.GetName() }

func (p *pipeline) SetState(state engine.State) error {
	return p.p.SetState(toGstState(state))
}

func (p *pipeline) Watch(fn func(engine.Message) bool) error {
	bus := p.p.GetPipelineBus()
	if bus == nil {
		return errors.New("pipeline has no bus")
	}
	if !bus.AddWatch(func(msg *gst.Message) bool {
		return fn(convertMessage(msg))
	}) {
		return errors.New("failed to add bus watch")
	}
	return nil
}

func (p *pipeline) SampleSink(name string) (engine.SampleSink, error) {
	elem, err := p.p.GetElementByName(name)
	if err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, fmt.Errorf("no element named %q", name)
	}
	sink := app.SinkFromElement(elem)
	if sink == nil {
		return nil, fmt.Errorf("element %q is not an appsink", name)
	}
	// Deliver at the pipeline clock rate; stale frames are dropped upstream.
	sink.SetProperty("sync", true)
	return &sampleSink{sink: sink}, nil
}

type sampleSink struct {
	sink *app.Sink
}

func (s *sampleSink) SetSampleHandler(fn func(engine.SampleSink) engine.Flow) {
	s.sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(*app.Sink) gst.FlowReturn {
			return toGstFlow(fn(s))
		},
	})
}

func (s *sampleSink) PullSample() engine.Sample {
	smp := s.sink.PullSample()
	if smp == nil {
		return nil
	}
	return &sample{s: smp}
}

// sample holds a reference on a GstSample. The go-gst wrapper owns that
// reference and unrefs it from its finalizer, so Release only drops ours:
// an explicit Unref here would be released a second time by the finalizer.
// The buffer therefore returns to the v4l2src pool on the next GC cycle
// after Release, not at Release itself.
type sample struct {
	s   *gst.Sample
	buf *gst.Buffer
}

func (s *sample) Info() (engine.VideoInfo, error) {
	if s.s == nil {
		return engine.VideoInfo{}, errors.New("sample released")
	}
	caps := s.s.GetCaps()
	if caps == nil {
		return engine.VideoInfo{}, errors.New("sample has no caps")
	}
	st := caps.GetStructureAt(0)
	if st == nil {
		return engine.VideoInfo{}, errors.New("sample caps have no structure")
	}

	var info engine.VideoInfo
	w, err := st.GetValue("width")
	if err != nil {
		return info, fmt.Errorf("caps width: %w", err)
	}
	h, err := st.GetValue("height")
	if err != nil {
		return info, fmt.Errorf("caps height: %w", err)
	}
	info.Width, _ = w.(int)
	info.Height, _ = h.(int)
	if f, err := st.GetValue("format"); err == nil {
		info.Format, _ = f.(string)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return info, fmt.Errorf("invalid caps geometry %dx%d", info.Width, info.Height)
	}
	return info, nil
}

func (s *sample) Map() ([]byte, error) {
	if s.s == nil {
		return nil, errors.New("sample released")
	}
	buf := s.s.GetBuffer()
	if buf == nil {
		return nil, errors.New("sample has no buffer")
	}
	mi := buf.Map(gst.MapRead)
	if mi == nil {
		return nil, errors.New("failed to map buffer")
	}
	s.buf = buf
	return mi.Bytes(), nil
}

func (s *sample) Unmap() {
	if s.buf != nil {
		s.buf.Unmap()
		s.buf = nil
	}
}

// Release unmaps and drops the last Go reference so the wrapper becomes
// collectable right away. Nothing else may keep s.s reachable.
func (s *sample) Release() {
	s.Unmap()
	s.s = nil
}

func toGstState(s engine.State) gst.State {
	switch s {
	case engine.StateNull:
		return gst.StateNull
	case engine.StateReady:
		return gst.StateReady
	case engine.StatePaused:
		return gst.StatePaused
	case engine.StatePlaying:
		return gst.StatePlaying
	default:
		return gst.VoidPending
	}
}

func fromGstState(s gst.State) engine.State {
	switch s {
	case gst.StateNull:
		return engine.StateNull
	case gst.StateReady:
		return engine.StateReady
	case gst.StatePaused:
		return engine.StatePaused
	case gst.StatePlaying:
		return engine.StatePlaying
	default:
		return engine.StateVoidPending
	}
}

func toGstFlow(f engine.Flow) gst.FlowReturn {
	switch f {
	case engine.FlowOK:
		return gst.FlowOK
	case engine.FlowEOS:
		return gst.FlowEOS
	default:
		return gst.FlowError
	}
}

func convertMessage(msg *gst.Message) engine.Message {
	out := engine.Message{
		TypeName: msg.TypeName(),
		Source:   msg.Source(),
	}

	switch msg.Type() {
	case gst.MessageError:
		out.Type = engine.MessageError
		if gerr := msg.ParseError(); gerr != nil {
			out.Text = gerr.Error()
			out.Debug = gerr.DebugString()
		}
	case gst.MessageWarning:
		out.Type = engine.MessageWarning
		if gerr := msg.ParseWarning(); gerr != nil {
			out.Text = gerr.Error()
			out.Debug = gerr.DebugString()
		}
	case gst.MessageInfo:
		out.Type = engine.MessageInfo
		if gerr := msg.ParseInfo(); gerr != nil {
			out.Text = gerr.Error()
			out.Debug = gerr.DebugString()
		}
	case gst.MessageEOS:
		out.Type = engine.MessageEOS
	case gst.MessageStateChanged:
		out.Type = engine.MessageStateChanged
		old, new := msg.ParseStateChanged()
		out.OldState = fromGstState(old)
		out.NewState = fromGstState(new)
	case gst.MessageClockProvide:
		out.Type = engine.MessageClockProvide
	case gst.MessageClockLost:
		out.Type = engine.MessageClockLost
	case gst.MessageNewClock:
		out.Type = engine.MessageNewClock
	case gst.MessageProgress:
		out.Type = engine.MessageProgress
	case gst.MessageDurationChanged:
		out.Type = engine.MessageDurationChanged
	case gst.MessageElement:
		out.Type = engine.MessageElement
	case gst.MessageTag:
		out.Type = engine.MessageTag
	default:
		out.Type = engine.MessageUnknown
	}
	return out
}
