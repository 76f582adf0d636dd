// Package enginetest provides an in-memory engine.Runtime for tests.
//
// The fake keeps the contract the core relies on: SetState(StateNull) blocks
// until in-flight sample callbacks return, a watch returning false is
// removed, and Quit on a run loop that has not started yet is lost (the
// same behaviour as a GLib main loop).
package enginetest

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// Runtime is a fake engine runtime.
type Runtime struct {
	mu sync.Mutex

	// InitErr is returned by Init.
	InitErr error
	// ParseErr, when set, makes ParseLaunch fail with it.
	ParseErr error
	// PlayErr, when set, is returned by SetState(StatePlaying) on every new pipeline.
	PlayErr error
	// NullErr, when set, is returned by SetState(StateNull) on every new pipeline.
	NullErr error
	// NoAppSink makes SampleSink lookups fail on new pipelines.
	NoAppSink bool

	inits     int
	specs     []string
	pipelines []*Pipeline
	loops     []*RunLoop
}

// Init implements engine.Runtime
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return r.InitErr
}

// NewRunLoop implements engine.Runtime
func (r *Runtime) NewRunLoop() engine.RunLoop {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := &RunLoop{}
	r.loops = append(r.loops, l)
	return l
}

// ParseLaunch implements engine.Runtime
func (r *Runtime) ParseLaunch(spec string) (engine.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	if r.ParseErr != nil {
		return nil, r.ParseErr
	}
	p := &Pipeline{
		name:      fmt.Sprintf("pipeline%d", len(r.pipelines)),
		spec:      spec,
		state:     engine.StateNull,
		playErr:   r.PlayErr,
		nullErr:   r.NullErr,
		noAppSink: r.NoAppSink,
	}
	p.sink = &Sink{pipeline: p}
	r.pipelines = append(r.pipelines, p)
	return p, nil
}

// Inits returns how many times Init was called.
func (r *Runtime) Inits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits
}

// Specs returns every spec passed to ParseLaunch, in order.
func (r *Runtime) Specs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.specs...)
}

// Pipelines returns every pipeline created, in order.
func (r *Runtime) Pipelines() []*Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Pipeline(nil), r.pipelines...)
}

// Last returns the most recently created pipeline, or nil.
func (r *Runtime) Last() *Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pipelines) == 0 {
		return nil
	}
	return r.pipelines[len(r.pipelines)-1]
}

// Loops returns every run loop created.
func (r *Runtime) Loops() []*RunLoop {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RunLoop(nil), r.loops...)
}

// Pipeline is a fake engine.Pipeline.
type Pipeline struct {
	mu        sync.Mutex
	name      string
	spec      string
	state     engine.State
	playErr   error
	nullErr   error
	noAppSink bool
	watch     func(engine.Message) bool
	watchGone bool
	sink      *Sink
	inflight  sync.WaitGroup
	history   []engine.State
}

// Name implements engine.Pipeline
func (p *Pipeline) Name() string { return p.name }

// Spec returns the description the pipeline was parsed from.
func (p *Pipeline) Spec() string { return p.spec }

// SetState implements engine.Pipeline
func (p *Pipeline) SetState(state engine.State) error {
	p.mu.Lock()
	switch state {
	case engine.StatePlaying:
		if p.playErr != nil {
			p.mu.Unlock()
			return p.playErr
		}
	case engine.StateNull:
		p.state = engine.StateNull
		p.history = append(p.history, state)
		err := p.nullErr
		p.mu.Unlock()
		// Streaming threads are joined on the way to NULL.
		p.inflight.Wait()
		return err
	}
	p.state = state
	p.history = append(p.history, state)
	p.mu.Unlock()
	return nil
}

// State returns the current state.
func (p *Pipeline) State() engine.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// History returns every state the pipeline was successfully asked to enter.
func (p *Pipeline) History() []engine.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]engine.State(nil), p.history...)
}

// Watch implements engine.Pipeline
func (p *Pipeline) Watch(fn func(engine.Message) bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watch != nil {
		return errors.New("bus already has a watch")
	}
	p.watch = fn
	return nil
}

// Post delivers msg to the bus watch and reports whether the watch is still
// installed afterwards.
func (p *Pipeline) Post(msg engine.Message) bool {
	p.mu.Lock()
	fn := p.watch
	gone := p.watchGone
	p.mu.Unlock()
	if fn == nil || gone {
		return false
	}
	if !fn(msg) {
		p.mu.Lock()
		p.watchGone = true
		p.mu.Unlock()
		return false
	}
	return true
}

// WatchRemoved reports whether the watch returned false at some point.
func (p *Pipeline) WatchRemoved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watchGone
}

// SampleSink implements engine.Pipeline
func (p *Pipeline) SampleSink(name string) (engine.SampleSink, error) {
	if p.noAppSink {
		return nil, fmt.Errorf("no element %q", name)
	}
	return p.sink, nil
}

// Sink returns the pipeline's appsink.
func (p *Pipeline) Sink() *Sink { return p.sink }

// Sink is a fake engine.SampleSink.
type Sink struct {
	pipeline *Pipeline

	mu      sync.Mutex
	handler func(engine.SampleSink) engine.Flow
	queue   []*Sample
}

// SetSampleHandler implements engine.SampleSink
func (s *Sink) SetSampleHandler(fn func(engine.SampleSink) engine.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// PullSample implements engine.SampleSink
func (s *Sink) PullSample() engine.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	smp := s.queue[0]
	s.queue = s.queue[1:]
	return smp
}

// Emit queues smp (which may be nil to simulate a failed pull) and runs the
// sample handler on the calling goroutine, the way a streaming thread would.
// It returns FlowEOS without calling the handler unless the pipeline is
// playing.
func (s *Sink) Emit(smp *Sample) engine.Flow {
	p := s.pipeline
	p.mu.Lock()
	if p.state != engine.StatePlaying {
		p.mu.Unlock()
		return engine.FlowEOS
	}
	p.inflight.Add(1)
	p.mu.Unlock()
	defer p.inflight.Done()

	s.mu.Lock()
	if smp != nil {
		s.queue = append(s.queue, smp)
	}
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return engine.FlowEOS
	}
	return h(s)
}

// Sample is a fake engine.Sample over a byte slice.
type Sample struct {
	Width  int
	Height int
	Format string
	Data   []byte
	// MapErr, when set, makes Map fail.
	MapErr error

	maps     atomic.Int32
	unmaps   atomic.Int32
	releases atomic.Int32
}

// NewSample returns a sample whose buffer is filled with fill.
func NewSample(width, height int, format string, bpp int, fill byte) *Sample {
	data := make([]byte, width*height*bpp)
	for i := range data {
		data[i] = fill
	}
	return &Sample{Width: width, Height: height, Format: format, Data: data}
}

// Info implements engine.Sample
func (s *Sample) Info() (engine.VideoInfo, error) {
	return engine.VideoInfo{Width: s.Width, Height: s.Height, Format: s.Format}, nil
}

// Map implements engine.Sample
func (s *Sample) Map() ([]byte, error) {
	if s.MapErr != nil {
		return nil, s.MapErr
	}
	s.maps.Add(1)
	return s.Data, nil
}

// Unmap implements engine.Sample
func (s *Sample) Unmap() { s.unmaps.Add(1) }

// Release implements engine.Sample
func (s *Sample) Release() { s.releases.Add(1) }

// Released reports how many times Release was called.
func (s *Sample) Released() int { return int(s.releases.Load()) }

// Balanced reports whether every Map was paired with an Unmap.
func (s *Sample) Balanced() bool { return s.maps.Load() == s.unmaps.Load() }

// Mapped reports how many times Map succeeded.
func (s *Sample) Mapped() int { return int(s.maps.Load()) }

// RunLoop is a fake engine.RunLoop.
type RunLoop struct {
	mu      sync.Mutex
	running bool
	quit    chan struct{}
	runs    int
}

// Run implements engine.RunLoop
func (l *RunLoop) Run() {
	l.mu.Lock()
	l.running = true
	l.runs++
	quit := make(chan struct{})
	l.quit = quit
	l.mu.Unlock()

	<-quit

	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// Quit implements engine.RunLoop. A Quit issued before Run is lost.
func (l *RunLoop) Quit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running && l.quit != nil {
		close(l.quit)
		l.quit = nil
	}
}

// IsRunning implements engine.RunLoop
func (l *RunLoop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Runs reports how many times Run was entered.
func (l *RunLoop) Runs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runs
}
