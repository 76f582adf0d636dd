// Package engine defines the contract between the live-view core and the
// multimedia engine that runs the capture graph.
//
// The core never talks to GStreamer directly. It parses a textual pipeline
// description into a Pipeline, drives its state, watches its bus and pulls
// samples from its appsink through these interfaces. Package gstengine
// provides the GStreamer implementation; package enginetest provides an
// in-memory one for tests.
package engine

import "fmt"

// State is a pipeline state as understood by the engine.
type State int

const (
	StateVoidPending State = iota
	StateNull
	StateReady
	StatePaused
	StatePlaying
)

// String returns the engine's name for the state
func (s State) String() string {
	switch s {
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	default:
		return "VOID_PENDING"
	}
}

// Flow is the value a sample handler returns to the engine.
type Flow int

const (
	// FlowOK tells the engine the sample was consumed.
	FlowOK Flow = iota
	// FlowError tells the engine the pull failed. The pipeline keeps running.
	FlowError
	// FlowEOS tells the engine no more samples are wanted.
	FlowEOS
)

// MessageType classifies bus messages.
type MessageType int

const (
	MessageUnknown MessageType = iota
	MessageError
	MessageWarning
	MessageInfo
	MessageEOS
	MessageStateChanged
	MessageClockProvide
	MessageClockLost
	MessageNewClock
	MessageProgress
	MessageDurationChanged
	MessageElement
	MessageTag
)

// String returns a short lowercase name for the message type
func (t MessageType) String() string {
	switch t {
	case MessageError:
		return "error"
	case MessageWarning:
		return "warning"
	case MessageInfo:
		return "info"
	case MessageEOS:
		return "eos"
	case MessageStateChanged:
		return "state-changed"
	case MessageClockProvide:
		return "clock-provide"
	case MessageClockLost:
		return "clock-lost"
	case MessageNewClock:
		return "new-clock"
	case MessageProgress:
		return "progress"
	case MessageDurationChanged:
		return "duration-changed"
	case MessageElement:
		return "element"
	case MessageTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Message is a bus message copied out of the engine.
//
// Text and Debug are only set for error, warning and info messages.
// OldState and NewState are only set for state-changed messages.
type Message struct {
	Type     MessageType
	TypeName string // engine's own name, useful for MessageUnknown
	Source   string // name of the element that posted the message
	Text     string
	Debug    string
	OldState State
	NewState State
}

// VideoInfo is the geometry and pixel format read from a sample's caps.
type VideoInfo struct {
	Width  int
	Height int
	// Format is the engine's format token (e.g. "RGB16", "BGRx").
	Format string
}

// String returns "WxH FORMAT"
func (v VideoInfo) String() string {
	return fmt.Sprintf("%dx%d %s", v.Width, v.Height, v.Format)
}

// Runtime is the process-wide engine entry point.
type Runtime interface {
	// Init initializes the engine. Safe to call more than once.
	Init() error
	// NewRunLoop creates the run loop that dispatches bus watches.
	NewRunLoop() RunLoop
	// ParseLaunch builds a pipeline from a textual description. The returned
	// error carries the engine's diagnostic text.
	ParseLaunch(spec string) (Pipeline, error)
}

// RunLoop is a blocking event loop owned by the processing thread.
type RunLoop interface {
	Run()
	Quit()
	IsRunning() bool
}

// Pipeline is a handle on a running processing graph.
type Pipeline interface {
	Name() string
	// SetState blocks until the engine acknowledges the transition or
	// reports failure. A transition to StateNull drains in-flight sample
	// callbacks before returning.
	SetState(state State) error
	// Watch installs fn on the pipeline's bus. The watch stays installed
	// for as long as fn returns true.
	Watch(fn func(msg Message) bool) error
	// SampleSink looks up the pull-based sink element by name.
	SampleSink(name string) (SampleSink, error)
}

// SampleSink is a pull-based sink (appsink).
type SampleSink interface {
	// SetSampleHandler installs the new-sample callback. It runs on an
	// engine streaming thread.
	SetSampleHandler(fn func(sink SampleSink) Flow)
	// PullSample returns the next sample or nil when none is available.
	PullSample() Sample
}

// Sample is a reference on one decoded frame owned by the engine.
type Sample interface {
	Info() (VideoInfo, error)
	// Map maps the sample's buffer read-only. Every successful Map must be
	// paired with Unmap.
	Map() ([]byte, error)
	Unmap()
	// Release drops the reference. The sample must not be used afterwards.
	Release()
}
