package delivery

import (
	"time"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// Frame is the ownership token over one engine sample waiting to be drawn
type Frame struct {
	// Sample is the engine sample. Owned by the frame until Release.
	Sample engine.Sample
	// Seq is the monotonic sequence number within one pipeline
	Seq uint64
	// Arrived is when the sample reached the sink callback
	Arrived time.Time
	// TraceID is a unique identifier for tracing a frame through logs
	TraceID string
}

// Release drops the frame's sample reference. Safe on a nil frame and
// safe to call twice.
func (f *Frame) Release() {
	if f == nil || f.Sample == nil {
		return
	}
	f.Sample.Release()
	f.Sample = nil
}

// Slot holds at most one pending frame.
//
// Replace-not-queue: storing a frame releases the previous one, so a slow
// consumer always sees the newest frame and no backlog builds up.
//
// A Slot is not safe for concurrent use. It is meant to be touched from the
// GUI thread only.
type Slot struct {
	frame *Frame
}

// Replace stores f, releasing any frame already held.
//
// Returns true if a held frame was superseded without being consumed.
func (s *Slot) Replace(f *Frame) bool {
	superseded := s.frame != nil
	if superseded {
		s.frame.Release()
	}
	s.frame = f
	return superseded
}

// Take removes and returns the held frame, or nil. The caller owns it.
func (s *Slot) Take() *Frame {
	f := s.frame
	s.frame = nil
	return f
}

// Release drops the held frame, if any.
func (s *Slot) Release() {
	s.frame.Release()
	s.frame = nil
}
