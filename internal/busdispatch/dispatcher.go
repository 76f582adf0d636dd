// Package busdispatch reacts to messages posted on a pipeline's bus.
package busdispatch

import (
	"log/slog"
	"sync/atomic"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// Poster schedules fn on the GUI event loop.
type Poster interface {
	Post(fn func())
}

// Counts holds error counters per category
type Counts struct {
	Device      uint64
	Negotiation uint64
	Permission  uint64
	Resource    uint64
	Unknown     uint64
}

// Total returns the sum of all categories
func (c Counts) Total() uint64 {
	return c.Device + c.Negotiation + c.Permission + c.Resource + c.Unknown
}

// Dispatcher is installed as the bus watch of one pipeline.
//
// Handle runs on the engine's run loop thread, never on the GUI thread.
// Only error messages cross over to the GUI thread; everything else is
// logged where it arrives.
type Dispatcher struct {
	poster   Poster
	onError  func(text string)
	detached atomic.Bool
	errors   [numCategories]atomic.Uint64
}

// New creates a dispatcher. onError is called on the GUI thread with the
// error text of every error message.
func New(poster Poster, onError func(text string)) *Dispatcher {
	return &Dispatcher{
		poster:  poster,
		onError: onError,
	}
}

// Handle processes one bus message.
//
// Returns true to keep the watch installed. Once the dispatcher is detached
// it returns false so the engine drops the watch.
func (d *Dispatcher) Handle(msg engine.Message) bool {
	if d.detached.Load() {
		slog.Debug("busdispatch: message after detach, removing watch",
			"type", msg.Type.String(),
			"source", msg.Source,
		)
		return false
	}

	switch msg.Type {
	case engine.MessageError:
		category := Classify(msg.Text, msg.Debug)
		d.errors[category].Add(1)

		slog.Debug("busdispatch: error message",
			"source", msg.Source,
			"error", msg.Text,
			"category", category.String(),
		)
		slog.Debug("busdispatch: error debugging info",
			"debug", debugOrNone(msg.Debug),
		)

		text := msg.Text
		d.poster.Post(func() {
			d.onError(text)
		})

	case engine.MessageWarning:
		slog.Debug("busdispatch: warning message",
			"source", msg.Source,
			"warning", msg.Text,
			"debug", debugOrNone(msg.Debug),
		)

	case engine.MessageInfo:
		slog.Debug("busdispatch: info message",
			"source", msg.Source,
			"info", msg.Text,
			"debug", debugOrNone(msg.Debug),
		)

	case engine.MessageStateChanged:
		slog.Debug("busdispatch: state changed",
			"source", msg.Source,
			"from", msg.OldState.String(),
			"to", msg.NewState.String(),
		)

	case engine.MessageClockProvide,
		engine.MessageClockLost,
		engine.MessageNewClock,
		engine.MessageProgress,
		engine.MessageDurationChanged,
		engine.MessageElement,
		engine.MessageTag,
		engine.MessageEOS:
		slog.Debug("busdispatch: "+msg.Type.String(), "source", msg.Source)

	default:
		slog.Debug("busdispatch: unhandled message",
			"type", msg.TypeName,
			"source", msg.Source,
		)
	}

	return true
}

// Detach marks the pipeline as torn down. Errors arriving afterwards are
// not forwarded.
func (d *Dispatcher) Detach() {
	d.detached.Store(true)
}

// Counts returns the error counters
func (d *Dispatcher) Counts() Counts {
	return Counts{
		Device:      d.errors[ErrCategoryDevice].Load(),
		Negotiation: d.errors[ErrCategoryNegotiation].Load(),
		Permission:  d.errors[ErrCategoryPermission].Load(),
		Resource:    d.errors[ErrCategoryResource].Load(),
		Unknown:     d.errors[ErrCategoryUnknown].Load(),
	}
}

func debugOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
