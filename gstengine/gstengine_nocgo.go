//go:build !cgo

// Package gstengine provides GStreamer stubs when CGO is disabled.
// The actual implementation in gstengine.go requires CGO for go-gst bindings.
package gstengine

import (
	"errors"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// ErrCGORequired is returned when GStreamer functions are called without CGO support.
var ErrCGORequired = errors.New("gstengine: GStreamer support requires CGO")

// Runtime is a stub engine.Runtime that always fails to initialize.
type Runtime struct{}

// NewRuntime returns the stub runtime.
func NewRuntime() *Runtime { return &Runtime{} }

// Init always returns ErrCGORequired.
func (r *Runtime) Init() error { return ErrCGORequired }

// NewRunLoop returns nil when CGO is disabled.
func (r *Runtime) NewRunLoop() engine.RunLoop { return nil }

// ParseLaunch always returns ErrCGORequired.
func (r *Runtime) ParseLaunch(string) (engine.Pipeline, error) { return nil, ErrCGORequired }
