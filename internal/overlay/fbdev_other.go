//go:build !linux

package overlay

import "errors"

// ErrUnsupported is returned by Open on platforms without framebuffer
// devices.
var ErrUnsupported = errors.New("overlay: framebuffer overlay requires linux")

// Framebuffer is unavailable on this platform.
type Framebuffer struct{}

// Open always fails on this platform.
func Open(Config) (*Framebuffer, error) { return nil, ErrUnsupported }

func (*Framebuffer) Raw() []byte   { return nil }
func (*Framebuffer) ScheduleFlip() {}
func (*Framebuffer) GEM() string   { return "" }
func (*Framebuffer) Flips() uint64 { return 0 }
func (*Framebuffer) Close() error  { return nil }
