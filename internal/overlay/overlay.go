// Package overlay provides an overlay plane over a memory-mapped
// framebuffer.
package overlay

// Config describes the framebuffer to map
type Config struct {
	// Path of the framebuffer device, e.g. /dev/fb1
	Path string
	// Size is the number of bytes to map (one frame)
	Size int
	// GEM is the hardware buffer name handed to the KMS sink
	GEM string
	// OnFlip, when set, is called after every flip on the flipping thread
	OnFlip func()
}
