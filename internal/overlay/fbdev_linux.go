//go:build linux

package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Framebuffer is an overlay plane backed by a memory-mapped framebuffer
// device (or any file of at least Size bytes).
type Framebuffer struct {
	cfg  Config
	file *os.File
	mem  []byte

	flips  atomic.Uint64
	mu     sync.Mutex
	closed bool
}

// Open maps cfg.Size bytes of cfg.Path read-write and shared.
func Open(cfg Config) (*Framebuffer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("overlay: path is required")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("overlay: size must be positive, got %d", cfg.Size)
	}

	f, err := os.OpenFile(cfg.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("overlay: open %s: %w", cfg.Path, err)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, cfg.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("overlay: mmap %s (%d bytes): %w", cfg.Path, cfg.Size, err)
	}

	slog.Info("overlay: framebuffer mapped",
		"path", cfg.Path,
		"bytes", cfg.Size,
		"gem", cfg.GEM,
	)

	return &Framebuffer{cfg: cfg, file: f, mem: mem}, nil
}

// Raw returns the mapped pixel memory.
func (fb *Framebuffer) Raw() []byte {
	return fb.mem
}

// ScheduleFlip pushes the written frame out to the device without waiting
// for it to land.
func (fb *Framebuffer) ScheduleFlip() {
	if err := unix.Msync(fb.mem, unix.MS_ASYNC); err != nil {
		slog.Debug("overlay: msync failed", "error", err)
	}
	fb.flips.Add(1)
	if fb.cfg.OnFlip != nil {
		fb.cfg.OnFlip()
	}
}

// GEM returns the configured hardware buffer name.
func (fb *Framebuffer) GEM() string {
	return fb.cfg.GEM
}

// Flips returns how many flips were scheduled.
func (fb *Framebuffer) Flips() uint64 {
	return fb.flips.Load()
}

// Close unmaps the memory. The pipeline writing into it must be stopped
// first. Idempotent.
func (fb *Framebuffer) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return nil
	}
	fb.closed = true

	var firstErr error
	if err := unix.Munmap(fb.mem); err != nil {
		firstErr = fmt.Errorf("overlay: munmap: %w", err)
	}
	fb.mem = nil
	if err := fb.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("overlay: close: %w", err)
	}
	return firstErr
}
