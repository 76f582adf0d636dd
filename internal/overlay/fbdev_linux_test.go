//go:build linux

package overlay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebuffer_WriteFlipClose(t *testing.T) {
	const size = 320 * 240 * 2

	path := filepath.Join(t.TempDir(), "fb")
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatal(err)
	}

	flipped := 0
	fb, err := Open(Config{Path: path, Size: size, GEM: "plane-1", OnFlip: func() { flipped++ }})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	raw := fb.Raw()
	if len(raw) != size {
		t.Fatalf("len(Raw()) = %d, want %d", len(raw), size)
	}
	for i := range raw {
		raw[i] = 0xa5
	}
	fb.ScheduleFlip()

	if fb.Flips() != 1 || flipped != 1 {
		t.Errorf("flips = %d, hook = %d, want 1", fb.Flips(), flipped)
	}
	if fb.GEM() != "plane-1" {
		t.Errorf("GEM() = %q", fb.GEM())
	}

	if err := fb.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := fb.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte{0xa5}, size)) {
		t.Error("file should contain the bytes written through the mapping")
	}
	t.Logf("✅ %d bytes written through the shared mapping", size)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no path", Config{Size: 16}},
		{"no size", Config{Path: "/dev/null"}},
		{"missing file", Config{Path: filepath.Join(t.TempDir(), "nope"), Size: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if fb, err := Open(tt.cfg); err == nil {
				fb.Close()
				t.Error("Open() should fail")
			}
		})
	}
}
