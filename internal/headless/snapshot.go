package headless

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrDone is returned by Recorder.Frame once MaxFrames snapshots were saved.
var ErrDone = errors.New("headless: snapshot limit reached")

// RecorderConfig controls which frames are written to disk
type RecorderConfig struct {
	Dir         string // output directory, created if missing
	Format      string // png or jpeg
	JPEGQuality int    // 1-100
	Every       int    // save every Nth frame
	MaxFrames   int    // 0 = unlimited
}

// Recorder saves every Nth frame as a numbered image file.
type Recorder struct {
	cfg   RecorderConfig
	ext   string
	seen  int
	saved int
}

// NewRecorder creates the output directory and returns a recorder.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.Every < 1 {
		cfg.Every = 1
	}
	ext := "png"
	switch strings.ToLower(cfg.Format) {
	case "", "png":
	case "jpeg", "jpg":
		ext = "jpg"
		if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
			cfg.JPEGQuality = jpeg.DefaultQuality
		}
	default:
		return nil, fmt.Errorf("headless: unsupported snapshot format %q", cfg.Format)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("headless: create %s: %w", cfg.Dir, err)
	}
	return &Recorder{cfg: cfg, ext: ext}, nil
}

// Frame offers one drawn frame. It returns the path written, "" when the
// frame was skipped, or ErrDone once the limit is reached.
func (r *Recorder) Frame(img image.Image) (string, error) {
	if r.cfg.MaxFrames > 0 && r.saved >= r.cfg.MaxFrames {
		return "", ErrDone
	}

	r.seen++
	if (r.seen-1)%r.cfg.Every != 0 {
		return "", nil
	}

	path := filepath.Join(r.cfg.Dir, fmt.Sprintf("frame-%06d.%s", r.saved, r.ext))
	if err := Save(path, img, r.cfg.JPEGQuality); err != nil {
		return "", err
	}
	r.saved++

	slog.Debug("headless: snapshot saved", "path", path)

	if r.cfg.MaxFrames > 0 && r.saved >= r.cfg.MaxFrames {
		return path, ErrDone
	}
	return path, nil
}

// Saved returns how many snapshots were written.
func (r *Recorder) Saved() int { return r.saved }

// Save encodes img to path. The format follows the extension: .jpg/.jpeg
// is JPEG with the given quality, anything else PNG.
func Save(path string, img image.Image, quality int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("headless: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("headless: close %s: %w", path, cerr)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("headless: encode %s: %w", path, err)
	}
	return nil
}
