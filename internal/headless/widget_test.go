package headless

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine/enginetest"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/eventloop"
)

func TestWidget_Handlers(t *testing.T) {
	w := New(image.Rect(0, 0, 4, 4), liveview.FormatRGB565, nil)

	var order []int
	w.On(liveview.EventError, func() { order = append(order, 1) })
	w.On(liveview.EventError, func() { order = append(order, 2) })
	w.On(liveview.EventPropertyChanged, func() { order = append(order, 3) })

	w.InvokeHandlers(liveview.EventError)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handlers ran as %v, want [1 2]", order)
	}
	if w.PlaneWindow() {
		t.Error("no screen means no plane window")
	}
}

func TestWidget_ResizeGrowsSurface(t *testing.T) {
	w := New(image.Rect(10, 10, 20, 20), liveview.FormatRGB565, nil)
	w.Surface().Set(15, 15, color.RGBA{1, 2, 3, 255})

	w.Resize(image.Pt(100, 50))

	if got := w.ContentArea(); got != image.Rect(10, 10, 110, 60) {
		t.Errorf("ContentArea() = %v", got)
	}
	if !image.Rect(0, 0, 110, 60).In(w.Surface().Bounds()) {
		t.Errorf("surface %v does not cover the content area", w.Surface().Bounds())
	}
	if got := w.Surface().RGBAAt(15, 15); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("existing pixels should survive a resize, got %v", got)
	}
	if w.Content().Bounds() != w.ContentArea() {
		t.Error("Content() should cover exactly the content area")
	}
}

func TestRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	rec, err := NewRecorder(RecorderConfig{Dir: dir, Format: "png", Every: 2, MaxFrames: 2})
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var paths []string
	for i := 0; i < 10; i++ {
		path, err := rec.Frame(img)
		if path != "" {
			paths = append(paths, path)
		}
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if len(paths) != 2 || rec.Saved() != 2 {
		t.Fatalf("saved %v", paths)
	}
	if filepath.Base(paths[1]) != "frame-000001.png" {
		t.Errorf("second snapshot = %s", paths[1])
	}
	if _, err := rec.Frame(img); !errors.Is(err, ErrDone) {
		t.Error("recorder should stay done")
	}
}

func TestRecorder_BadFormat(t *testing.T) {
	if _, err := NewRecorder(RecorderConfig{Dir: t.TempDir(), Format: "gif"}); err == nil {
		t.Error("gif should be rejected")
	}
}

func TestSave_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := Save(path, image.NewRGBA(image.Rect(0, 0, 8, 8)), 80); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Error("file should start with a JPEG SOI marker")
	}
}

// TestWidget_DrivesController paints engine frames through a controller
// into the off-screen surface, the way the run command does.
func TestWidget_DrivesController(t *testing.T) {
	rt := &enginetest.Runtime{}
	loop := eventloop.New()
	w := New(image.Rect(0, 0, 32, 24), liveview.FormatRGB565, nil)

	ctl, err := liveview.New(w, loop, rt, liveview.Config{
		Device: "/dev/video0",
		Rect:   w.ContentArea(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer ctl.Close()

	dir := t.TempDir()
	rec, err := NewRecorder(RecorderConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}

	w.OnDamage = func() {
		if err := ctl.Draw(w.Surface()); err != nil {
			t.Errorf("Draw() error = %v", err)
			return
		}
		if _, err := rec.Frame(w.Content()); err != nil {
			t.Errorf("Frame() error = %v", err)
		}
	}

	if err := ctl.Start(); err != nil {
		t.Fatal(err)
	}
	rt.Last().Sink().Emit(enginetest.NewSample(32, 24, "RGB16", 2, 0xff))
	loop.RunPending()

	if w.Damages() != 1 || rec.Saved() != 1 {
		t.Fatalf("damages = %d, saved = %d", w.Damages(), rec.Saved())
	}

	f, err := os.Open(filepath.Join(dir, "frame-000000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("snapshot size = %v", img.Bounds())
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("snapshot pixel = %v, want white", img.At(5, 5))
	}
}
