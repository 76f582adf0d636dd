package pixfmt

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestWrap_PackedFormats(t *testing.T) {
	tests := []struct {
		format string
		pixel  []byte
		want   color.RGBA
	}{
		{"RGB16", []byte{0x00, 0xf8}, color.RGBA{0xff, 0, 0, 0xff}},    // pure red
		{"RGB16", []byte{0xe0, 0x07}, color.RGBA{0, 0xff, 0, 0xff}},    // pure green
		{"RGB16", []byte{0x1f, 0x00}, color.RGBA{0, 0, 0xff, 0xff}},    // pure blue
		{"RGB", []byte{10, 20, 30}, color.RGBA{10, 20, 30, 0xff}},
		{"BGR", []byte{30, 20, 10}, color.RGBA{10, 20, 30, 0xff}},
		{"BGRx", []byte{30, 20, 10, 0}, color.RGBA{10, 20, 30, 0xff}},
		{"BGRA", []byte{30, 20, 10, 0xff}, color.RGBA{10, 20, 30, 0xff}},
		{"xRGB", []byte{0, 10, 20, 30}, color.RGBA{10, 20, 30, 0xff}},
		{"ARGB", []byte{0xff, 10, 20, 30}, color.RGBA{10, 20, 30, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			// 2x1 image: first pixel zero, second pixel under test.
			data := make([]byte, 2*len(tt.pixel))
			copy(data[len(tt.pixel):], tt.pixel)

			img, err := Wrap(data, 2, 1, tt.format)
			if err != nil {
				t.Fatalf("Wrap() error = %v", err)
			}
			if got := color.RGBAModel.Convert(img.At(1, 0)).(color.RGBA); got != tt.want {
				t.Errorf("At(1,0) = %v, want %v", got, tt.want)
			}
			if img.Bounds() != image.Rect(0, 0, 2, 1) {
				t.Errorf("Bounds() = %v", img.Bounds())
			}
		})
	}
}

func TestWrap_AliasesInput(t *testing.T) {
	data := make([]byte, 2*2*2)
	img, err := Wrap(data, 2, 2, "RGB16")
	if err != nil {
		t.Fatal(err)
	}

	// Writing the mapped memory must be visible through the view.
	data[6], data[7] = 0x00, 0xf8
	if got := img.(*Packed).RGBAAt(1, 1); got.R != 0xff {
		t.Errorf("view did not alias input, got %v", got)
	}
}

func TestWrap_StandardTypes(t *testing.T) {
	rgba, err := Wrap(make([]byte, 16), 2, 2, "RGBA")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rgba.(*image.RGBA); !ok {
		t.Errorf("RGBA should wrap as *image.RGBA, got %T", rgba)
	}

	gray, err := Wrap(make([]byte, 4), 2, 2, "GRAY8")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gray.(*image.Gray); !ok {
		t.Errorf("GRAY8 should wrap as *image.Gray, got %T", gray)
	}

	// 3x3 I420: 9 luma + 2x2 Cb + 2x2 Cr.
	yuv, err := Wrap(make([]byte, 17), 3, 3, "I420")
	if err != nil {
		t.Fatal(err)
	}
	ycc, ok := yuv.(*image.YCbCr)
	if !ok {
		t.Fatalf("I420 should wrap as *image.YCbCr, got %T", yuv)
	}
	if len(ycc.Y) != 9 || len(ycc.Cb) != 4 || len(ycc.Cr) != 4 {
		t.Errorf("plane sizes Y=%d Cb=%d Cr=%d", len(ycc.Y), len(ycc.Cb), len(ycc.Cr))
	}
}

func TestWrap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		w, h    int
		format  string
		wantErr error
	}{
		{"unsupported", make([]byte, 100), 4, 4, "YUY2", ErrUnsupported},
		{"unknown", make([]byte, 100), 4, 4, "bogus", ErrUnsupported},
		{"short", make([]byte, 10), 4, 4, "RGB16", ErrShortBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Wrap(tt.data, tt.w, tt.h, tt.format)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Wrap() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Wrap(make([]byte, 4), 0, 2, "RGB16"); err == nil {
		t.Error("zero width should fail")
	}
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		format string
		w, h   int
		want   int
	}{
		{"RGB16", 320, 240, 153600},
		{"BGRx", 320, 240, 307200},
		{"RGB", 2, 2, 12},
		{"I420", 4, 4, 24},
		{"NV21", 4, 4, 0},
	}
	for _, tt := range tests {
		if got := FrameSize(tt.format, tt.w, tt.h); got != tt.want {
			t.Errorf("FrameSize(%s, %d, %d) = %d, want %d", tt.format, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestPacked_OutOfBounds(t *testing.T) {
	img, err := Wrap(make([]byte, 12), 2, 2, "RGB")
	if err != nil {
		t.Fatal(err)
	}
	if got := img.(*Packed).RGBAAt(5, 5); got != (color.RGBA{}) {
		t.Errorf("out of bounds = %v, want zero", got)
	}
	if !img.(*Packed).Opaque() {
		t.Error("RGB is opaque")
	}
}
