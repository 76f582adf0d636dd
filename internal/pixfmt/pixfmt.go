// Package pixfmt wraps mapped frame memory as image.Image values without
// copying it.
//
// The returned images alias the input slice. They are valid only while the
// underlying sample stays mapped.
package pixfmt

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrUnsupported is returned for formats with no zero-copy view.
var ErrUnsupported = errors.New("pixfmt: unsupported format")

// ErrShortBuffer is returned when data is smaller than one full frame.
var ErrShortBuffer = errors.New("pixfmt: buffer too small for frame")

// layout describes a packed RGB format.
type layout struct {
	bpp     int
	r, g, b int // byte offsets within a pixel
	a       int // -1 when the format has no alpha
	rgb565  bool
}

var packed = map[string]layout{
	"RGB16": {bpp: 2, rgb565: true, a: -1},
	"RGB":   {bpp: 3, r: 0, g: 1, b: 2, a: -1},
	"BGR":   {bpp: 3, r: 2, g: 1, b: 0, a: -1},
	"BGRx":  {bpp: 4, r: 2, g: 1, b: 0, a: -1},
	"BGRA":  {bpp: 4, r: 2, g: 1, b: 0, a: 3},
	"xRGB":  {bpp: 4, r: 1, g: 2, b: 3, a: -1},
	"ARGB":  {bpp: 4, r: 1, g: 2, b: 3, a: 0},
}

// BytesPerPixel returns the pixel size of a packed format, or 0.
func BytesPerPixel(format string) int {
	if l, ok := packed[format]; ok {
		return l.bpp
	}
	switch format {
	case "RGBA", "RGBx":
		return 4
	case "GRAY8":
		return 1
	}
	return 0
}

// FrameSize returns the number of bytes one frame occupies, or 0 when the
// format is unknown.
func FrameSize(format string, width, height int) int {
	if format == "I420" {
		cw, ch := (width+1)/2, (height+1)/2
		return width*height + 2*cw*ch
	}
	return BytesPerPixel(format) * width * height
}

// Wrap returns a view of data as an image of the given size and format.
//
// Rows are assumed tightly packed. RGBA, RGBx and GRAY8 map to the standard
// library image types, I420 to *image.YCbCr; the remaining packed formats
// use *Packed.
func Wrap(data []byte, width, height int, format string) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pixfmt: invalid size %dx%d", width, height)
	}

	size := FrameSize(format, width, height)
	if size == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
	if len(data) < size {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d",
			ErrShortBuffer, format, width, height, size, len(data))
	}

	rect := image.Rect(0, 0, width, height)

	switch format {
	case "RGBA", "RGBx":
		// RGBx has an undefined fourth byte; image.RGBA treats it as alpha,
		// which is only correct when the producer fills it with 0xff.
		return &image.RGBA{Pix: data[:size], Stride: 4 * width, Rect: rect}, nil
	case "GRAY8":
		return &image.Gray{Pix: data[:size], Stride: width, Rect: rect}, nil
	case "I420":
		ySize := width * height
		cw, ch := (width+1)/2, (height+1)/2
		cSize := cw * ch
		return &image.YCbCr{
			Y:              data[:ySize],
			Cb:             data[ySize : ySize+cSize],
			Cr:             data[ySize+cSize : ySize+2*cSize],
			YStride:        width,
			CStride:        cw,
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}, nil
	}

	l := packed[format]
	return &Packed{
		Pix:    data[:size],
		Stride: l.bpp * width,
		Rect:   rect,
		Format: format,
		layout: l,
	}, nil
}

// Packed is an image over packed RGB pixels in one of the engine's byte
// orders.
type Packed struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
	Format string

	layout layout
}

func (p *Packed) ColorModel() color.Model { return color.RGBAModel }

func (p *Packed) Bounds() image.Rectangle { return p.Rect }

func (p *Packed) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

// RGBAAt returns the pixel at (x, y) as an opaque or alpha-carrying
// color.RGBA. Points outside the image are transparent black.
func (p *Packed) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	px := p.Pix[i : i+p.layout.bpp : i+p.layout.bpp]

	if p.layout.rgb565 {
		v := uint16(px[0]) | uint16(px[1])<<8
		r := uint8(v >> 11 & 0x1f)
		g := uint8(v >> 5 & 0x3f)
		b := uint8(v & 0x1f)
		return color.RGBA{
			R: r<<3 | r>>2,
			G: g<<2 | g>>4,
			B: b<<3 | b>>2,
			A: 0xff,
		}
	}

	c := color.RGBA{R: px[p.layout.r], G: px[p.layout.g], B: px[p.layout.b], A: 0xff}
	if p.layout.a >= 0 {
		// Treat the alpha byte as straight alpha and premultiply it.
		a := uint16(px[p.layout.a])
		c.R = uint8(uint16(c.R) * a / 0xff)
		c.G = uint8(uint16(c.G) * a / 0xff)
		c.B = uint8(uint16(c.B) * a / 0xff)
		c.A = uint8(a)
	}
	return c
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Packed) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*p.layout.bpp
}

// Opaque reports whether every pixel is fully opaque.
func (p *Packed) Opaque() bool {
	return p.layout.a < 0
}
