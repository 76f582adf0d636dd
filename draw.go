package liveview

import (
	"fmt"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/pixfmt"
)

// Draw paints the pending frame into dst at the widget's content area and
// releases it.
//
// The frame replaces what is under it (source operator). When its size
// differs from the content area it is scaled to fit. Draw is a no-op when no
// frame is pending. Must be called on the GUI thread.
func (c *Controller) Draw(dst draw.Image) error {
	f := c.pending.Take()
	if f == nil {
		return nil
	}
	defer f.Release()

	sample := f.Sample
	info, err := sample.Info()
	if err != nil {
		return fmt.Errorf("failed to read frame caps: %w", err)
	}

	data, err := sample.Map()
	if err != nil {
		return fmt.Errorf("failed to map frame buffer: %w", err)
	}
	defer sample.Unmap()

	src, err := pixfmt.Wrap(data, info.Width, info.Height, info.Format)
	if err != nil {
		return fmt.Errorf("failed to wrap frame %s: %w", info, err)
	}

	box := c.widget.ContentArea()
	if box.Empty() {
		return nil
	}

	sr := src.Bounds()
	if box.Dx() == sr.Dx() && box.Dy() == sr.Dy() {
		xdraw.Copy(dst, box.Min, src, sr, xdraw.Src, nil)
	} else {
		sx := float64(box.Dx()) / float64(sr.Dx())
		sy := float64(box.Dy()) / float64(sr.Dy())
		m := f64.Aff3{
			sx, 0, float64(box.Min.X),
			0, sy, float64(box.Min.Y),
		}
		xdraw.ApproxBiLinear.Transform(dst, m, src, sr, xdraw.Src, nil)
	}

	c.drawn.Add(1)
	return nil
}
