// Package headless implements a liveview.Widget without a window system.
//
// Frames are painted into an in-memory RGBA surface which can be written
// out as PNG or JPEG snapshots.
package headless

import (
	"image"
	"image/draw"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
)

// Widget is an off-screen widget. Like any widget it must only be used on
// the GUI thread.
type Widget struct {
	area     image.Rectangle
	format   liveview.PixelFormat
	screen   liveview.Overlay
	surface  *image.RGBA
	handlers map[liveview.EventID][]func()

	// OnDamage is called whenever a repaint is requested.
	OnDamage func()

	damages int
}

// New creates a widget whose content area is area.
//
// screen may be nil; it is returned by Screen for overlay delivery.
func New(area image.Rectangle, format liveview.PixelFormat, screen liveview.Overlay) *Widget {
	return &Widget{
		area:     area,
		format:   format,
		screen:   screen,
		surface:  image.NewRGBA(image.Rect(0, 0, area.Max.X, area.Max.Y)),
		handlers: make(map[liveview.EventID][]func()),
	}
}

// On registers fn for id.
func (w *Widget) On(id liveview.EventID, fn func()) {
	w.handlers[id] = append(w.handlers[id], fn)
}

func (w *Widget) ContentArea() image.Rectangle { return w.area }
func (w *Widget) Format() liveview.PixelFormat { return w.format }
func (w *Widget) Screen() liveview.Overlay     { return w.screen }
func (w *Widget) PlaneWindow() bool            { return w.screen != nil }

// Damage requests a repaint.
func (w *Widget) Damage() {
	w.damages++
	if w.OnDamage != nil {
		w.OnDamage()
	}
}

// Damages returns how many repaints were requested.
func (w *Widget) Damages() int { return w.damages }

// Resize changes the content area size, keeping its origin, and grows the
// surface when needed.
func (w *Widget) Resize(size image.Point) {
	w.area = image.Rectangle{Min: w.area.Min, Max: w.area.Min.Add(size)}

	need := image.Rect(0, 0, w.area.Max.X, w.area.Max.Y)
	if need.In(w.surface.Bounds()) {
		return
	}
	grown := image.NewRGBA(need.Union(w.surface.Bounds()))
	draw.Draw(grown, w.surface.Bounds(), w.surface, image.Point{}, draw.Src)
	w.surface = grown
}

// InvokeHandlers runs the handlers registered for id in order.
func (w *Widget) InvokeHandlers(id liveview.EventID) {
	for _, fn := range w.handlers[id] {
		fn()
	}
}

// Surface returns the paint target.
func (w *Widget) Surface() *image.RGBA { return w.surface }

// Content returns the part of the surface covered by the content area.
func (w *Widget) Content() image.Image {
	return w.surface.SubImage(w.area)
}
