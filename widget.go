package liveview

import "image"

// Widget is the GUI element the video is shown in.
//
// All methods are called on the GUI thread.
type Widget interface {
	// ContentArea returns the drawable box in widget coordinates
	ContentArea() image.Rectangle
	// Format returns the display's pixel format
	Format() PixelFormat
	// Damage requests a repaint
	Damage()
	// Resize changes the widget size
	Resize(size image.Point)
	// Screen returns the overlay plane, or nil when there is none
	Screen() Overlay
	// InvokeHandlers runs the handlers registered for id
	InvokeHandlers(id EventID)
	// PlaneWindow reports whether the widget is backed by a hardware plane
	PlaneWindow() bool
}

// Overlay is a hardware overlay plane.
//
// Raw and ScheduleFlip are called from the engine's streaming thread in
// OverlayZeroCopy mode, so implementations must allow that.
type Overlay interface {
	// Raw returns the plane's pixel memory
	Raw() []byte
	// ScheduleFlip presents what was written to Raw
	ScheduleFlip()
	// GEM returns the name of the plane's hardware buffer, or ""
	GEM() string
}

// EventLoop posts closures onto the GUI thread.
//
// Post must not block and must run closures in the order they were posted.
type EventLoop interface {
	Post(fn func())
}
