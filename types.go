package liveview

import (
	"fmt"
	"image"
	"strings"
)

// PixelFormat is the widget/display pixel format
type PixelFormat int

const (
	// FormatUnspecified means "use the widget's format"
	FormatUnspecified PixelFormat = iota
	// FormatRGB565 is 16-bit RGB, little endian
	FormatRGB565
	// FormatARGB8888 is 32-bit ARGB
	FormatARGB8888
	// FormatXRGB8888 is 32-bit RGB with an unused byte
	FormatXRGB8888
	// FormatRGB888 is packed 24-bit RGB
	FormatRGB888
	// FormatYUYV is packed 4:2:2 YUV
	FormatYUYV
	// FormatNV21 is semi-planar 4:2:0 YUV, VU order
	FormatNV21
	// FormatYUV420 is planar 4:2:0 YUV
	FormatYUV420
)

var formatNames = map[PixelFormat]string{
	FormatUnspecified: "unspecified",
	FormatRGB565:      "rgb565",
	FormatARGB8888:    "argb8888",
	FormatXRGB8888:    "xrgb8888",
	FormatRGB888:      "rgb888",
	FormatYUYV:        "yuyv",
	FormatNV21:        "nv21",
	FormatYUV420:      "yuv420",
}

// Engine format tokens. Little-endian 32-bit ARGB is BGRA in memory order.
var formatTokens = map[PixelFormat]string{
	FormatRGB565:   "RGB16",
	FormatARGB8888: "BGRA",
	FormatXRGB8888: "BGRx",
	FormatRGB888:   "RGB",
	FormatYUYV:     "YUY2",
	FormatNV21:     "NV21",
	FormatYUV420:   "I420",
}

// String returns the lowercase name of the format
func (f PixelFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Token returns the engine's caps format token, or "" for an unknown
// format.
func (f PixelFormat) Token() string {
	return formatTokens[f]
}

// ParsePixelFormat accepts a format name ("rgb565") or an engine token
// ("RGB16").
func ParsePixelFormat(s string) (PixelFormat, error) {
	for f, name := range formatNames {
		if f != FormatUnspecified && strings.EqualFold(s, name) {
			return f, nil
		}
	}
	for f, tok := range formatTokens {
		if s == tok {
			return f, nil
		}
	}
	return FormatUnspecified, fmt.Errorf("unknown pixel format %q", s)
}

// SinkMode selects how frames reach the widget
type SinkMode int

const (
	// BufferedSample hands each frame to the GUI thread for Draw.
	BufferedSample SinkMode = iota
	// OverlayZeroCopy writes frames into the widget's overlay plane.
	OverlayZeroCopy
)

// String returns a human-readable name for the mode
func (m SinkMode) String() string {
	switch m {
	case OverlayZeroCopy:
		return "overlay"
	case BufferedSample:
		return "buffered"
	default:
		return "unknown"
	}
}

// ParseSinkMode parses "overlay" or "buffered".
func ParseSinkMode(s string) (SinkMode, error) {
	switch strings.ToLower(s) {
	case "overlay", "zero-copy", "zerocopy":
		return OverlayZeroCopy, nil
	case "buffered", "sample", "":
		return BufferedSample, nil
	default:
		return BufferedSample, fmt.Errorf("unknown sink mode %q", s)
	}
}

// Config contains the capture configuration.
//
// A Controller reads it when a pipeline is built. Changing it requires a
// Stop and a new Start.
type Config struct {
	// Device is the V4L2 device path (required)
	Device string
	// Rect is the destination box in widget coordinates
	Rect image.Rectangle
	// Format of the captured frames. FormatUnspecified uses the widget's format.
	Format PixelFormat
	// Mode selects the delivery path
	Mode SinkMode
	// KMSSink lets the engine's plane sink write the overlay itself in
	// OverlayZeroCopy mode. Requires a GEM name on the overlay.
	KMSSink bool
	// Framerate in frames per second (default: 15)
	Framerate int
}

// Validate checks the configuration for values no pipeline can use
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device is required")
	}
	if c.Rect.Dx() < 0 || c.Rect.Dy() < 0 {
		return fmt.Errorf("invalid destination rectangle %v", c.Rect)
	}
	if c.Format != FormatUnspecified && c.Format.Token() == "" {
		return fmt.Errorf("invalid pixel format %s", c.Format)
	}
	if c.Framerate < 0 {
		return fmt.Errorf("framerate must be >= 0, got %d", c.Framerate)
	}
	return nil
}

// State is the controller's pipeline state
type State int

const (
	// StateIdle means no pipeline was ever started
	StateIdle State = iota
	// StatePlaying means a pipeline is running
	StatePlaying
	// StateStopped means the last pipeline was torn down
	StateStopped
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EventID identifies a widget event handler list
type EventID int

const (
	// EventError fires after ErrorMessage was updated
	EventError EventID = iota
	// EventPropertyChanged fires when the controller state changes
	EventPropertyChanged
)

// String returns a human-readable name for the event
func (e EventID) String() string {
	switch e {
	case EventError:
		return "error"
	case EventPropertyChanged:
		return "property-changed"
	default:
		return "unknown"
	}
}

// Stats contains controller statistics
type Stats struct {
	// State is the controller state
	State State
	// Starts is the number of pipelines that reached playing
	Starts uint64
	// FramesDelivered is the number of frames handed over by the engine
	FramesDelivered uint64
	// FramesSuperseded is the number of pending frames replaced before drawing
	FramesSuperseded uint64
	// FramesDrawn is the number of frames painted by Draw
	FramesDrawn uint64
	// FramesStale is the number of frames from a torn-down pipeline
	FramesStale uint64
	// FlowErrors counts callbacks that found no sample
	FlowErrors uint64
	// OverlayFlips is the number of overlay flips requested
	OverlayFlips uint64
	// BytesRead is the number of frame bytes copied into the overlay
	BytesRead uint64
	// BusErrors counts pipeline errors by category name
	BusErrors map[string]uint64
	// SessionID identifies the current pipeline in logs
	SessionID string
	// EngineRunning reports whether the engine's run loop is running
	EngineRunning bool
}
