package pipeline

import (
	"fmt"
	"strings"
)

// AppSinkName is the name given to the appsink element in buffered specs.
// The controller looks the element up by this name after parsing.
const AppSinkName = "appsink"

// DefaultFramerate is used when Params.Framerate is not positive.
const DefaultFramerate = 15

// Mode selects the sink end of the pipeline.
type Mode int

const (
	// ModeBuffered ends in a pull-based appsink.
	ModeBuffered Mode = iota
	// ModeOverlay ends in a KMS plane sink writing the overlay's buffer.
	ModeOverlay
)

// String returns a human-readable name for the mode
func (m Mode) String() string {
	switch m {
	case ModeOverlay:
		return "overlay"
	default:
		return "buffered"
	}
}

// Params contains everything a capture spec depends on
type Params struct {
	Device    string
	Width     int
	Height    int
	Format    string // engine format token, e.g. "RGB16"
	Framerate int
	Mode      Mode
	GEM       string // hardware buffer name, overlay mode only
}

// Build returns the textual pipeline description for p.
//
// Pipeline structure:
//
//	v4l2src → videoconvert → videoscale → capsfilter → g1kmssink   (ModeOverlay)
//	v4l2src → videoconvert → videoscale → capsfilter → appsink     (ModeBuffered)
//
// The appsink keeps no last sample and syncs to the pipeline clock so that
// frames arrive in real time and stale ones are dropped rather than queued.
//
// Build never fails. Bad devices or formats surface when the engine parses
// or starts the pipeline.
func Build(p Params) string {
	var b strings.Builder

	b.WriteString("v4l2src device=")
	b.WriteString(quote(p.Device))
	b.WriteString(" ! videoconvert ! videoscale ! ")
	b.WriteString(buildCaps(p.Width, p.Height, p.Format, p.Framerate))

	switch p.Mode {
	case ModeOverlay:
		fmt.Fprintf(&b, " ! g1kmssink gem-name=%s", quote(p.GEM))
	default:
		fmt.Fprintf(&b, " ! appsink name=%s async=false enable-last-sample=false sync=true", AppSinkName)
	}

	return b.String()
}

// buildCaps builds the raw video caps string
//
// Format: "video/x-raw,width=W,height=H,format=F,framerate=N/1"
func buildCaps(width, height int, format string, framerate int) string {
	if framerate <= 0 {
		framerate = DefaultFramerate
	}
	return fmt.Sprintf(
		"video/x-raw,width=%d,height=%d,format=%s,framerate=%d/1",
		width, height, format, framerate,
	)
}

// quote double-quotes values the parser would otherwise split.
func quote(v string) string {
	if v == "" || strings.ContainsAny(v, " \t!\"") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
