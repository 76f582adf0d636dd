// Package probe queries a V4L2 capture device before a pipeline is built.
package probe

import (
	"fmt"
	"strings"
)

// Format is one pixel format a device offers
type Format struct {
	FourCC      string
	Description string
}

// Result describes a capture device
type Result struct {
	Device    string
	Driver    string
	Card      string
	BusInfo   string
	Version   string
	Capture   bool // supports video capture
	Streaming bool // supports streaming I/O

	// Current format
	Width        int
	Height       int
	FourCC       string
	BytesPerLine int
	SizeImage    int
	FPS          int

	Formats []Format
}

// Usable reports whether the device can feed a capture pipeline, and why not.
func (r Result) Usable() (bool, string) {
	switch {
	case !r.Capture:
		return false, "device does not support video capture"
	case !r.Streaming:
		return false, "device does not support streaming I/O"
	}
	return true, ""
}

// Supports reports whether the device offers the given FourCC.
func (r Result) Supports(fourcc string) bool {
	for _, f := range r.Formats {
		if f.FourCC == fourcc {
			return true
		}
	}
	return r.FourCC == fourcc
}

// SupportsToken reports whether any offered FourCC maps to the engine
// format token.
func (r Result) SupportsToken(token string) bool {
	if token == "" {
		return false
	}
	if EngineToken(r.FourCC) == token {
		return true
	}
	for _, f := range r.Formats {
		if EngineToken(f.FourCC) == token {
			return true
		}
	}
	return false
}

// String renders the result for the CLI
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "device:     %s\n", r.Device)
	fmt.Fprintf(&b, "driver:     %s %s\n", r.Driver, r.Version)
	fmt.Fprintf(&b, "card:       %s\n", r.Card)
	fmt.Fprintf(&b, "bus:        %s\n", r.BusInfo)
	fmt.Fprintf(&b, "capture:    %v\n", r.Capture)
	fmt.Fprintf(&b, "streaming:  %v\n", r.Streaming)
	fmt.Fprintf(&b, "format:     %s %dx%d (%d bytes/line, %d bytes/frame)",
		r.FourCC, r.Width, r.Height, r.BytesPerLine, r.SizeImage)
	if r.FPS > 0 {
		fmt.Fprintf(&b, " @ %d fps", r.FPS)
	}
	b.WriteByte('\n')
	for _, f := range r.Formats {
		token := EngineToken(f.FourCC)
		if token == "" {
			token = "-"
		}
		fmt.Fprintf(&b, "  %-4s  %-6s  %s\n", f.FourCC, token, f.Description)
	}
	return b.String()
}

// V4L2 FourCC → engine caps format token.
var engineTokens = map[string]string{
	"RGBP": "RGB16",
	"RGB3": "RGB",
	"BGR3": "BGR",
	"BGR4": "BGRx",
	"XR24": "BGRx",
	"AR24": "BGRA",
	"YUYV": "YUY2",
	"UYVY": "UYVY",
	"NV12": "NV12",
	"NV21": "NV21",
	"YU12": "I420",
	"GREY": "GRAY8",
	"MJPG": "",
}

// EngineToken returns the engine format token for a V4L2 FourCC, or "".
func EngineToken(fourcc string) string {
	return engineTokens[fourcc]
}

// fourCCString renders a little-endian FourCC code.
func fourCCString(code uint32) string {
	b := []byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)}
	return strings.TrimRight(string(b), " \x00")
}
