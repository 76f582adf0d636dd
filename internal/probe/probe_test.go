package probe

import (
	"strings"
	"testing"
)

func TestFourCCString(t *testing.T) {
	tests := []struct {
		code uint32
		want string
	}{
		{0x56595559, "YUYV"},
		{0x50424752, "RGBP"},
		{0x47504a4d, "MJPG"},
		{0x20203859, "Y8"}, // trailing spaces trimmed
		{0, ""},
	}
	for _, tt := range tests {
		if got := fourCCString(tt.code); got != tt.want {
			t.Errorf("fourCCString(%#x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestEngineToken(t *testing.T) {
	tests := map[string]string{
		"RGBP": "RGB16",
		"YUYV": "YUY2",
		"YU12": "I420",
		"XR24": "BGRx",
		"MJPG": "",
		"????": "",
	}
	for fourcc, want := range tests {
		if got := EngineToken(fourcc); got != want {
			t.Errorf("EngineToken(%q) = %q, want %q", fourcc, got, want)
		}
	}
}

func TestResult_Usable(t *testing.T) {
	tests := []struct {
		name   string
		r      Result
		ok     bool
		reason string
	}{
		{"capture+streaming", Result{Capture: true, Streaming: true}, true, ""},
		{"output device", Result{Streaming: true}, false, "video capture"},
		{"read only", Result{Capture: true}, false, "streaming"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.r.Usable()
			if ok != tt.ok || !strings.Contains(reason, tt.reason) {
				t.Errorf("Usable() = %v, %q", ok, reason)
			}
		})
	}
}

func TestResult_String(t *testing.T) {
	r := Result{
		Device:  "/dev/video0",
		Driver:  "uvcvideo",
		Card:    "USB Camera",
		Capture: true,
		Width:   640,
		Height:  480,
		FourCC:  "YUYV",
		FPS:     30,
		Formats: []Format{
			{FourCC: "YUYV", Description: "YUYV 4:2:2"},
			{FourCC: "MJPG", Description: "Motion-JPEG"},
		},
	}

	out := r.String()
	for _, want := range []string{"/dev/video0", "uvcvideo", "YUYV 640x480", "@ 30 fps", "YUY2", "Motion-JPEG"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
	if !r.Supports("MJPG") || r.Supports("NV12") {
		t.Error("Supports() mismatch")
	}
	if !r.SupportsToken("YUY2") || r.SupportsToken("RGB16") || r.SupportsToken("") {
		t.Error("SupportsToken() mismatch")
	}
}
