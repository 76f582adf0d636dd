package pipeline

import (
	"strconv"
	"strings"
	"testing"
)

func TestBuild_Buffered(t *testing.T) {
	got := Build(Params{
		Device:    "/dev/video0",
		Width:     320,
		Height:    240,
		Format:    "RGB16",
		Framerate: 15,
		Mode:      ModeBuffered,
	})

	want := "v4l2src device=/dev/video0 ! videoconvert ! videoscale ! " +
		"video/x-raw,width=320,height=240,format=RGB16,framerate=15/1 ! " +
		"appsink name=appsink async=false enable-last-sample=false sync=true"
	if got != want {
		t.Errorf("Build() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestBuild_Overlay(t *testing.T) {
	got := Build(Params{
		Device:    "/dev/video1",
		Width:     800,
		Height:    480,
		Format:    "BGRx",
		Framerate: 30,
		Mode:      ModeOverlay,
		GEM:       "7",
	})

	want := "v4l2src device=/dev/video1 ! videoconvert ! videoscale ! " +
		"video/x-raw,width=800,height=480,format=BGRx,framerate=30/1 ! " +
		"g1kmssink gem-name=7"
	if got != want {
		t.Errorf("Build() =\n  %s\nwant\n  %s", got, want)
	}
	if strings.Contains(got, "appsink") {
		t.Error("overlay spec must not contain an appsink")
	}
}

// TestBuild_Properties checks determinism and that device and geometry are
// always carried verbatim.
func TestBuild_Properties(t *testing.T) {
	devices := []string{"/dev/video0", "/dev/video12", "/dev/v4l/by-id/usb-cam-video-index0"}
	boxes := [][2]int{{320, 240}, {640, 480}, {1, 1}, {1920, 1080}}
	formats := []string{"RGB16", "BGRx", "YUY2", "I420"}
	modes := []Mode{ModeBuffered, ModeOverlay}

	for _, dev := range devices {
		for _, box := range boxes {
			for _, f := range formats {
				for _, m := range modes {
					p := Params{Device: dev, Width: box[0], Height: box[1], Format: f, Mode: m, GEM: "1"}
					a, b := Build(p), Build(p)
					if a != b {
						t.Fatalf("Build not deterministic for %+v", p)
					}
					for _, want := range []string{
						"device=" + dev,
						"width=" + strconv.Itoa(box[0]),
						"height=" + strconv.Itoa(box[1]),
						"format=" + f,
					} {
						if !strings.Contains(a, want) {
							t.Fatalf("spec %q missing %q", a, want)
						}
					}
				}
			}
		}
	}
}

func TestBuild_DefaultFramerate(t *testing.T) {
	got := Build(Params{Device: "/dev/video0", Width: 10, Height: 10, Format: "RGB"})
	if !strings.Contains(got, "framerate=15/1") {
		t.Errorf("expected default framerate 15/1, got %q", got)
	}
}

func TestBuild_QuotesDevice(t *testing.T) {
	tests := []struct {
		name   string
		device string
		want   string
	}{
		{"plain", "/dev/video0", "device=/dev/video0 "},
		{"space", "/tmp/my cam", `device="/tmp/my cam" `},
		{"bang", "/tmp/a!b", `device="/tmp/a!b" `},
		{"empty", "", `device="" `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(Params{Device: tt.device, Width: 1, Height: 1, Format: "RGB"})
			if !strings.Contains(got, tt.want) {
				t.Errorf("Build() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	if ModeBuffered.String() != "buffered" || ModeOverlay.String() != "overlay" {
		t.Errorf("unexpected mode names: %s, %s", ModeBuffered, ModeOverlay)
	}
}
