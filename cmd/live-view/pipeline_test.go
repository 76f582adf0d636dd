package main

import (
	"strings"
	"testing"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/config"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/pipeline"
)

func TestPipelineParams(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantMode pipeline.Mode
		wantSpec string
	}{
		{
			name:     "defaults",
			yaml:     "",
			wantMode: pipeline.ModeBuffered,
			wantSpec: "v4l2src device=/dev/video0 ! videoconvert ! videoscale ! video/x-raw,width=320,height=240,format=RGB16,framerate=15/1 ! appsink",
		},
		{
			name: "overlay through appsink",
			yaml: `
camera: {mode: overlay, format: xrgb8888, width: 640, height: 480}
overlay: {device: /dev/fb1}
`,
			wantMode: pipeline.ModeBuffered,
			wantSpec: "format=BGRx",
		},
		{
			name: "plane sink",
			yaml: `
camera: {mode: overlay, kmssink: true}
overlay: {device: /dev/fb1, gem: plane0}
`,
			wantMode: pipeline.ModeOverlay,
			wantSpec: "g1kmssink gem-name=plane0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			cfg, err = config.Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			capture, err := cfg.Capture()
			if err != nil {
				t.Fatal(err)
			}

			p := pipelineParams(capture)
			if p.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", p.Mode, tt.wantMode)
			}
			if spec := pipeline.Build(p); !strings.Contains(spec, tt.wantSpec) {
				t.Errorf("spec %q does not contain %q", spec, tt.wantSpec)
			}
			t.Logf("✅ %s: %s", tt.name, pipeline.Build(p))
		})
	}
}
