package main

import (
	"fmt"

	"github.com/spf13/cobra"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Print the capture pipeline description without starting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		capture, err := cfg.Capture()
		if err != nil {
			return err
		}
		fmt.Println(pipeline.Build(pipelineParams(capture)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}

// pipelineParams mirrors the template choice the controller makes: only
// the plane sink writes the overlay itself.
func pipelineParams(c liveview.Config) pipeline.Params {
	p := pipeline.Params{
		Device:    c.Device,
		Width:     c.Rect.Dx(),
		Height:    c.Rect.Dy(),
		Format:    c.Format.Token(),
		Framerate: c.Framerate,
		Mode:      pipeline.ModeBuffered,
	}
	if c.Mode == liveview.OverlayZeroCopy && c.KMSSink && cfg.Overlay.GEM != "" {
		p.Mode = pipeline.ModeOverlay
		p.GEM = cfg.Overlay.GEM
	}
	return p
}
