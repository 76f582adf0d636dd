package main

import (
	"fmt"

	"github.com/spf13/cobra"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show what the capture device reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := probe.Probe(cfg.Camera.Device)
		if err != nil {
			return err
		}
		fmt.Print(res.String())

		if ok, reason := res.Usable(); !ok {
			return fmt.Errorf("%s is not usable: %s", res.Device, reason)
		}

		format, err := liveview.ParsePixelFormat(cfg.Camera.Format)
		if err != nil {
			return err
		}
		fmt.Printf("\nConfigured format %s (%s)\n", format, format.Token())
		if !res.SupportsToken(format.Token()) {
			fmt.Printf("⚠️  Device has no native %s mode, videoconvert will convert\n", format.Token())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
