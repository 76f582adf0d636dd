package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/config"
)

// Version is the application version.
const Version = "v0.1.0"

var (
	configPath string
	debug      bool

	// cfg is loaded before every subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "live-view",
	Short:   "Live camera view over GStreamer",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		if err := applyFlags(cmd); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		setupLogging(cfg.Log)
		return nil
	},
}

// Execute runs the root command until it returns or SIGINT/SIGTERM
// cancels its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Flags that override the configuration file. They are only applied when
// set on the command line.
var overrides struct {
	device    string
	width     int
	height    int
	format    string
	mode      string
	kmssink   bool
	framerate int
	fbdev     string
	gem       string
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	pf.StringVarP(&overrides.device, "device", "d", "", "V4L2 capture device (default: /dev/video0)")
	pf.IntVar(&overrides.width, "width", 0, "Destination width (default: 320)")
	pf.IntVar(&overrides.height, "height", 0, "Destination height (default: 240)")
	pf.StringVarP(&overrides.format, "format", "f", "", "Pixel format: rgb565, argb8888, xrgb8888, rgb888, yuyv, nv21, yuv420")
	pf.StringVarP(&overrides.mode, "mode", "m", "", "Delivery mode: buffered, overlay")
	pf.BoolVar(&overrides.kmssink, "kmssink", false, "Let the plane sink write the overlay directly")
	pf.IntVar(&overrides.framerate, "framerate", 0, "Capture framerate (default: 15)")
	pf.StringVar(&overrides.fbdev, "fbdev", "", "Framebuffer device used as overlay plane")
	pf.StringVar(&overrides.gem, "gem", "", "Hardware buffer name for the plane sink")
}

func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Camera.Device = overrides.device
	}
	if flags.Changed("width") {
		cfg.Camera.Width = overrides.width
	}
	if flags.Changed("height") {
		cfg.Camera.Height = overrides.height
	}
	if flags.Changed("format") {
		cfg.Camera.Format = overrides.format
	}
	if flags.Changed("mode") {
		cfg.Camera.Mode = overrides.mode
	}
	if flags.Changed("kmssink") {
		cfg.Camera.KMSSink = overrides.kmssink
	}
	if flags.Changed("framerate") {
		cfg.Camera.Framerate = overrides.framerate
	}
	if flags.Changed("fbdev") {
		cfg.Overlay.Device = overrides.fbdev
	}
	if flags.Changed("gem") {
		cfg.Overlay.GEM = overrides.gem
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return nil
}

func setupLogging(lc config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(lc.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
