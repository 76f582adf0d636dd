// Package config loads the live-view YAML configuration.
package config

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	liveview "github.com/e7canasta/orion-care-sensor/modules/live-view"
)

// Config represents the complete live-view configuration
type Config struct {
	Camera        CameraConfig  `yaml:"camera"`
	Overlay       OverlayConfig `yaml:"overlay"`
	Output        OutputConfig  `yaml:"output"`
	Restart       RestartConfig `yaml:"restart"`
	Log           LogConfig     `yaml:"log"`
	StatsInterval time.Duration `yaml:"stats_interval"` // frame-rate report period (default: 10s)
}

// CameraConfig describes the capture device and destination box
type CameraConfig struct {
	Device    string `yaml:"device"`    // V4L2 device path
	X         int    `yaml:"x"`         // destination box origin
	Y         int    `yaml:"y"`
	Width     int    `yaml:"width"`     // destination box size
	Height    int    `yaml:"height"`
	Format    string `yaml:"format"`    // rgb565, xrgb8888, ... or an engine token (RGB16)
	Mode      string `yaml:"mode"`      // buffered, overlay
	KMSSink   bool   `yaml:"kmssink"`   // let the plane sink write the overlay
	Framerate int    `yaml:"framerate"` // frames per second
}

// OverlayConfig describes the framebuffer used as overlay plane
type OverlayConfig struct {
	Device string `yaml:"device"` // e.g. /dev/fb1
	GEM    string `yaml:"gem"`    // hardware buffer name for the KMS sink
}

// OutputConfig controls snapshots of drawn frames
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // snapshot directory, empty disables
	Format      string `yaml:"format"`       // png, jpeg
	JPEGQuality int    `yaml:"jpeg_quality"` // 1-100
	Every       int    `yaml:"every"`        // save every Nth drawn frame
	MaxFrames   int    `yaml:"max_frames"`   // stop after N frames, 0 = unlimited
}

// RestartConfig controls restarting capture after errors
type RestartConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file, expands environment variables, applies defaults
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Camera.Device == "" {
		c.Camera.Device = "/dev/video0"
	}
	if c.Camera.Width == 0 {
		c.Camera.Width = 320
	}
	if c.Camera.Height == 0 {
		c.Camera.Height = 240
	}
	if c.Camera.Format == "" {
		c.Camera.Format = "rgb565"
	}
	if c.Camera.Mode == "" {
		c.Camera.Mode = "buffered"
	}
	if c.Camera.Framerate == 0 {
		c.Camera.Framerate = 15
	}
	if c.Output.Format == "" {
		c.Output.Format = "png"
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = 90
	}
	if c.Output.Every == 0 {
		c.Output.Every = 1
	}
	if c.Restart.MaxRetries == 0 {
		c.Restart.MaxRetries = 5
	}
	if c.Restart.InitialDelay == 0 {
		c.Restart.InitialDelay = time.Second
	}
	if c.Restart.MaxDelay == 0 {
		c.Restart.MaxDelay = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = 10 * time.Second
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.Framerate < 0 {
		return fmt.Errorf("camera framerate must be >= 0, got %d", c.Camera.Framerate)
	}
	if _, err := liveview.ParsePixelFormat(c.Camera.Format); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	mode, err := liveview.ParseSinkMode(c.Camera.Mode)
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if mode == liveview.OverlayZeroCopy && c.Overlay.Device == "" {
		return fmt.Errorf("overlay mode requires overlay.device")
	}
	if c.Camera.KMSSink && c.Overlay.GEM == "" {
		return fmt.Errorf("kmssink requires overlay.gem")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("output format must be png or jpeg, got %q", c.Output.Format)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output jpeg_quality must be 1-100, got %d", c.Output.JPEGQuality)
	}
	if c.Output.Every < 1 {
		return fmt.Errorf("output every must be >= 1, got %d", c.Output.Every)
	}
	if c.Output.MaxFrames < 0 {
		return fmt.Errorf("output max_frames must be >= 0, got %d", c.Output.MaxFrames)
	}

	if c.Restart.MaxRetries < 0 {
		return fmt.Errorf("restart max_retries must be >= 0, got %d", c.Restart.MaxRetries)
	}
	if c.Restart.MaxDelay < c.Restart.InitialDelay {
		return fmt.Errorf("restart max_delay (%s) is shorter than initial_delay (%s)",
			c.Restart.MaxDelay, c.Restart.InitialDelay)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must be >= 0, got %s", c.StatsInterval)
	}
	return nil
}

// Capture converts the camera section into a controller configuration.
func (c *Config) Capture() (liveview.Config, error) {
	format, err := liveview.ParsePixelFormat(c.Camera.Format)
	if err != nil {
		return liveview.Config{}, err
	}
	mode, err := liveview.ParseSinkMode(c.Camera.Mode)
	if err != nil {
		return liveview.Config{}, err
	}

	return liveview.Config{
		Device:    c.Camera.Device,
		Rect:      image.Rect(c.Camera.X, c.Camera.Y, c.Camera.X+c.Camera.Width, c.Camera.Y+c.Camera.Height),
		Format:    format,
		Mode:      mode,
		KMSSink:   c.Camera.KMSSink,
		Framerate: c.Camera.Framerate,
	}, nil
}
