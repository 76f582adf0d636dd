//go:build linux

package probe

import (
	"fmt"
	"log/slog"

	"github.com/vladimirvivien/go4vl/device"
)

// Probe opens path and reads its capabilities and current format.
func Probe(path string) (Result, error) {
	dev, err := device.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("probe: open %s: %w", path, err)
	}
	defer dev.Close()

	caps := dev.Capability()
	r := Result{
		Device:    path,
		Driver:    caps.Driver,
		Card:      caps.Card,
		BusInfo:   caps.BusInfo,
		Version:   kernelVersion(caps.Version),
		Capture:   caps.IsVideoCaptureSupported(),
		Streaming: caps.IsStreamingSupported(),
	}

	pix, err := dev.GetPixFormat()
	if err != nil {
		return r, fmt.Errorf("probe: get format of %s: %w", path, err)
	}
	r.Width = int(pix.Width)
	r.Height = int(pix.Height)
	r.FourCC = fourCCString(uint32(pix.PixelFormat))
	r.BytesPerLine = int(pix.BytesPerLine)
	r.SizeImage = int(pix.SizeImage)

	if fps, err := dev.GetFrameRate(); err == nil {
		r.FPS = int(fps)
	} else {
		slog.Debug("probe: frame rate unavailable", "device", path, "error", err)
	}

	descs, err := dev.GetFormatDescriptions()
	if err != nil {
		slog.Debug("probe: format list unavailable", "device", path, "error", err)
		return r, nil
	}
	for _, d := range descs {
		r.Formats = append(r.Formats, Format{
			FourCC:      fourCCString(uint32(d.PixelFormat)),
			Description: d.Description,
		})
	}

	return r, nil
}

// kernelVersion renders a KERNEL_VERSION(a, b, c) value.
func kernelVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>16&0xff, v>>8&0xff, v&0xff)
}
