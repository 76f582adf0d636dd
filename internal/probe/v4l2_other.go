//go:build !linux

package probe

import "errors"

// ErrUnsupported is returned by Probe on platforms without V4L2.
var ErrUnsupported = errors.New("probe: V4L2 requires linux")

// Probe always fails on this platform.
func Probe(path string) (Result, error) {
	return Result{Device: path}, ErrUnsupported
}
