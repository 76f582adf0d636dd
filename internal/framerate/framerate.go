// Package framerate measures how steadily frames arrive.
package framerate

import (
	"math"
	"sync"
	"time"
)

const (
	// A feed is steady when the FPS standard deviation stays under 15% of
	// the mean FPS...
	fpsSteadyThreshold = 0.15

	// ...and the mean jitter stays under 20% of the expected frame interval.
	// 15 FPS (66ms) → steady if jitter < 13ms
	jitterSteadyThreshold = 0.20

	// deliveringFraction is the share of the configured framerate below
	// which the camera is reported as under-delivering.
	deliveringFraction = 0.9
)

// Report contains frame-rate statistics over a window
type Report struct {
	// Frames is the number of frames in the window
	Frames int
	// Duration is the length of the window
	Duration time.Duration
	// FPSMean is the overall rate
	FPSMean float64
	// FPSStdDev is the standard deviation of the instantaneous FPS
	FPSStdDev float64
	// FPSMin is the minimum instantaneous FPS
	FPSMin float64
	// FPSMax is the maximum instantaneous FPS
	FPSMax float64
	// JitterMean is the mean deviation from the expected interval, in seconds
	JitterMean float64
	// JitterStdDev is the standard deviation of the jitter, in seconds
	JitterStdDev float64
	// JitterMax is the largest deviation, in seconds
	JitterMax float64
	// Steady is true when both FPS and jitter stay within their thresholds
	Steady bool
}

// Calculate computes a report from frame arrival times over duration.
//
// Instantaneous FPS is taken per interval between consecutive frames;
// intervals of zero length are skipped. Fewer than two frames never count
// as steady.
func Calculate(arrivals []time.Time, duration time.Duration) Report {
	n := len(arrivals)
	r := Report{Frames: n, Duration: duration}
	if n == 0 || duration <= 0 {
		return r
	}

	r.FPSMean = float64(n) / duration.Seconds()

	instant := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if d := arrivals[i].Sub(arrivals[i-1]).Seconds(); d > 0 {
			instant = append(instant, 1/d)
		}
	}
	if len(instant) == 0 {
		return r
	}

	r.FPSMin, r.FPSMax = instant[0], instant[0]
	for _, fps := range instant {
		r.FPSMin = math.Min(r.FPSMin, fps)
		r.FPSMax = math.Max(r.FPSMax, fps)
	}
	r.FPSStdDev = stddev(instant, r.FPSMean)

	expected := 1 / r.FPSMean
	jitter := make([]float64, 0, n-1)
	var sum float64
	for i := 1; i < n; i++ {
		j := math.Abs(arrivals[i].Sub(arrivals[i-1]).Seconds() - expected)
		jitter = append(jitter, j)
		sum += j
		r.JitterMax = math.Max(r.JitterMax, j)
	}
	r.JitterMean = sum / float64(len(jitter))
	r.JitterStdDev = stddev(jitter, r.JitterMean)

	r.Steady = r.FPSStdDev < r.FPSMean*fpsSteadyThreshold &&
		r.JitterMean < expected*jitterSteadyThreshold
	return r
}

func stddev(values []float64, mean float64) float64 {
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// UnderDelivering reports whether the measured rate is clearly below the
// configured framerate. It returns false without a measurement.
func (r Report) UnderDelivering(configured int) bool {
	if r.Frames < 2 || configured <= 0 {
		return false
	}
	return r.FPSMean < float64(configured)*deliveringFraction
}

// Window collects frame arrival times over a sliding time span. Safe for
// concurrent use.
type Window struct {
	mu       sync.Mutex
	span     time.Duration
	arrivals []time.Time
	total    uint64
}

// NewWindow creates a window keeping the last span of arrivals.
func NewWindow(span time.Duration) *Window {
	return &Window{span: span}
}

// Add records a frame arriving at t.
func (w *Window) Add(t time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.arrivals = append(w.arrivals, t)
	w.total++
	w.trim(t)
}

// Report computes statistics over the arrivals within the span ending at
// now.
func (w *Window) Report(now time.Time) Report {
	w.mu.Lock()
	w.trim(now)
	arrivals := append([]time.Time(nil), w.arrivals...)
	w.mu.Unlock()

	return Calculate(arrivals, w.span)
}

// Total returns how many frames were ever added.
func (w *Window) Total() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

func (w *Window) trim(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.arrivals) && w.arrivals[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		w.arrivals = append(w.arrivals[:0], w.arrivals[i:]...)
	}
}
