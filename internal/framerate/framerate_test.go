package framerate

import (
	"math"
	"testing"
	"time"
)

func evenArrivals(start time.Time, n int, interval time.Duration) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * interval)
	}
	return out
}

func TestCalculate(t *testing.T) {
	start := time.Unix(1700000000, 0)

	tests := []struct {
		name       string
		arrivals   []time.Time
		duration   time.Duration
		wantSteady bool
		wantFPS    float64
	}{
		{
			name:     "no frames",
			duration: time.Second,
		},
		{
			name:     "single frame",
			arrivals: []time.Time{start},
			duration: time.Second,
			wantFPS:  1,
		},
		{
			name:       "steady 15 fps",
			arrivals:   evenArrivals(start, 15, time.Second/15),
			duration:   time.Second,
			wantSteady: true,
			wantFPS:    15,
		},
		{
			name: "bursty",
			arrivals: []time.Time{
				start,
				start.Add(10 * time.Millisecond),
				start.Add(20 * time.Millisecond),
				start.Add(500 * time.Millisecond),
				start.Add(510 * time.Millisecond),
				start.Add(990 * time.Millisecond),
			},
			duration:   time.Second,
			wantSteady: false,
			wantFPS:    6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Calculate(tt.arrivals, tt.duration)

			if r.Frames != len(tt.arrivals) {
				t.Errorf("Frames = %d, want %d", r.Frames, len(tt.arrivals))
			}
			if math.Abs(r.FPSMean-tt.wantFPS) > 0.01 {
				t.Errorf("FPSMean = %.2f, want %.2f", r.FPSMean, tt.wantFPS)
			}
			if r.Steady != tt.wantSteady {
				t.Errorf("Steady = %v, want %v (stddev=%.2f jitter=%.4f)",
					r.Steady, tt.wantSteady, r.FPSStdDev, r.JitterMean)
			}
			t.Logf("✅ %s: %.2f fps, stddev %.2f, jitter %.4fs", tt.name, r.FPSMean, r.FPSStdDev, r.JitterMean)
		})
	}
}

func TestCalculate_ZeroIntervalsSkipped(t *testing.T) {
	start := time.Unix(1700000000, 0)
	r := Calculate([]time.Time{start, start, start}, time.Second)

	if r.FPSMin != 0 || r.FPSMax != 0 {
		t.Errorf("min/max = %.2f/%.2f, want 0 without a valid interval", r.FPSMin, r.FPSMax)
	}
	if r.Steady {
		t.Error("identical timestamps are not steady")
	}
}

func TestReport_UnderDelivering(t *testing.T) {
	start := time.Unix(1700000000, 0)
	ten := Calculate(evenArrivals(start, 10, 100*time.Millisecond), time.Second)

	if !ten.UnderDelivering(15) {
		t.Error("10 fps against 15 configured should be under-delivering")
	}
	if ten.UnderDelivering(10) {
		t.Error("10 fps against 10 configured is on target")
	}
	if (Report{}).UnderDelivering(15) {
		t.Error("no measurement is never under-delivering")
	}
}

func TestWindow(t *testing.T) {
	start := time.Unix(1700000000, 0)
	w := NewWindow(time.Second)

	for _, at := range evenArrivals(start, 30, 100*time.Millisecond) {
		w.Add(at)
	}

	// Only the last second (11 frames, both ends inclusive) is kept.
	now := start.Add(2900 * time.Millisecond)
	r := w.Report(now)
	if r.Frames != 11 {
		t.Errorf("Frames = %d, want 11", r.Frames)
	}
	if w.Total() != 30 {
		t.Errorf("Total() = %d, want 30", w.Total())
	}

	// Much later, everything has aged out.
	if r := w.Report(now.Add(time.Minute)); r.Frames != 0 {
		t.Errorf("Frames after idle = %d, want 0", r.Frames)
	}
}
