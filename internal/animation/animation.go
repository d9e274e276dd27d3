// Package animation maps a metric reading to a frame rate and a sleep/wake
// decision, and advances the frame counter.
package animation

import (
	"math"
	"time"

	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/settings"
)

// FrameCount is the number of run frames in a cycle.
const FrameCount = 10

// CalculateFPS interpolates linearly between minFPS at 0% and maxFPS at
// 100%. metric is clamped to [0, 100] first; NaN counts as 0.
func CalculateFPS(minFPS, maxFPS, metric float64) float64 {
	if math.IsNaN(metric) {
		metric = 0
	}
	normalized := math.Max(0, math.Min(1, metric/100))

	return minFPS + normalized*(maxFPS-minFPS)
}

// IsSleeping reports whether actual is strictly below threshold.
func IsSleeping(actual, threshold float64) bool {
	return actual < threshold
}

// Params are the per-tick inputs derived from settings.
type Params struct {
	MinFPS    float64
	MaxFPS    float64
	Threshold float64
}

// ParamsFor picks the threshold of the active source.
func ParamsFor(cfg settings.Config) Params {
	return Params{
		MinFPS:    cfg.MinFPS,
		MaxFPS:    cfg.MaxFPS,
		Threshold: cfg.CurrentThreshold(),
	}
}

// State is the animation state. Only Tick mutates it.
type State struct {
	Frame       int
	Sleeping    bool
	LastAdvance time.Time
	FPS         float64
}

// Tick recomputes the sleep flag and advances the frame when enough time
// has passed at the current rate. While sleeping the frame is frozen, so
// waking resumes the cycle where it stopped. It reports whether the frame
// index changed.
func (s *State) Tick(r metrics.Reading, p Params, now time.Time) bool {
	actual := r.Actual
	if math.IsNaN(actual) {
		actual = 0
	}

	wasSleeping := s.Sleeping
	s.Sleeping = IsSleeping(actual, p.Threshold)
	if s.Sleeping {
		s.FPS = 0
		return false
	}

	s.FPS = CalculateFPS(p.MinFPS, p.MaxFPS, r.Percent)
	if s.LastAdvance.IsZero() || wasSleeping {
		// start timing from the wake-up, not from before the nap
		s.LastAdvance = now
		return false
	}
	if s.FPS <= 0 {
		return false
	}

	interval := time.Duration(float64(time.Second) / s.FPS)
	if now.Sub(s.LastAdvance) < interval {
		return false
	}

	s.Frame = (s.Frame + 1) % FrameCount
	s.LastAdvance = now

	return true
}
