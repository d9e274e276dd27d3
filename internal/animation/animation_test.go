package animation_test

import (
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/animation"
	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/settings"
	"github.com/stretchr/testify/assert"
)

func usage(v float64) metrics.Reading {
	return metrics.Reading{Source: metrics.SourceUsage, Percent: v, Actual: v}
}

func TestCalculateFPSBounds(t *testing.T) {
	assert.InDelta(t, 2.0, animation.CalculateFPS(2, 15, 0), 0.0001)
	assert.InDelta(t, 15.0, animation.CalculateFPS(2, 15, 100), 0.0001)
	assert.InDelta(t, 2.0, animation.CalculateFPS(2, 15, -20), 0.0001)
	assert.InDelta(t, 15.0, animation.CalculateFPS(2, 15, 250), 0.0001)
	assert.InDelta(t, 2.0, animation.CalculateFPS(2, 15, math.NaN()), 0.0001)
}

func TestCalculateFPSMonotonic(t *testing.T) {
	prev := animation.CalculateFPS(2, 15, 0)
	for m := 0.5; m <= 100; m += 0.5 {
		fps := animation.CalculateFPS(2, 15, m)
		assert.GreaterOrEqual(t, fps, prev, "metric %v", m)
		prev = fps
	}
}

func TestDefaultConfigScenario(t *testing.T) {
	cfg := settings.Default()

	low := animation.CalculateFPS(cfg.MinFPS, cfg.MaxFPS, 3.0)
	assert.GreaterOrEqual(t, low, 2.0)
	assert.Less(t, low, 3.0)
	assert.InDelta(t, 15.0, animation.CalculateFPS(cfg.MinFPS, cfg.MaxFPS, 100), 0.01)
}

func TestIsSleepingStrict(t *testing.T) {
	assert.False(t, animation.IsSleeping(5, 5))
	assert.True(t, animation.IsSleeping(5-1e-6, 5))
	assert.False(t, animation.IsSleeping(6, 5))
}

func TestParamsFor(t *testing.T) {
	cfg := settings.Default()
	cfg.AnimationSource = metrics.SourceTemperature

	p := animation.ParamsFor(cfg)
	assert.Equal(t, animation.Params{MinFPS: 2, MaxFPS: 15, Threshold: 40}, p)
}

func TestTickAdvances(t *testing.T) {
	p := animation.Params{MinFPS: 2, MaxFPS: 10, Threshold: 5}
	start := time.Unix(1000, 0)
	var s animation.State

	// first tick only starts the clock
	assert.False(t, s.Tick(usage(100), p, start))
	assert.InDelta(t, 10.0, s.FPS, 0.0001)

	assert.False(t, s.Tick(usage(100), p, start.Add(50*time.Millisecond)))
	assert.True(t, s.Tick(usage(100), p, start.Add(100*time.Millisecond)))
	assert.Equal(t, 1, s.Frame)

	// slower at low load: 2.4 fps needs ~417ms
	assert.False(t, s.Tick(usage(5), p, start.Add(400*time.Millisecond)))
	assert.True(t, s.Tick(usage(5), p, start.Add(700*time.Millisecond)))
	assert.Equal(t, 2, s.Frame)
}

func TestTickWraps(t *testing.T) {
	p := animation.Params{MinFPS: 10, MaxFPS: 20, Threshold: 0}
	now := time.Unix(1000, 0)
	s := animation.State{Frame: animation.FrameCount - 1, LastAdvance: now}

	assert.True(t, s.Tick(usage(0), p, now.Add(time.Second)))
	assert.Equal(t, 0, s.Frame)
}

func TestTickFreezesWhileSleeping(t *testing.T) {
	p := animation.Params{MinFPS: 2, MaxFPS: 15, Threshold: 5}
	now := time.Unix(1000, 0)
	s := animation.State{Frame: 4, LastAdvance: now}

	assert.False(t, s.Tick(usage(1), p, now.Add(5*time.Second)))
	assert.True(t, s.Sleeping)
	assert.Equal(t, 4, s.Frame)
	assert.Zero(t, s.FPS)

	// waking resumes from the frozen frame; the nap does not count as elapsed time
	wake := now.Add(10 * time.Second)
	assert.False(t, s.Tick(usage(50), p, wake))
	assert.False(t, s.Sleeping)
	assert.Equal(t, 4, s.Frame)

	assert.True(t, s.Tick(usage(50), p, wake.Add(time.Second)))
	assert.Equal(t, 5, s.Frame)
}

func TestTickSleepUsesActualUnit(t *testing.T) {
	// 1500 MHz is 30% of max: speed uses percent, sleep uses MHz
	r := metrics.Reading{Source: metrics.SourceFrequency, Percent: 30, Actual: 1500}
	now := time.Unix(1000, 0)

	s := animation.State{LastAdvance: now}
	s.Tick(r, animation.Params{MinFPS: 2, MaxFPS: 15, Threshold: 1000}, now)
	assert.False(t, s.Sleeping)

	s.Tick(r, animation.Params{MinFPS: 2, MaxFPS: 15, Threshold: 2000}, now)
	assert.True(t, s.Sleeping)
}
