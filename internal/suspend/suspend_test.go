package suspend_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/suspend"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	d := suspend.New(suspend.DefaultThreshold)
	start := time.Unix(1000, 0)

	gap, jumped := d.Observe(start)
	assert.Zero(t, gap)
	assert.False(t, jumped)

	gap, jumped = d.Observe(start.Add(33 * time.Millisecond))
	assert.Equal(t, 33*time.Millisecond, gap)
	assert.False(t, jumped)

	// exactly at the threshold is not a jump
	_, jumped = d.Observe(start.Add(33*time.Millisecond + suspend.DefaultThreshold))
	assert.False(t, jumped)

	gap, jumped = d.Observe(start.Add(time.Hour))
	assert.True(t, jumped)
	assert.Greater(t, gap, suspend.DefaultThreshold)

	_, jumped = d.Observe(start.Add(time.Hour + 16*time.Millisecond))
	assert.False(t, jumped)
}

func TestDefaultThresholdFallback(t *testing.T) {
	assert.Equal(t, suspend.DefaultThreshold, suspend.New(0).Threshold)
	assert.Equal(t, time.Second, suspend.New(time.Second).Threshold)
}

func TestReset(t *testing.T) {
	d := suspend.New(time.Second)
	d.Observe(time.Unix(0, 0))
	d.Reset()

	_, jumped := d.Observe(time.Unix(3600, 0))
	assert.False(t, jumped)
}
