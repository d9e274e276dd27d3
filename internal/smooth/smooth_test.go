package smooth_test

import (
	"testing"

	"codeberg.org/mutker/runkat/internal/smooth"
	"github.com/stretchr/testify/assert"
)

func TestPushEmptyReturnsRaw(t *testing.T) {
	w := smooth.New(smooth.DefaultSize)
	assert.Zero(t, w.Mean())
	assert.InDelta(t, 42.0, w.Push(42), 0.0001)
}

func TestPushPartialWindow(t *testing.T) {
	w := smooth.New(10)
	w.Push(10)
	w.Push(20)

	// mean over two samples, not padded to ten
	assert.InDelta(t, 30.0, w.Push(60), 0.0001)
	assert.Equal(t, 3, w.Len())
}

func TestPushEvictsOldest(t *testing.T) {
	w := smooth.New(3)
	w.Push(100)
	w.Push(0)
	assert.InDelta(t, 100.0/3, w.Push(0), 0.0001)

	// 100 leaves the window
	assert.InDelta(t, 0.0, w.Push(0), 0.0001)
	assert.Equal(t, 3, w.Len())
}

func TestEndToEndSmoothing(t *testing.T) {
	w := smooth.New(10)

	var got float64
	for _, v := range []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 50} {
		got = w.Push(v)
	}

	assert.InDelta(t, 14.0, got, 0.0001)
	assert.Equal(t, 10, w.Len())
}

func TestRepeatedValuesFillWindow(t *testing.T) {
	w := smooth.New(10)

	var got float64
	for i := 0; i < 9; i++ {
		got = w.Push(0)
	}
	got = w.Push(50)

	assert.Equal(t, 10, w.Len())
	assert.InDelta(t, 5.0, got, 0.0001)
}

func TestChanged(t *testing.T) {
	assert.False(t, smooth.Changed(10, 10.005))
	assert.True(t, smooth.Changed(10, 10.02))
	assert.True(t, smooth.Changed(10, 9.98))
}

func TestSingleSlotWindow(t *testing.T) {
	w := smooth.New(0)
	assert.Equal(t, 1, w.Size())

	w.Push(5)
	assert.InDelta(t, 7.0, w.Push(7), 0.0001)
}

func TestReset(t *testing.T) {
	w := smooth.New(4)
	w.Push(1)
	w.Push(2)
	w.Reset()

	assert.Zero(t, w.Len())
	assert.Zero(t, w.Mean())
	assert.InDelta(t, 2.0, w.Push(2), 0.0001)
}
