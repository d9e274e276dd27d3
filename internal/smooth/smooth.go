// Package smooth provides a bounded moving average.
package smooth

import "math"

const (
	// DefaultSize is the number of raw samples averaged.
	DefaultSize = 10
	// Epsilon is the smallest raw change worth redisplaying.
	Epsilon = 0.01
)

// Window is a FIFO of the most recent raw samples. It is not safe for
// concurrent use; the driver loop owns it.
type Window struct {
	size    int
	samples []float64
}

// New returns a Window holding at most size samples. A size below one is
// treated as one.
func New(size int) *Window {
	if size < 1 {
		size = 1
	}

	return &Window{size: size, samples: make([]float64, 0, size)}
}

// Push appends raw, evicting the oldest sample when full, and returns the
// mean over the samples held.
func (w *Window) Push(raw float64) float64 {
	if math.IsNaN(raw) {
		raw = 0
	}

	if len(w.samples) == w.size {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.size-1]
	}
	w.samples = append(w.samples, raw)

	return w.Mean()
}

// Changed reports whether two samples differ by more than Epsilon.
func Changed(prev, cur float64) bool {
	return math.Abs(cur-prev) > Epsilon
}

// Mean returns the average of the held samples, or 0 when empty.
func (w *Window) Mean() float64 {
	if len(w.samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range w.samples {
		sum += s
	}

	return sum / float64(len(w.samples))
}

// Len returns the number of samples held.
func (w *Window) Len() int {
	return len(w.samples)
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return w.size
}

// Reset empties the window.
func (w *Window) Reset() {
	w.samples = w.samples[:0]
}
