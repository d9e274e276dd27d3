// Package suspend detects system suspend/resume from gaps in wall-clock time
// between loop iterations. It is a heuristic: heavy scheduler stalls can
// look like a suspend.
package suspend

import "time"

// DefaultThreshold is the gap treated as a suspend. The driver loop runs
// every few tens of milliseconds.
const DefaultThreshold = 5 * time.Second

// Detector remembers the previous iteration's timestamp.
type Detector struct {
	Threshold time.Duration

	last time.Time
}

// New returns a Detector with the given threshold, or DefaultThreshold if
// threshold is not positive.
func New(threshold time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Detector{Threshold: threshold}
}

// Observe records now and reports the gap since the previous call and
// whether it exceeds the threshold. The monotonic clock does not advance
// while suspended on every platform, so only the wall clock is compared.
func (d *Detector) Observe(now time.Time) (time.Duration, bool) {
	now = now.Round(0)

	if d.last.IsZero() {
		d.last = now
		return 0, false
	}

	gap := now.Sub(d.last)
	d.last = now

	return gap, gap > d.Threshold
}

// Reset forgets the previous timestamp, e.g. after a session restart.
func (d *Detector) Reset() {
	d.last = time.Time{}
}
