// Package sampler runs metric reads on a dedicated goroutine and publishes
// the latest snapshot through a single-slot cell.
package sampler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/telemetry"
)

// DefaultInterval is the usage measurement window.
const DefaultInterval = 500 * time.Millisecond

// Reader is the measurement surface the sampler needs.
type Reader interface {
	BeginUsage() *metrics.UsageMeasurement
	ReadFrequency() metrics.Frequency
	ReadTemperature() metrics.Temperature
}

// Sampler owns the background read loop. Readers call Latest at any time;
// slow readers skip intermediate snapshots rather than queueing them.
type Sampler struct {
	reader   Reader
	interval time.Duration
	rec      telemetry.Recorder
	log      logger.Logger

	latest  atomic.Pointer[metrics.Snapshot]
	updates chan struct{}
	seq     uint64

	started  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New returns a Sampler reading from r every interval. rec may be nil.
func New(r Reader, interval time.Duration, rec telemetry.Recorder) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if rec == nil {
		rec = (*telemetry.Metrics)(nil)
	}

	return &Sampler{
		reader:   r,
		interval: interval,
		rec:      rec,
		log:      logger.New("sampler"),
		updates:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the read loop. The loop ends when ctx is cancelled or Stop
// is called, in both cases only between full measurement cycles.
func (s *Sampler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New().New(errors.ErrSamplerRunning)
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	go s.run()

	return nil
}

func (s *Sampler) run() {
	defer close(s.done)
	defer s.log.Debug().Msg("Sampler stopped")

	s.log.Debug().Dur("interval", s.interval).Msg("Sampler started")

	for !s.stopped.Load() {
		m := s.reader.BeginUsage()

		select {
		case <-time.After(s.interval):
		case <-s.stop:
			// a cut-short window is not a valid measurement
			return
		}

		snap := metrics.Snapshot{
			Usage:       m.Done(),
			Frequency:   s.reader.ReadFrequency(),
			Temperature: s.reader.ReadTemperature(),
		}
		s.publish(snap)
	}
}

func (s *Sampler) publish(snap metrics.Snapshot) {
	s.seq++
	snap.Seq = s.seq
	snap.Taken = time.Now()

	s.latest.Store(&snap)
	s.rec.SampleTaken()

	// coalesce: one pending wakeup is enough
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Latest returns the most recent snapshot, or nil before the first cycle
// completes. It never blocks.
func (s *Sampler) Latest() *metrics.Snapshot {
	return s.latest.Load()
}

// Updates signals after each publication. Signals coalesce.
func (s *Sampler) Updates() <-chan struct{} {
	return s.updates
}

// Stop requests the loop to exit. It is safe to call repeatedly and before
// Start.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stop)
	})
}

// Wait blocks until the loop has exited. It returns immediately if the
// sampler was never started.
func (s *Sampler) Wait() {
	if !s.started.Load() {
		return
	}
	<-s.done
}

// Interval returns the configured sample interval.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}
