package driver

import (
	"context"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
)

// DefaultRestartDelay gives devices and the session bus time to come back
// after a resume.
const DefaultRestartDelay = time.Second

// Session builds every stateful resource (sampler, watcher, presenter,
// lock), runs a Driver and tears everything down before returning.
type Session func(ctx context.Context) error

// Supervise runs session and restarts it from scratch whenever it ends with
// ErrSuspendResume. Any other result, including nil, is returned.
func Supervise(ctx context.Context, delay time.Duration, session Session) error {
	log := logger.New("supervisor")
	if delay <= 0 {
		delay = DefaultRestartDelay
	}

	for restarts := 0; ; restarts++ {
		err := session(ctx)
		if !errors.Is(err, ErrSuspendResume) {
			return err
		}

		log.Info().Int("restarts", restarts+1).Dur("delay", delay).Msg("Restarting session after resume")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
