package telemetry

import "codeberg.org/mutker/runkat/internal/metrics"

// Recorder receives self-observability events from the sampler and driver.
// A nil *Metrics satisfies it and records nothing.
type Recorder interface {
	SampleTaken()
	ReadFailed(source metrics.Source)
	Reading(r metrics.Reading)
	Animation(fps float64, frame int, sleeping bool)
	SuspendResume()
	ConfigReloaded()
	Recolored()
}
