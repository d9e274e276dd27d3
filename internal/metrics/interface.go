package metrics

import "time"

// Sample is one reading of a metric: an aggregate scalar plus the per-unit
// (per-core) values it was derived from. A failed read yields a zero
// aggregate and no per-unit values.
type Sample struct {
	Aggregate float64
	PerUnit   []float64
}

// Snapshot is everything one sampler cycle measured.
type Snapshot struct {
	Seq         uint64
	Taken       time.Time
	Usage       Usage
	Frequency   Frequency
	Temperature Temperature
}

// FailureFunc is notified about per-unit read failures. Failures never
// propagate further than this hook.
type FailureFunc func(source Source, err error)
