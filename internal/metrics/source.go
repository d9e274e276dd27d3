package metrics

// Source selects which OS quantity drives the animation. It is persisted as a
// kebab-case string.
type Source string

const (
	SourceUsage       Source = "cpu-usage"
	SourceFrequency   Source = "frequency"
	SourceTemperature Source = "temperature"
)

// Sources lists every Source in display order.
var Sources = []Source{SourceUsage, SourceFrequency, SourceTemperature}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceUsage, SourceFrequency, SourceTemperature:
		return true
	default:
		return false
	}
}

// Unit returns the display unit of the source's actual value.
func (s Source) Unit() string {
	switch s {
	case SourceFrequency:
		return "MHz"
	case SourceTemperature:
		return "°C"
	default:
		return "%"
	}
}

// Label returns a human-readable name.
func (s Source) Label() string {
	switch s {
	case SourceFrequency:
		return "CPU Frequency"
	case SourceTemperature:
		return "CPU Temperature"
	default:
		return "CPU Usage"
	}
}

func (s Source) String() string {
	return string(s)
}

// Reading is the value the animation policy consumes for the active source.
// Percent drives the frame rate, Actual (in the source's unit) drives the
// sleep decision. For SourceUsage both are equal.
type Reading struct {
	Source  Source
	Percent float64
	Actual  float64
}

// Select dispatches on source and extracts the Reading from a snapshot.
// smoothedUsage replaces the raw usage aggregate, which jitters too much to
// drive the animation directly.
func Select(source Source, snap Snapshot, smoothedUsage float64) Reading {
	switch source {
	case SourceFrequency:
		return Reading{
			Source:  source,
			Percent: snap.Frequency.AveragePercent(),
			Actual:  snap.Frequency.AverageMHz(),
		}
	case SourceTemperature:
		return Reading{
			Source:  source,
			Percent: snap.Temperature.Percent(),
			Actual:  snap.Temperature.Max(),
		}
	default:
		return Reading{
			Source:  SourceUsage,
			Percent: smoothedUsage,
			Actual:  smoothedUsage,
		}
	}
}
