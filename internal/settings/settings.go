// Package settings holds the user's persisted preferences: per-source sleep
// thresholds, frame-rate bounds, the overlay flag and the active metric
// source.
package settings

import "codeberg.org/mutker/runkat/internal/metrics"

const (
	// FPSFloor and FPSCeiling bound both min_fps and max_fps.
	FPSFloor   = 1.0
	FPSCeiling = 30.0
)

// Config is the persisted settings record.
type Config struct {
	SleepThresholdCPU  float64        `json:"sleep_threshold_cpu" mapstructure:"sleep_threshold_cpu" validate:"gte=0,lte=100"`
	SleepThresholdFreq float64        `json:"sleep_threshold_freq" mapstructure:"sleep_threshold_freq" validate:"gte=0,lte=10000"`
	SleepThresholdTemp float64        `json:"sleep_threshold_temp" mapstructure:"sleep_threshold_temp" validate:"gte=0,lte=150"`
	MinFPS             float64        `json:"min_fps" mapstructure:"min_fps" validate:"gte=1,lte=30"`
	MaxFPS             float64        `json:"max_fps" mapstructure:"max_fps" validate:"gte=1,lte=30"`
	ShowPercentage     bool           `json:"show_percentage" mapstructure:"show_percentage"`
	AnimationSource    metrics.Source `json:"animation_source" mapstructure:"animation_source" validate:"oneof=cpu-usage frequency temperature"`
}

// Default returns the compiled-in settings.
func Default() Config {
	return Config{
		SleepThresholdCPU:  5,
		SleepThresholdFreq: 1000,
		SleepThresholdTemp: 40,
		MinFPS:             2,
		MaxFPS:             15,
		ShowPercentage:     true,
		AnimationSource:    metrics.SourceUsage,
	}
}

// Threshold returns the sleep threshold for source, in its unit.
func (c Config) Threshold(source metrics.Source) float64 {
	switch source {
	case metrics.SourceFrequency:
		return c.SleepThresholdFreq
	case metrics.SourceTemperature:
		return c.SleepThresholdTemp
	default:
		return c.SleepThresholdCPU
	}
}

// CurrentThreshold returns the threshold of the active source.
func (c Config) CurrentThreshold() float64 {
	return c.Threshold(c.AnimationSource)
}

// SetThreshold sets the sleep threshold for source.
func (c *Config) SetThreshold(source metrics.Source, v float64) {
	switch source {
	case metrics.SourceFrequency:
		c.SleepThresholdFreq = v
	case metrics.SourceTemperature:
		c.SleepThresholdTemp = v
	default:
		c.SleepThresholdCPU = v
	}
}

// SetCurrentThreshold sets the threshold of the active source.
func (c *Config) SetCurrentThreshold(v float64) {
	c.SetThreshold(c.AnimationSource, v)
}
