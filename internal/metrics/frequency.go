package metrics

import (
	"fmt"
	"os"
	"path/filepath"
)

// Frequency holds current and maximum clock per core, in MHz.
type Frequency struct {
	PerCore    []float64
	MaxPerCore []float64
}

// AverageMHz is the mean current clock across cores.
func (f Frequency) AverageMHz() float64 {
	return mean(f.PerCore)
}

// Percent returns core i's clock as a percentage of its maximum.
func (f Frequency) Percent(i int) float64 {
	if i < 0 || i >= len(f.PerCore) || i >= len(f.MaxPerCore) {
		return 0
	}
	if f.MaxPerCore[i] <= 0 {
		return 0
	}

	return clampPercent(f.PerCore[i] / f.MaxPerCore[i] * 100)
}

// AveragePercent is the mean of the per-core percentages.
func (f Frequency) AveragePercent() float64 {
	if len(f.PerCore) == 0 {
		return 0
	}
	var sum float64
	for i := range f.PerCore {
		sum += f.Percent(i)
	}

	return sum / float64(len(f.PerCore))
}

// Sample returns the average clock with per-core values.
func (f Frequency) Sample() Sample {
	return Sample{Aggregate: f.AverageMHz(), PerUnit: f.PerCore}
}

// ReadFrequency reads the current clock and the policy limit
// (scaling_max_freq, else cpuinfo_max_freq) for every core.
func (r *Reader) ReadFrequency() Frequency {
	var freq Frequency

	for i := 0; ; i++ {
		dir := filepath.Join(r.CPUDir, fmt.Sprintf("cpu%d", i), "cpufreq")
		cur := filepath.Join(dir, "scaling_cur_freq")
		if _, err := os.Stat(cur); err != nil {
			break
		}

		freq.PerCore = append(freq.PerCore, r.readMHz(cur))
		freq.MaxPerCore = append(freq.MaxPerCore, r.readMaxMHz(dir))
	}

	return freq
}

func (r *Reader) readMaxMHz(dir string) float64 {
	if khz, err := readInt(filepath.Join(dir, "scaling_max_freq")); err == nil && khz > 0 {
		return float64(khz) / 1000
	}

	return r.readMHz(filepath.Join(dir, "cpuinfo_max_freq"))
}

func (r *Reader) readMHz(path string) float64 {
	khz, err := readInt(path)
	if err != nil {
		r.fail(SourceFrequency, err)
		return 0
	}

	return float64(khz) / 1000
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}

	return sum / float64(len(vs))
}
