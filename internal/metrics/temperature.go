package metrics

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultCritical = 100.0

var cpuSensorNames = map[string]bool{
	"coretemp": true,
	"k10temp":  true,
	"zenpower": true,
	"amdgpu":   true,
}

// Temperature holds CPU sensor readings in °C.
type Temperature struct {
	PerCore  []float64
	Package  *float64
	Critical *float64
}

// Max is the hottest reading: the package value if present, otherwise the
// hottest core.
func (t Temperature) Max() float64 {
	if t.Package != nil {
		return *t.Package
	}

	var hottest float64
	for _, c := range t.PerCore {
		if c > hottest {
			hottest = c
		}
	}

	return hottest
}

// CriticalOrDefault returns the critical threshold, or 100 °C if unknown.
func (t Temperature) CriticalOrDefault() float64 {
	if t.Critical == nil || *t.Critical <= 0 {
		return defaultCritical
	}

	return *t.Critical
}

// Percent normalizes Max against the critical threshold.
func (t Temperature) Percent() float64 {
	return clampPercent(t.Max() / t.CriticalOrDefault() * 100)
}

// Sample returns the hottest reading with per-core values.
func (t Temperature) Sample() Sample {
	return Sample{Aggregate: t.Max(), PerUnit: t.PerCore}
}

func (t Temperature) empty() bool {
	return t.Package == nil && len(t.PerCore) == 0
}

// ReadTemperature scans hwmon devices for a CPU sensor. The first device
// that yields any reading wins.
func (r *Reader) ReadTemperature() Temperature {
	entries, err := os.ReadDir(r.HwmonDir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.fail(SourceTemperature, err)
		}
		return Temperature{}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		dir := filepath.Join(r.HwmonDir, name)
		sensor, err := readTrimmed(filepath.Join(dir, "name"))
		if err != nil || !isCPUSensor(sensor) {
			continue
		}

		if t := r.readDevice(dir); !t.empty() {
			return t
		}
	}

	// no sensors is a normal state, not a failure
	return Temperature{}
}

func isCPUSensor(name string) bool {
	return cpuSensorNames[name] || strings.HasPrefix(name, "cpu")
}

func (r *Reader) readDevice(dir string) Temperature {
	inputs, err := filepath.Glob(filepath.Join(dir, "temp*_input"))
	if err != nil {
		return Temperature{}
	}
	sort.Slice(inputs, func(i, j int) bool {
		return sensorIndex(inputs[i]) < sensorIndex(inputs[j])
	})

	var (
		t        Temperature
		fallback *float64
	)
	for _, input := range inputs {
		prefix := strings.TrimSuffix(input, "_input")

		milli, err := readInt(input)
		if err != nil {
			r.fail(SourceTemperature, err)
			continue
		}
		celsius := float64(milli) / 1000

		if t.Critical == nil {
			if crit, err := readInt(prefix + "_crit"); err == nil && crit > 0 {
				c := float64(crit) / 1000
				t.Critical = &c
			}
		}

		label, _ := readTrimmed(prefix + "_label")
		label = strings.ToLower(label)

		switch {
		case strings.Contains(label, "package"),
			strings.Contains(label, "tctl"),
			strings.Contains(label, "tdie"):
			if t.Package == nil {
				v := celsius
				t.Package = &v
			}
		case strings.Contains(label, "core"):
			t.PerCore = append(t.PerCore, celsius)
		default:
			if fallback == nil {
				v := celsius
				fallback = &v
			}
		}
	}

	// an unlabeled reading counts only when nothing was classified
	if t.Package == nil && len(t.PerCore) == 0 {
		t.Package = fallback
	}

	return t
}

// sensorIndex orders temp2_input before temp10_input.
func sensorIndex(path string) int {
	base := strings.TrimPrefix(filepath.Base(path), "temp")
	base = strings.TrimSuffix(base, "_input")
	n := 0
	for _, c := range base {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}

	return n
}
