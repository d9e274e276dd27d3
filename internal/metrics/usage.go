package metrics

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// Usage is CPU utilization in percent, aggregate and per core.
type Usage struct {
	Total   float64
	PerCore []float64
}

// Sample returns the usage as a generic Sample.
func (u Usage) Sample() Sample {
	return Sample{Aggregate: u.Total, PerUnit: u.PerCore}
}

type cpuTimes struct {
	idle  uint64
	total uint64
}

type statSnapshot struct {
	total cpuTimes
	cores map[string]cpuTimes
	order []string
}

// UsageMeasurement is the first half of a two-point usage measurement.
type UsageMeasurement struct {
	r     *Reader
	first statSnapshot
	err   error
}

// BeginUsage records the first counter snapshot. Call Done after the sample
// interval has elapsed.
func (r *Reader) BeginUsage() *UsageMeasurement {
	snap, err := readStat(r.ProcStat)
	if err != nil {
		r.fail(SourceUsage, err)
	}

	return &UsageMeasurement{r: r, first: snap, err: err}
}

// Done reads the second snapshot and computes utilization over the delta.
func (m *UsageMeasurement) Done() Usage {
	if m.err != nil {
		return Usage{}
	}

	second, err := readStat(m.r.ProcStat)
	if err != nil {
		m.r.fail(SourceUsage, err)
		return Usage{}
	}

	u := Usage{Total: busyPercent(m.first.total, second.total)}
	for _, name := range second.order {
		prev, ok := m.first.cores[name]
		if !ok {
			u.PerCore = append(u.PerCore, 0)
			continue
		}
		u.PerCore = append(u.PerCore, busyPercent(prev, second.cores[name]))
	}

	return u
}

// ReadUsage blocks for interval and returns utilization over it.
func (r *Reader) ReadUsage(interval time.Duration) Usage {
	m := r.BeginUsage()
	time.Sleep(interval)

	return m.Done()
}

func busyPercent(prev, cur cpuTimes) float64 {
	if cur.total <= prev.total {
		return 0
	}
	dTotal := float64(cur.total - prev.total)
	var dIdle float64
	if cur.idle > prev.idle {
		dIdle = float64(cur.idle - prev.idle)
	}

	return clampPercent((1 - dIdle/dTotal) * 100)
}

func readStat(path string) (statSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return statSnapshot{}, err
	}
	defer f.Close()

	snap := statSnapshot{cores: make(map[string]cpuTimes)}
	found := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}

		times, ok := parseCPULine(fields[1:])
		if !ok {
			continue
		}

		if fields[0] == "cpu" {
			snap.total = times
			found = true
			continue
		}
		snap.cores[fields[0]] = times
		snap.order = append(snap.order, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return statSnapshot{}, err
	}
	if !found {
		return statSnapshot{}, errNoAggregate
	}

	return snap, nil
}

// accounted columns: user nice system idle iowait irq softirq steal.
// guest and guest_nice are already included in user and nice.
const statColumns = 8

// parseCPULine sums the jiffy columns. Idle is the fourth column only.
func parseCPULine(cols []string) (cpuTimes, bool) {
	var t cpuTimes
	for i, col := range cols[:min(len(cols), statColumns)] {
		v, err := strconv.ParseUint(col, 10, 64)
		if err != nil {
			return cpuTimes{}, false
		}
		if i == 3 {
			t.idle = v
		}
		t.total += v
	}

	return t, true
}
