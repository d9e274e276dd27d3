package telemetry_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.New(reg)

	m.SampleTaken()
	m.SampleTaken()
	m.ReadFailed(metrics.SourceTemperature)
	m.Reading(metrics.Reading{Source: metrics.SourceFrequency, Percent: 50, Actual: 2400})
	m.Animation(7.5, 3, false)
	m.SuspendResume()
	m.ConfigReloaded()
	m.Recolored()

	expected := `
# HELP runkat_samples_total Completed sampler cycles.
# TYPE runkat_samples_total counter
runkat_samples_total 2
# HELP runkat_read_failures_total Per-unit metric read failures.
# TYPE runkat_read_failures_total counter
runkat_read_failures_total{source="temperature"} 1
# HELP runkat_metric_value Latest value of the active source, in its unit.
# TYPE runkat_metric_value gauge
runkat_metric_value{source="frequency"} 2400
# HELP runkat_animation_fps Current animation frame rate.
# TYPE runkat_animation_fps gauge
runkat_animation_fps 7.5
# HELP runkat_animation_sleeping 1 while the cat sleeps.
# TYPE runkat_animation_sleeping gauge
runkat_animation_sleeping 0
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"runkat_samples_total",
		"runkat_read_failures_total",
		"runkat_metric_value",
		"runkat_animation_fps",
		"runkat_animation_sleeping",
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 9, count)
}

func TestNilRecorder(t *testing.T) {
	var m *telemetry.Metrics
	var r telemetry.Recorder = m

	assert.NotPanics(t, func() {
		r.SampleTaken()
		r.ReadFailed(metrics.SourceUsage)
		r.Reading(metrics.Reading{})
		r.Animation(1, 1, true)
		r.SuspendResume()
		r.ConfigReloaded()
		r.Recolored()
	})
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.New(reg)
	m.SampleTaken()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- telemetry.Serve(ctx, addr, reg) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, "runkat_samples_total 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
