// Package telemetry exposes the process's own counters and gauges in
// Prometheus format.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "runkat"

// Metrics holds the registered collectors.
type Metrics struct {
	samples        prometheus.Counter
	readFailures   *prometheus.CounterVec
	metric         *prometheus.GaugeVec
	fps            prometheus.Gauge
	frame          prometheus.Gauge
	sleeping       prometheus.Gauge
	suspendResumes prometheus.Counter
	configReloads  prometheus.Counter
	recolors       prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Completed sampler cycles.",
		}),
		readFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_failures_total",
			Help:      "Per-unit metric read failures.",
		}, []string{"source"}),
		metric: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metric_value",
			Help:      "Latest value of the active source, in its unit.",
		}, []string{"source"}),
		fps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "animation_fps",
			Help:      "Current animation frame rate.",
		}),
		frame: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "animation_frame",
			Help:      "Current run frame index.",
		}),
		sleeping: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "animation_sleeping",
			Help:      "1 while the cat sleeps.",
		}),
		suspendResumes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspend_resumes_total",
			Help:      "Detected suspend/resume cycles.",
		}),
		configReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Settings reloads picked up from disk.",
		}),
		recolors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recolors_total",
			Help:      "Sprite set recolorings.",
		}),
	}

	reg.MustRegister(
		m.samples,
		m.readFailures,
		m.metric,
		m.fps,
		m.frame,
		m.sleeping,
		m.suspendResumes,
		m.configReloads,
		m.recolors,
	)

	return m
}

func (m *Metrics) SampleTaken() {
	if m == nil {
		return
	}
	m.samples.Inc()
}

func (m *Metrics) ReadFailed(source metrics.Source) {
	if m == nil {
		return
	}
	m.readFailures.WithLabelValues(source.String()).Inc()
}

func (m *Metrics) Reading(r metrics.Reading) {
	if m == nil {
		return
	}
	m.metric.WithLabelValues(r.Source.String()).Set(r.Actual)
}

func (m *Metrics) Animation(fps float64, frame int, sleeping bool) {
	if m == nil {
		return
	}
	m.fps.Set(fps)
	m.frame.Set(float64(frame))
	if sleeping {
		m.sleeping.Set(1)
	} else {
		m.sleeping.Set(0)
	}
}

func (m *Metrics) SuspendResume() {
	if m == nil {
		return
	}
	m.suspendResumes.Inc()
}

func (m *Metrics) ConfigReloaded() {
	if m == nil {
		return
	}
	m.configReloads.Inc()
}

func (m *Metrics) Recolored() {
	if m == nil {
		return
	}
	m.recolors.Inc()
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	errFactory := errors.New()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errFactory.Wrap(errors.ErrServeMetrics, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errFactory.Wrap(errors.ErrShutdownFailed, err)
		}
		return nil
	}
}
