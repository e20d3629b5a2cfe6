// Package metrics exposes Prometheus metrics for clinic changes and snapshot
// persistence.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	ChangesTotal         *prometheus.CounterVec
	SnapshotSaveDuration prometheus.Histogram
	SnapshotSaveFailures prometheus.Counter
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicdesk_changes_total",
			Help: "Total number of committed clinic changes by type",
		}, []string{"type"}),
		SnapshotSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinicdesk_snapshot_save_duration_seconds",
			Help:    "Duration of snapshot saves",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SnapshotSaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_snapshot_save_failures_total",
			Help: "Total number of snapshot saves that failed",
		}),
	}
}

// HandleEvent counts a change. It implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.ChangeEvent) error {
	if m == nil {
		return nil
	}
	m.ChangesTotal.WithLabelValues(string(event.Type)).Inc()
	return nil
}

// ObserveSnapshotSave records a save that started at start and ended with err.
func (m *Metrics) ObserveSnapshotSave(start time.Time, err error) {
	if m == nil {
		return
	}
	m.SnapshotSaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SnapshotSaveFailures.Inc()
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
