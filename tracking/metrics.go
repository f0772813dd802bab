package tracking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const labelOutcome = "outcome"

// Metrics collects the outcomes of update runs.
// The CLI runs once and exits, so metrics are written to a file for the
// node exporter textfile collector instead of being served.
type Metrics struct {
	registry *prometheus.Registry
	Updated  *prometheus.CounterVec
	Duration prometheus.Histogram
	Known    prometheus.Gauge
}

// NewMetrics registers the tracking metrics on reg.
// A nil reg gets a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		Updated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grakawa_products_updated_total",
				Help: "Products processed by update runs, by outcome",
			},
			[]string{labelOutcome},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "grakawa_update_duration_seconds",
				Help:    "Time to fetch and store the history of one product",
				Buckets: prometheus.DefBuckets,
			},
		),
		Known: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "grakawa_products_known",
				Help: "Products in the index after the last run",
			},
		),
	}

	// Pre-create every outcome so absent outcomes export as zero.
	for _, o := range []Outcome{OutcomeUpdated, OutcomeUnchanged, OutcomeFailed, OutcomeMissing} {
		m.Updated.WithLabelValues(o.String())
	}

	reg.MustRegister(m.Updated, m.Duration, m.Known)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics of the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(outcome Outcome, took time.Duration) {
	if m == nil {
		return
	}
	m.Updated.WithLabelValues(outcome.String()).Inc()
	m.Duration.Observe(took.Seconds())
}

func (m *Metrics) setKnown(n int) {
	if m == nil {
		return
	}
	m.Known.Set(float64(n))
}
