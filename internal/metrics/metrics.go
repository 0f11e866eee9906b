// Package metrics provides Prometheus metrics for autodocs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for autodocs. Collectors live on
// a private registry so several instances can coexist (tests, embedding).
type Metrics struct {
	registry *prometheus.Registry

	DocsGenerated      *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	DiffsComputed      prometheus.Counter
	StoreOperations    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.DocsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodocs_documents_generated_total",
			Help: "Total number of generated documents",
		},
		[]string{"type"},
	)

	m.GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autodocs_generation_duration_seconds",
			Help:    "Duration of generation calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	m.DiffsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autodocs_diffs_computed_total",
			Help: "Total number of document diffs computed",
		},
	)

	m.StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodocs_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	reg.MustRegister(m.DocsGenerated, m.GenerationDuration, m.DiffsComputed, m.StoreOperations)
	return m
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordGeneration records one generation call and the documents it produced.
func (m *Metrics) RecordGeneration(types []string, duration time.Duration) {
	if m == nil {
		return
	}
	for _, t := range types {
		m.DocsGenerated.WithLabelValues(t).Inc()
	}
	m.GenerationDuration.Observe(duration.Seconds())
}

// RecordDiff records one computed diff.
func (m *Metrics) RecordDiff() {
	if m == nil {
		return
	}
	m.DiffsComputed.Inc()
}

// RecordStoreOp records one store operation.
func (m *Metrics) RecordStoreOp(backend, op string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StoreOperations.WithLabelValues(backend, op, status).Inc()
}
