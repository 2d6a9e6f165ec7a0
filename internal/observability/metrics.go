// Package observability exposes Prometheus metrics for dictionary loads and
// object resolutions.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the adapter's collectors on a private registry so that
// several instances (e.g. in tests) never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadLatency  prometheus.Histogram
	coalesced    prometheus.Counter
	resolutions  *prometheus.CounterVec
	measurements prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fprime_openmct_dictionary_loads_total",
			Help: "Dictionary loads by backend and result.",
		}, []string{"backend", "result"}),
		loadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fprime_openmct_dictionary_load_seconds",
			Help:    "Time spent fetching and parsing the dictionary document.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fprime_openmct_dictionary_loads_coalesced_total",
			Help: "Loads whose fetch was shared with at least one other caller.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fprime_openmct_resolutions_total",
			Help: "Object and composition resolutions by kind and result.",
		}, []string{"kind", "result"}),
		measurements: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fprime_openmct_dictionary_measurements",
			Help: "Number of measurements in the last successfully loaded dictionary.",
		}),
	}

	m.registry.MustRegister(
		m.loads, m.loadLatency, m.coalesced, m.resolutions, m.measurements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLoad records one dictionary load.
func (m *Metrics) ObserveLoad(backend string, d time.Duration, measurements int, err error) {
	if m == nil {
		return
	}
	m.loadLatency.Observe(d.Seconds())
	if err != nil {
		m.loads.WithLabelValues(backend, ResultError).Inc()
		return
	}
	m.loads.WithLabelValues(backend, ResultOK).Inc()
	m.measurements.Set(float64(measurements))
}

// IncCoalesced counts a load whose fetch was shared.
func (m *Metrics) IncCoalesced() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}

// ObserveResolution records an object ("object") or composition
// ("composition") resolution.
func (m *Metrics) ObserveResolution(kind string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.resolutions.WithLabelValues(kind, result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
