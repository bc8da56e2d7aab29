// Package metrics exposes solver and HTTP instrumentation through a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	SolvesTotal        *prometheus.CounterVec
	SolveDuration      *prometheus.HistogramVec
	Bins               *prometheus.HistogramVec
	ApproximationRatio prometheus.Histogram
	HTTPRequestsTotal  *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors plus the
// bin packing collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		SolvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "binpacking_solves_total",
			Help: "Total number of solver runs by outcome",
		}, []string{"solver", "outcome"}),
		SolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "binpacking_solve_duration_seconds",
			Help:    "Solver latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"solver"}),
		Bins: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "binpacking_bins",
			Help:    "Number of bins in successful solutions",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		}, []string{"solver"}),
		ApproximationRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "binpacking_approximation_ratio",
			Help:    "First-fit bins divided by optimal bins",
			Buckets: []float64{1, 1.1, 1.25, 1.34, 1.5, 1.7, 2},
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.SolvesTotal, m.SolveDuration, m.Bins, m.ApproximationRatio, m.HTTPRequestsTotal)
	return m
}

// ObserveSolve records one solver run.
func (m *Metrics) ObserveSolve(solver string, elapsed time.Duration, bins int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.SolvesTotal.WithLabelValues(solver, outcome).Inc()
	m.SolveDuration.WithLabelValues(solver).Observe(elapsed.Seconds())
	if err == nil {
		m.Bins.WithLabelValues(solver).Observe(float64(bins))
	}
}

// ObserveRatio records an approximation ratio.
func (m *Metrics) ObserveRatio(ratio float64) {
	m.ApproximationRatio.Observe(ratio)
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
