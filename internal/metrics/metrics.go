// Package metrics holds the Prometheus collectors for the roster client.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the client.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AuthFailures     prometheus.Counter
	LookupFires      prometheus.Counter
	HistoryBufferLen prometheus.Gauge
	StartTime        prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_requests_total",
			Help: "Total number of API requests by operation. Status code 0 means a transport failure.",
		}, []string{"operation", "status_code"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_request_duration_seconds",
			Help:    "API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_auth_failures_total",
			Help: "Total number of rejected logins and invalidated credentials.",
		}),

		LookupFires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_lookup_debounce_fires_total",
			Help: "Total number of manager lookups that survived the debounce window.",
		}),

		HistoryBufferLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_history_buffer_entries",
			Help: "Current number of buffered history entries.",
		}),

		StartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_start_time_seconds",
			Help: "Unix timestamp when the client started.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AuthFailures,
		m.LookupFires,
		m.HistoryBufferLen,
		m.StartTime,
	)

	m.StartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncRequest implements the HTTP adapter's recorder hook.
func (m *Metrics) IncRequest(operation string, statusCode int) {
	m.RequestsTotal.WithLabelValues(operation, fmt.Sprintf("%d", statusCode)).Inc()
}

// ObserveDuration implements the HTTP adapter's recorder hook.
func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

// IncAuthFailure counts a rejected login or an invalidated credential.
func (m *Metrics) IncAuthFailure() {
	m.AuthFailures.Inc()
}

// IncLookupFire counts a manager lookup that actually went out.
func (m *Metrics) IncLookupFire() {
	m.LookupFires.Inc()
}

// SetHistoryBufferLen records the history collector's buffer length.
func (m *Metrics) SetHistoryBufferLen(n int) {
	m.HistoryBufferLen.Set(float64(n))
}
