// Package monitoring collects Prometheus metrics for the hub: HTTP
// traffic, per-backend virtual filesystem operations, and dispatch
// fan-out outcomes.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Virtual filesystem metrics
	VFSOps        *prometheus.CounterVec
	VFSOpDuration *prometheus.HistogramVec

	// Dispatch metrics
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Registry metrics
	BackendsRegistered prometheus.Gauge
	BackendsEnabled    prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgefs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgefs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		VFSOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgefs_vfs_operations_total",
				Help: "Virtual filesystem operations by backend and outcome",
			},
			[]string{"backend", "op", "status"},
		),
		VFSOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgefs_vfs_operation_duration_seconds",
				Help:    "Virtual filesystem operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "op"},
		),

		DispatchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgefs_dispatch_total",
				Help: "Dispatched chat sends by target and outcome",
			},
			[]string{"target", "status"},
		),
		DispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgefs_dispatch_duration_seconds",
				Help:    "Dispatch fan-out duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"target"},
		),

		BackendsRegistered: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridgefs_backends_registered",
				Help: "Number of registered backends",
			},
		),
		BackendsEnabled: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridgefs_backends_enabled",
				Help: "Number of enabled backends",
			},
		),
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordVFSOp records one virtual filesystem operation.
func (m *Metrics) RecordVFSOp(backend, op, status string, duration time.Duration) {
	m.VFSOps.WithLabelValues(backend, op, status).Inc()
	m.VFSOpDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// RecordDispatch records one target's outcome within a fan-out.
func (m *Metrics) RecordDispatch(target, status string, duration time.Duration) {
	m.DispatchTotal.WithLabelValues(target, status).Inc()
	m.DispatchDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// SetBackendCounts updates the registry gauges.
func (m *Metrics) SetBackendCounts(registered, enabled int) {
	m.BackendsRegistered.Set(float64(registered))
	m.BackendsEnabled.Set(float64(enabled))
}

// Uptime returns time elapsed since metrics construction.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
