// Package metrics exposes the Prometheus instruments of the field-keeper
// server. Every method is safe on a nil *Metrics, so services and tests can
// run without a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldkeeper"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	LoginsTotal         *prometheus.CounterVec
	OriginLockoutsTotal prometheus.Counter
	SessionsEvicted     prometheus.Counter
	SessionsRevoked     *prometheus.CounterVec
	LiveSessions        prometheus.Gauge

	// Telemetry metrics
	TelemetryRecordsTotal *prometheus.CounterVec

	// Database metrics
	DBUp prometheus.Gauge
}

// New creates and registers all metrics on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		OriginLockoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "origin_lockouts_total",
				Help:      "Origin lockouts recorded",
			},
		),
		SessionsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_evicted_total",
				Help:      "Sessions expired by the per-actor cap",
			},
		),
		SessionsRevoked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_revoked_total",
				Help:      "Sessions revoked by cause",
			},
			[]string{"cause"},
		),
		LiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_sessions",
				Help:      "Sessions that are not expired",
			},
		),

		TelemetryRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telemetry_records_total",
				Help:      "Telemetry records stored by session status",
			},
			[]string{"status"},
		),

		DBUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_up",
				Help:      "1 when the last database probe succeeded",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.OriginLockoutsTotal,
		m.SessionsEvicted,
		m.SessionsRevoked,
		m.LiveSessions,
		m.TelemetryRecordsTotal,
		m.DBUp,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// LoginOutcome counts a login by outcome: "success" or a failure reason.
func (m *Metrics) LoginOutcome(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OriginLocked() {
	if m == nil {
		return
	}
	m.OriginLockoutsTotal.Inc()
}

func (m *Metrics) SessionsCapped(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsEvicted.Add(float64(n))
}

func (m *Metrics) SessionsRevokedBy(cause string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsRevoked.WithLabelValues(cause).Add(float64(n))
}

func (m *Metrics) SetLiveSessions(n int64) {
	if m == nil {
		return
	}
	m.LiveSessions.Set(float64(n))
}

func (m *Metrics) TelemetryStored(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TelemetryRecordsTotal.WithLabelValues(status).Add(float64(n))
}

func (m *Metrics) SetDBUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.DBUp.Set(1)
		return
	}
	m.DBUp.Set(0)
}
