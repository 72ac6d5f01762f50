package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the engine's operational counters and gauges.
type Metrics struct {
	registry *prometheus.Registry

	TicketsCreated       prometheus.Counter
	TicketsMerged        prometheus.Counter
	SLAWarnings          prometheus.Counter
	SLABreaches          prometheus.Counter
	NotificationsEmitted prometheus.Counter
	PendingAlerts        prometheus.Gauge
	AnomaliesDetected    *prometheus.CounterVec
	ApprovalsResolved    *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		TicketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_tickets_created_total",
			Help: "Tickets created through intake.",
		}),
		TicketsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_tickets_merged_total",
			Help: "Duplicate intakes merged into existing tickets.",
		}),
		SLAWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_sla_warnings_total",
			Help: "SLA warning-window crossings flagged by the watcher.",
		}),
		SLABreaches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_sla_breaches_total",
			Help: "SLA due-date breaches flagged by the watcher.",
		}),
		NotificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_notifications_emitted_total",
			Help: "Notifications appended to the operator feed.",
		}),
		PendingAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workflow_pending_alerts",
			Help: "System alerts not yet acknowledged.",
		}),
		AnomaliesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_anomalies_total",
			Help: "Recorded anomalies by severity.",
		}, []string{"severity"}),
		ApprovalsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_approvals_resolved_total",
			Help: "Approvals resolved by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workflow_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_http_errors_total",
			Help: "HTTP errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
	}

	registry.MustRegister(
		m.TicketsCreated,
		m.TicketsMerged,
		m.SLAWarnings,
		m.SLABreaches,
		m.NotificationsEmitted,
		m.PendingAlerts,
		m.AnomaliesDetected,
		m.ApprovalsResolved,
		m.requests,
		m.requestDuration,
		m.errors,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// Registry returns the prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
