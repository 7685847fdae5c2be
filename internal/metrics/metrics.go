package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets for request duration (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Metrics wraps the Prometheus collectors exported by the service.
// All recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	notesCreatedTotal    *prometheus.CounterVec
	notesDeletedTotal    *prometheus.CounterVec
	quotaRejectionsTotal *prometheus.CounterVec
	tenantUpgradesTotal  prometheus.Counter
	loginAttemptsTotal   *prometheus.CounterVec
	panicsTotal          prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the
// service's own metrics under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "route"},
		),

		notesCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notes_created_total",
				Help:      "Notes created, by tenant plan",
			},
			[]string{"plan"},
		),

		notesDeletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notes_deleted_total",
				Help:      "Notes deleted, by tenant plan",
			},
			[]string{"plan"},
		),

		quotaRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_rejections_total",
				Help:      "Note creations refused by the plan quota",
			},
			[]string{"plan"},
		),

		tenantUpgradesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tenant_upgrades_total",
				Help:      "Tenants moved from FREE to PRO",
			},
		),

		loginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),

		panicsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_recovered_total",
				Help:      "Handler panics caught by the recovery middleware",
			},
		),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.notesCreatedTotal,
		m.notesDeletedTotal,
		m.quotaRejectionsTotal,
		m.tenantUpgradesTotal,
		m.loginAttemptsTotal,
		m.panicsTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one completed HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// NoteCreated records a successful note creation
func (m *Metrics) NoteCreated(plan string) {
	if m == nil {
		return
	}
	m.notesCreatedTotal.WithLabelValues(plan).Inc()
}

// NoteDeleted records a successful note deletion
func (m *Metrics) NoteDeleted(plan string) {
	if m == nil {
		return
	}
	m.notesDeletedTotal.WithLabelValues(plan).Inc()
}

// QuotaRejected records a creation refused by the plan limit
func (m *Metrics) QuotaRejected(plan string) {
	if m == nil {
		return
	}
	m.quotaRejectionsTotal.WithLabelValues(plan).Inc()
}

// TenantUpgraded records a plan change to PRO
func (m *Metrics) TenantUpgraded() {
	if m == nil {
		return
	}
	m.tenantUpgradesTotal.Inc()
}

// LoginAttempt records a login outcome: "success", "invalid", "rate_limited" or "error"
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// PanicRecovered records a handler panic that was turned into a 500
func (m *Metrics) PanicRecovered() {
	if m == nil {
		return
	}
	m.panicsTotal.Inc()
}
