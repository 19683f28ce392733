package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Authorization metrics
	AuthzDecisionsTotal   *prometheus.CounterVec
	FieldDenialsTotal     *prometheus.CounterVec
	RoleHealingsTotal     prometheus.Counter
	LoginsTotal           *prometheus.CounterVec

	// Audit metrics
	AuditEventsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssp_authz_decisions_total",
				Help: "Total request authorization decisions by outcome",
			},
			[]string{"method", "outcome"},
		),
		FieldDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssp_field_denials_total",
				Help: "Total field-level mutation denials by role",
			},
			[]string{"role"},
		),
		RoleHealingsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ssp_role_healings_total",
				Help: "Total persisted role changes from allow-list healing",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssp_logins_total",
				Help: "Total OAuth2 logins by resolved role",
			},
			[]string{"role"},
		),
		AuditEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssp_audit_events_total",
				Help: "Total audit events recorded by severity",
			},
			[]string{"severity"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.AuthzDecisionsTotal,
		m.FieldDenialsTotal,
		m.RoleHealingsTotal,
		m.LoginsTotal,
		m.AuditEventsTotal,
	)

	return m
}

// Handler returns the prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
