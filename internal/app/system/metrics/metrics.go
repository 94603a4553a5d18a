// Package metrics exposes the Prometheus collectors of the service.
//
// A *Metrics is built once in bootstrap and passed to the components that
// record into it. All methods are safe on a nil receiver so tests and
// tools can skip instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "civickey"

// Metrics groups the service collectors around a private registry.
type Metrics struct {
	reg *prometheus.Registry

	tenantResolutions *prometheus.CounterVec
	domainCache       *prometheus.CounterVec
	aggregateParts    *prometheus.CounterVec
	permissionDenials *prometheus.CounterVec
}

// New creates and registers the collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		tenantResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_resolutions_total",
			Help:      "Tenant resolutions by mode (subdomain, path, custom) and outcome.",
		}, []string{"mode", "outcome"}),
		domainCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_cache_lookups_total",
			Help:      "Custom-domain cache lookups by result (hit, miss).",
		}, []string{"result"}),
		aggregateParts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_part_fetches_total",
			Help:      "Aggregate snapshot sub-fetches by part and outcome.",
		}, []string{"part", "outcome"}),
		permissionDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_denials_total",
			Help:      "Admin requests denied by RBAC.",
		}, []string{"feature", "action"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tenantResolutions,
		m.domainCache,
		m.aggregateParts,
		m.permissionDenials,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// TenantResolved records one resolver outcome ("resolved", "none", "redirect", "error").
func (m *Metrics) TenantResolved(mode, outcome string) {
	if m == nil {
		return
	}
	m.tenantResolutions.WithLabelValues(mode, outcome).Inc()
}

// DomainCacheLookup records a custom-domain cache hit or miss.
func (m *Metrics) DomainCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.domainCache.WithLabelValues(result).Inc()
}

// AggregatePart records the outcome of one aggregate sub-fetch.
func (m *Metrics) AggregatePart(part string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aggregateParts.WithLabelValues(part, outcome).Inc()
}

// PermissionDenied records an RBAC denial.
func (m *Metrics) PermissionDenied(feature, action string) {
	if m == nil {
		return
	}
	m.permissionDenials.WithLabelValues(feature, action).Inc()
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
