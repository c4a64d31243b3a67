// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in main.go is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DomainCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "domain_cache_entries",
			Help: "Number of hostnames currently held in the domain cache.",
		})

	DomainCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_cache_hits_total",
			Help: "Cumulative number of domain cache hits.",
		})

	DomainCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_cache_misses_total",
			Help: "Cumulative number of domain cache misses, expired reads included.",
		})

	DomainCacheExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_cache_expired_total",
			Help: "Cumulative number of entries dropped on read after their TTL.",
		})

	DomainCacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_cache_evictions_total",
			Help: "Cumulative number of entries evicted by capacity pressure.",
		})

	DomainResolveErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domain_resolve_errors_total",
			Help: "Cumulative number of failed hostname lookups against the site store.",
		})

	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome.",
		}, []string{"outcome"})

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Asset uploads by category and outcome.",
		}, []string{"type", "outcome"})

	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_failures_total",
			Help: "Best-effort admin notifications that failed.",
		})
)

func init() {
	prometheus.MustRegister(
		DomainCacheEntries,
		DomainCacheHits,
		DomainCacheMisses,
		DomainCacheExpired,
		DomainCacheEvictions,
		DomainResolveErrors,
		ContactSubmissions,
		Uploads,
		NotifyFailures,
	)
}
