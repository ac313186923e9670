// Package metrics holds Prometheus instruments that are used across the
// tracker.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	VisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visits_total",
			Help: "Cumulative number of visits recorded, by tracking variant.",
		},
		[]string{"variant"}, // "redirect" or "image"
	)

	VisitStoreErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visit_store_errors_total",
			Help: "Cumulative number of failed visit appends.",
		})

	BotVisitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_visits_total",
			Help: "Cumulative number of requests whose User-Agent matched a crawler signature.",
		})

	GeoLookupTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_lookup_total",
			Help: "Cumulative number of geo provider lookups attempted.",
		})

	GeoLookupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_lookup_errors_total",
			Help: "Cumulative number of geo provider lookups that failed or timed out.",
		})

	GeoCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geo_cache_hits_total",
			Help: "Cumulative number of geo lookups served from cache.",
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Cumulative number of tracking requests rejected by the per-IP rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		VisitsTotal,
		VisitStoreErrorsTotal,
		BotVisitsTotal,
		GeoLookupTotal,
		GeoLookupErrorsTotal,
		GeoCacheHitsTotal,
		RateLimitedTotal,
	)
}
