// Package metrics exposes the core's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yojanamitra_queries_total",
		Help: "Handled queries by outcome.",
	}, []string{"outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yojanamitra_cache_lookups_total",
		Help: "Response cache lookups by result.",
	}, []string{"result"})

	LimiterRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yojanamitra_ratelimit_rejections_total",
		Help: "Requests rejected by the rate limiter, by endpoint class.",
	}, []string{"class"})

	GeneratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yojanamitra_generator_failures_total",
		Help: "Answer generator failures by error kind.",
	}, []string{"kind"})

	GenerationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yojanamitra_generation_seconds",
		Help:    "Latency of external answer generation calls.",
		Buckets: prometheus.DefBuckets,
	})
)

// Query outcomes.
const (
	OutcomeCacheHit      = "cache_hit"
	OutcomeGenerated     = "generated"
	OutcomeDegraded      = "degraded"
	OutcomeRateLimited   = "rate_limited"
	OutcomeClarification = "clarification"
)
