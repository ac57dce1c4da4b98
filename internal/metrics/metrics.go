package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twohop_recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "requester_not_found", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twohop_recommendation_duration_seconds",
			Help:    "End-to-end latency of a recommendation request",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesDiscovered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twohop_candidates_discovered",
			Help:    "Second-degree candidates found per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
		},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twohop_classifications_total",
			Help: "Request classifications by source and category",
		},
		[]string{"source", "category"},
	)

	DirectoryCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twohop_directory_calls_total",
			Help: "Directory service calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twohop_profile_cache_lookups_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "twohop_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twohop_circuit_breaker_requests_total",
			Help: "Calls through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected", "canceled"
	)
)
