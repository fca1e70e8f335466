// Package metrics holds the Prometheus collectors for reelchain.
//
// Collectors are registered on the default registry at init through promauto
// and exposed by the daemon at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for TMDBRequests.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeNetwork     = "network_error"
	OutcomeCircuitOpen = "circuit_open"
)

var (
	// TMDB client
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelchain_tmdb_requests_total",
			Help: "Total TMDB HTTP attempts by outcome",
		},
		[]string{"outcome"},
	)

	TMDBRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelchain_tmdb_retries_total",
			Help: "Total TMDB request retries after server errors",
		},
	)

	TMDBRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelchain_tmdb_request_duration_seconds",
			Help:    "Duration of single TMDB HTTP attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelchain_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Credits cache
	CreditsCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelchain_credits_cache_events_total",
			Help: "Credits cache hits, misses and evictions",
		},
		[]string{"event"}, // "hit", "miss", "evict"
	)

	// Generation
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelchain_generations_total",
			Help: "Total puzzle generations by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelchain_generation_duration_seconds",
			Help:    "Wall time of complete puzzle generations in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	// HTTP API
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelchain_api_requests_total",
			Help: "Total HTTP API requests by route pattern and status code",
		},
		[]string{"route", "status"},
	)
)

// RecordTMDBAttempt records one HTTP attempt against TMDB.
func RecordTMDBAttempt(outcome string, duration time.Duration) {
	TMDBRequests.WithLabelValues(outcome).Inc()
	if duration > 0 {
		TMDBRequestDuration.Observe(duration.Seconds())
	}
}

// RecordCacheEvent increments the credits cache counter for event.
func RecordCacheEvent(event string) {
	CreditsCacheEvents.WithLabelValues(event).Inc()
}

// RecordGeneration records a finished generation.
func RecordGeneration(success bool, duration time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	Generations.WithLabelValues(result).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records a served HTTP request.
func RecordAPIRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// SetCircuitState publishes a breaker state value.
func SetCircuitState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
