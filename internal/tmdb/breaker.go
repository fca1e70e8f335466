package tmdb

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"reelchain/internal/logging"
	"reelchain/internal/metrics"
	"reelchain/internal/services"
)

func newBreaker(consecutiveFailures uint32, openFor time.Duration, c *Client) *gobreaker.CircuitBreaker[[]byte] {
	if consecutiveFailures == 0 {
		consecutiveFailures = 5
	}
	metrics.SetCircuitState(breakerName, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitState(name, int(to))
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(c.logger, "tmdb circuit opened", "circuit_open",
					logging.String("from", from.String()),
					logging.String(logging.FieldErrorHint, "TMDB is failing repeatedly; check connectivity and status.themoviedb.org"),
					logging.String(logging.FieldImpact, "generation fails fast until the breaker recovers"),
				)
				return
			}
			c.logger.Info("tmdb circuit state changed",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})
}

// breakerSuccess treats client errors and cancellations as healthy responses.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if ext, ok := services.AsExternal(err); ok {
		return ext.StatusCode >= http.StatusBadRequest && ext.StatusCode < http.StatusInternalServerError
	}
	return false
}
