package client

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

// DefaultBreakerThreshold is the consecutive failure count that opens the
// breaker when none is configured.
const DefaultBreakerThreshold = 5

// newBreaker guards backend round trips. Transport errors and 5xx responses
// count as failures; 4xx answers are healthy replies. A zero timeout leaves
// gobreaker's own default of 60s.
func newBreaker(name string, threshold uint32, timeout time.Duration, log logging.Logger) *gobreaker.CircuitBreaker {
	if threshold == 0 {
		threshold = DefaultBreakerThreshold
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}
