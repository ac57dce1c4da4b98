// Package breaker builds the circuit breakers placed in front of remote
// dependencies (classifier backend, directory service).
//
// A breaker never retries. It only turns a dependency that keeps failing
// into an immediate error so callers fall back without waiting on timeouts.
package breaker

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/agenthands/twohop/internal/logging"
	"github.com/agenthands/twohop/internal/metrics"
)

// Breaker wraps gobreaker with metrics and logging.
type Breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

// New returns a breaker that opens once at least 10 calls were seen in the
// current minute and 60% of them failed, and half-opens again after 30s.
func New[T any](name string) *Breaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: isSuccessful,
	})

	return &Breaker[T]{name: name, cb: cb}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case IsRejected(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	case errors.Is(err, context.Canceled):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "canceled").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return res, err
}

func (b *Breaker[T]) State() gobreaker.State {
	return b.cb.State()
}

// IsRejected reports whether err came from the breaker itself rather than
// from the wrapped call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// isSuccessful keeps canceled calls out of the failure count.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
