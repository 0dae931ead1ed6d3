package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call without running it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings configures a CircuitBreaker.
type Settings struct {
	Name             string
	Interval         time.Duration // window after which closed-state counts reset
	Timeout          time.Duration // how long the breaker stays open before probing
	FailureThreshold uint32        // consecutive failures that trip the breaker
	SuccessThreshold uint32        // probes allowed through while half-open

	// IsSuccessful reports whether a returned error still counts as a success.
	// Errors it accepts are returned to the caller but never trip the breaker.
	// Nil counts every error as a failure.
	IsSuccessful func(err error) bool
}

// Operation is a unit of work guarded by the breaker.
type Operation func(ctx context.Context) (interface{}, error)

// CircuitBreaker wraps gobreaker with metrics, logging and a fallback.
type CircuitBreaker struct {
	name         string
	cb           *gobreaker.CircuitBreaker
	fallback     FallbackFunc
	isSuccessful func(err error) bool
}

// NewCircuitBreaker builds a breaker. A nil fallback behaves like NoopFallback.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	isSuccessful := settings.IsSuccessful
	if isSuccessful == nil {
		isSuccessful = func(err error) bool { return err == nil }
	}

	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			recordBreakerStateChange(name, from, to)
		},
	})
	recordBreakerState(name, gobreaker.StateClosed)

	return &CircuitBreaker{name: name, cb: cb, fallback: fallback, isSuccessful: isSuccessful}
}

// Execute runs op once through the breaker. When the breaker rejects the call
// the fallback decides the result.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	recordBreakerRequest(b.name)

	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(b.name)
		return b.fallback(ctx, err)
	}

	if !b.isSuccessful(err) {
		recordBreakerFailure(b.name)
	}
	return nil, err
}

// Name returns the breaker name used in logs and metrics.
func (b *CircuitBreaker) Name() string {
	return b.name
}

// State returns the current breaker state as a string.
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether calls are currently being rejected.
func (b *CircuitBreaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}
