package resilience

import (
	"context"

	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc is executed when the breaker is open or overloaded.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback returns ErrCircuitOpen without additional handling.
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// GracefulDegradation returns ErrCircuitOpen and logs which upstream is degraded.
// Callers map the error onto their own degraded response.
func GracefulDegradation(upstream string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("circuit breaker open, upstream degraded",
			zap.String("upstream", upstream),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
