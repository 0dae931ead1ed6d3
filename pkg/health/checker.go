package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Checker reports nil when the dependency it watches is usable.
type Checker func() error

// CheckerConfig holds checker tuning.
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default checker configuration.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// BreakerState is the view of a circuit breaker a readiness check needs.
type BreakerState interface {
	Name() string
	State() string
	IsOpen() bool
}

// BreakerChecker fails while the breaker is open. A half-open breaker is
// reported ready so probe traffic can reach the upstream.
func BreakerChecker(breaker BreakerState) Checker {
	return func() error {
		if breaker == nil {
			return nil
		}
		if breaker.IsOpen() {
			return fmt.Errorf("circuit breaker %s is %s", breaker.Name(), breaker.State())
		}
		return nil
	}
}

// HTTPEndpointChecker returns a checker for an HTTP dependency using the default config.
func HTTPEndpointChecker(url string) Checker {
	return HTTPEndpointCheckerWithConfig(url, DefaultCheckerConfig())
}

// HTTPEndpointCheckerWithConfig issues a GET and treats any status below 400 as healthy.
func HTTPEndpointCheckerWithConfig(url string, config CheckerConfig) Checker {
	client := &http.Client{
		Timeout: config.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("endpoint %s returned status %d", url, resp.StatusCode)
		}
		return nil
	}
}

// CompositeChecker runs every checker and joins failures as "<name>.<check>: <err>".
func CompositeChecker(name string, checkers map[string]Checker) Checker {
	return func() error {
		keys := make([]string, 0, len(checkers))
		for key := range checkers {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var failures []string
		for _, key := range keys {
			if err := checkers[key](); err != nil {
				failures = append(failures, fmt.Sprintf("%s.%s: %v", name, key, err))
			}
		}
		if len(failures) > 0 {
			return fmt.Errorf("%s", strings.Join(failures, "; "))
		}
		return nil
	}
}

// AsyncChecker bounds a checker by timeout.
func AsyncChecker(checker Checker, timeout time.Duration) Checker {
	return func() error {
		done := make(chan error, 1)
		go func() {
			done <- checker()
		}()

		select {
		case err := <-done:
			return err
		case <-time.After(timeout):
			return fmt.Errorf("health check timeout after %v", timeout)
		}
	}
}

// CachedChecker memoizes a checker's result for cacheTTL.
type CachedChecker struct {
	checker  Checker
	cacheTTL time.Duration

	mu        sync.Mutex
	lastErr   error
	checkedAt time.Time
}

// NewCachedChecker wraps checker with a result cache.
func NewCachedChecker(checker Checker, cacheTTL time.Duration) *CachedChecker {
	return &CachedChecker{checker: checker, cacheTTL: cacheTTL}
}

// Check returns the cached result or runs the checker when the cache expired.
func (c *CachedChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.checkedAt.IsZero() && time.Since(c.checkedAt) < c.cacheTTL {
		return c.lastErr
	}

	c.lastErr = c.checker()
	c.checkedAt = time.Now()
	return c.lastErr
}
