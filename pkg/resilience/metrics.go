package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "truthlens",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "breaker",
		Name:      "calls_total",
		Help:      "Calls routed through a circuit breaker, by outcome",
	}, []string{"breaker", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "breaker",
		Name:      "state_changes_total",
		Help:      "Circuit breaker state transitions",
	}, []string{"breaker", "from", "to"})

	breakerSeq uint64
)

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	return "breaker-" + strconv.FormatUint(atomic.AddUint64(&breakerSeq, 1), 10)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	default:
		return -1
	}
}

func recordBreakerState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(stateValue(state))
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	breakerCalls.WithLabelValues(name, "attempted").Inc()
}

func recordBreakerFailure(name string) {
	breakerCalls.WithLabelValues(name, "failed").Inc()
}

func recordBreakerFallback(name string) {
	breakerCalls.WithLabelValues(name, "rejected").Inc()
}
