package detector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	detectorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "detector",
		Name:      "calls_total",
		Help:      "AI-text detector calls by outcome (ok, http_error, transport_error, decode_error, circuit_open)",
	}, []string{"outcome"})

	detectorLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "truthlens",
		Subsystem: "detector",
		Name:      "call_duration_seconds",
		Help:      "AI-text detector call latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 12},
	})
)
