package listing

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "listing",
		Name:      "analyses_total",
		Help:      "Completed listing analyses by final status",
	}, []string{"status"})

	analysisFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "listing",
		Name:      "analysis_failures_total",
		Help:      "Listing analyses aborted by an internal fault",
	})

	rulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "listing",
		Name:      "rules_fired_total",
		Help:      "Indicator rules that fired, by rule number",
	}, []string{"rule"})

	blendOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truthlens",
		Subsystem: "listing",
		Name:      "blend_outcomes_total",
		Help:      "AI detection blending outcomes (skipped, error, verdict, downgraded)",
	}, []string{"outcome"})
)

func recordRules(fired []int) {
	for _, n := range fired {
		rulesFired.WithLabelValues(strconv.Itoa(n)).Inc()
	}
}
