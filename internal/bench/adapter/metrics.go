package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	examplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reflexio",
			Subsystem: "harness",
			Name:      "examples_total",
			Help:      "Examples evaluated, by adapter and outcome (scored, format_failure, discarded).",
		},
		[]string{"adapter", "outcome"},
	)

	technicalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reflexio",
			Subsystem: "harness",
			Name:      "technical_failures_total",
			Help:      "Model call failures discarded from scoring, by adapter, stage and error type.",
		},
		[]string{"adapter", "stage", "error_type"},
	)

	modelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reflexio",
			Subsystem: "harness",
			Name:      "model_call_duration_seconds",
			Help:      "Duration of generation model calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"adapter"},
	)

	batchScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reflexio",
			Subsystem: "harness",
			Name:      "batch_mean_score",
			Help:      "Mean score of each evaluated batch over valid examples.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"adapter"},
	)
)

func recordOutcome(adapter, outcome string) {
	examplesTotal.WithLabelValues(adapter, outcome).Inc()
}

func recordFailure(adapter string, rec ErrorRecord) {
	recordOutcome(adapter, "discarded")
	technicalFailures.WithLabelValues(adapter, rec.Stage, rec.ErrorType).Inc()
}
