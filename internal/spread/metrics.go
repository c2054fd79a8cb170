package spread

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal tracks tick evaluations by outcome.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_spread_evaluations_total",
			Help: "Total spread evaluations by outcome",
		},
		[]string{"outcome"},
	)

	// SpreadPercent tracks observed cross-venue spreads.
	SpreadPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_spread_percent",
		Help:    "Observed cross-venue spread in percent",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5, 10},
	})

	// EvaluationDurationSeconds tracks evaluation latency.
	EvaluationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_spread_evaluation_duration_seconds",
		Help:    "Duration of spread evaluation",
		Buckets: prometheus.DefBuckets,
	})
)
