package trigger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TriggersTotal tracks execution attempts by outcome status.
	TriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_trigger_executions_total",
			Help: "Total flash-loan trigger attempts by outcome",
		},
		[]string{"status"},
	)

	// ExecutionDurationSeconds tracks submission-to-outcome latency.
	ExecutionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_trigger_execution_duration_seconds",
		Help:    "Duration from trigger start to observed outcome",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})
)
