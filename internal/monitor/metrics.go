package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed monitoring ticks.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexarb_monitor_ticks_total",
		Help: "Total completed monitoring ticks",
	})

	// TickDurationSeconds tracks end-to-end tick latency including sampling
	// and evaluation.
	TickDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_monitor_tick_duration_seconds",
		Help:    "Monitoring tick latency",
		Buckets: prometheus.DefBuckets,
	})
)
