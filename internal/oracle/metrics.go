package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SamplesTotal tracks price samples by venue and result
	// (present or an absence reason).
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_oracle_samples_total",
			Help: "Total price samples by venue and result",
		},
		[]string{"venue", "result"},
	)

	// FetchDurationSeconds tracks per-venue fetch latency.
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexarb_oracle_fetch_duration_seconds",
			Help:    "Duration of a single venue price fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"venue"},
	)
)
