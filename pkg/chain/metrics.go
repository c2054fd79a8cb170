package chain

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal tracks JSON-RPC requests by method and result.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_chain_rpc_calls_total",
			Help: "Total JSON-RPC calls by method and result",
		},
		[]string{"method", "result"},
	)

	// RPCDurationSeconds tracks JSON-RPC latency by method.
	RPCDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexarb_chain_rpc_duration_seconds",
			Help:    "JSON-RPC call latency by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SubmissionsTotal tracks broadcast transactions.
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexarb_chain_submissions_total",
		Help: "Total transactions broadcast",
	})
)

func observeRPC(method string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	RPCCallsTotal.WithLabelValues(method, result).Inc()
	RPCDurationSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
