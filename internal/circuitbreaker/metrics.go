package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GasGuardEnabled indicates whether the guard allows trigger execution.
	GasGuardEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_gas_guard_enabled",
		Help: "Whether the gas guard allows trigger execution (1=enabled, 0=disabled)",
	})

	// GasGuardBalanceEther tracks the last checked native balance.
	GasGuardBalanceEther = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_gas_guard_balance_ether",
		Help: "Last checked native balance of the signer",
	})

	// GasGuardDisableFloorEther tracks the configured disable floor.
	GasGuardDisableFloorEther = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_gas_guard_disable_floor_ether",
		Help: "Native balance floor below which triggering is disabled",
	})

	// GasGuardEnableLevelEther tracks the configured re-enable level.
	GasGuardEnableLevelEther = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_gas_guard_enable_level_ether",
		Help: "Native balance level at which triggering is re-enabled (hysteresis)",
	})

	// GasGuardStateChanges tracks the number of times the guard changed state.
	GasGuardStateChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexarb_gas_guard_state_changes_total",
		Help: "Total number of times the gas guard changed state",
	})

	// GasGuardCheckDuration tracks the time taken to check the balance.
	GasGuardCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_gas_guard_check_duration_seconds",
		Help:    "Time taken to check the signer's native balance",
		Buckets: prometheus.DefBuckets,
	})
)
