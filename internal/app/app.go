package app

import (
	"context"
	"sync"

	"github.com/mselser95/dex-arb/internal/circuitbreaker"
	"github.com/mselser95/dex-arb/internal/monitor"
	"github.com/mselser95/dex-arb/internal/storage"
	"github.com/mselser95/dex-arb/pkg/cache"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/mselser95/dex-arb/pkg/healthprobe"
	"github.com/mselser95/dex-arb/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator: it owns the chain client, the
// monitoring scheduler, the optional trigger stack and the HTTP surface.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	chainClient   *chain.Client
	probeCache    cache.Cache
	gasGuard      *circuitbreaker.GasGuard
	scheduler     *monitor.Scheduler
	storage       storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	MonitorOnly bool // force-disable triggering regardless of configuration
}
