package circuitbreaker

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

// BalanceFetcher fetches the signer's native balance.
// Both chain.Client and test mocks implement this interface.
type BalanceFetcher interface {
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// GasGuard monitors the signer's native balance and gates trigger execution.
// A flash-loan transaction that cannot pay for gas fails at submission and
// wastes a qualifying tick; the guard disables triggering before that point
// and re-enables with hysteresis to prevent flapping around the floor.
type GasGuard struct {
	enabled atomic.Bool // lock-free read on the trigger path

	checkInterval time.Duration
	fetcher       BalanceFetcher
	address       common.Address
	logger        *zap.Logger
	disableBelow  *big.Int // wei
	enableAbove   *big.Int // wei, > disableBelow

	mu          sync.RWMutex
	lastBalance *big.Int
	lastCheck   time.Time
}

// Config holds gas guard configuration.
type Config struct {
	CheckInterval time.Duration
	DisableBelow  *big.Int // wei floor that disables triggering
	EnableAbove   *big.Int // wei level that re-enables triggering
	Fetcher       BalanceFetcher
	Address       common.Address
	Logger        *zap.Logger
}

// Status holds current guard status for debugging.
type Status struct {
	Enabled      bool
	LastBalance  *big.Int
	LastCheck    time.Time
	DisableBelow *big.Int
	EnableAbove  *big.Int
}

// New creates a new gas guard with the given configuration.
func New(cfg *Config) (*GasGuard, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("balance fetcher cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive")
	}
	if cfg.DisableBelow == nil || cfg.DisableBelow.Sign() <= 0 {
		return nil, fmt.Errorf("disable floor must be positive")
	}
	if cfg.EnableAbove == nil || cfg.EnableAbove.Cmp(cfg.DisableBelow) < 0 {
		return nil, fmt.Errorf("enable level must be at least the disable floor")
	}

	guard := &GasGuard{
		checkInterval: cfg.CheckInterval,
		fetcher:       cfg.Fetcher,
		address:       cfg.Address,
		logger:        cfg.Logger,
		disableBelow:  new(big.Int).Set(cfg.DisableBelow),
		enableAbove:   new(big.Int).Set(cfg.EnableAbove),
		lastBalance:   new(big.Int),
	}

	// Start enabled; the first check corrects the state if needed
	guard.enabled.Store(true)

	GasGuardEnabled.Set(1)
	GasGuardDisableFloorEther.Set(weiToEther(guard.disableBelow))
	GasGuardEnableLevelEther.Set(weiToEther(guard.enableAbove))

	return guard, nil
}

// IsEnabled returns true if triggers may be executed.
// This is lock-free and safe to call from hot paths.
func (g *GasGuard) IsEnabled() bool {
	return g.enabled.Load()
}

// CheckBalance checks the current native balance and updates the enabled
// state with hysteresis.
func (g *GasGuard) CheckBalance(ctx context.Context) error {
	start := time.Now()
	defer func() {
		GasGuardCheckDuration.Observe(time.Since(start).Seconds())
	}()

	balance, err := g.fetcher.NativeBalance(ctx, g.address)
	if err != nil {
		g.logger.Error("failed-to-check-gas-balance",
			zap.Error(err),
			zap.String("address", g.address.Hex()))
		return fmt.Errorf("native balance: %w", err)
	}

	g.mu.Lock()
	g.lastBalance.Set(balance)
	g.lastCheck = time.Now()
	g.mu.Unlock()

	GasGuardBalanceEther.Set(weiToEther(balance))

	currentlyEnabled := g.enabled.Load()
	shouldDisable := currentlyEnabled && balance.Cmp(g.disableBelow) < 0
	shouldEnable := !currentlyEnabled && balance.Cmp(g.enableAbove) >= 0

	if shouldDisable {
		g.enabled.Store(false)
		GasGuardEnabled.Set(0)
		GasGuardStateChanges.Inc()

		g.logger.Warn("gas-guard-disabled",
			zap.String("balance-wei", balance.String()),
			zap.String("disable-below-wei", g.disableBelow.String()))
	} else if shouldEnable {
		g.enabled.Store(true)
		GasGuardEnabled.Set(1)
		GasGuardStateChanges.Inc()

		g.logger.Info("gas-guard-enabled",
			zap.String("balance-wei", balance.String()),
			zap.String("enable-above-wei", g.enableAbove.String()))
	} else {
		g.logger.Debug("gas-balance-checked",
			zap.String("balance-wei", balance.String()),
			zap.Bool("enabled", currentlyEnabled))
	}

	return nil
}

// Start begins the background monitoring loop that periodically checks the
// balance. This runs until the context is cancelled.
func (g *GasGuard) Start(ctx context.Context) {
	g.logger.Info("gas-guard-started",
		zap.Duration("check-interval", g.checkInterval),
		zap.String("disable-below-wei", g.disableBelow.String()),
		zap.String("enable-above-wei", g.enableAbove.String()))

	// Check balance immediately on startup
	if err := g.CheckBalance(ctx); err != nil {
		g.logger.Error("initial-gas-check-failed", zap.Error(err))
	}

	go g.monitorLoop(ctx)
}

// monitorLoop is the background goroutine that periodically checks balance.
func (g *GasGuard) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(g.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("gas-guard-stopped")
			return
		case <-ticker.C:
			if err := g.CheckBalance(ctx); err != nil {
				// Log error but continue monitoring
				g.logger.Error("gas-check-error", zap.Error(err))
			}
		}
	}
}

// GetStatus returns current guard status for debugging and HTTP endpoints.
func (g *GasGuard) GetStatus() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Status{
		Enabled:      g.enabled.Load(),
		LastBalance:  new(big.Int).Set(g.lastBalance),
		LastCheck:    g.lastCheck,
		DisableBelow: new(big.Int).Set(g.disableBelow),
		EnableAbove:  new(big.Int).Set(g.enableAbove),
	}
}

func weiToEther(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetInt(big.NewInt(params.Ether)),
	).Float64()
	return f
}
