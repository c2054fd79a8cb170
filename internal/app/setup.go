package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mselser95/dex-arb/internal/circuitbreaker"
	"github.com/mselser95/dex-arb/internal/monitor"
	"github.com/mselser95/dex-arb/internal/oracle"
	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/internal/storage"
	"github.com/mselser95/dex-arb/internal/trigger"
	"github.com/mselser95/dex-arb/internal/venue"
	"github.com/mselser95/dex-arb/pkg/cache"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/mselser95/dex-arb/pkg/healthprobe"
	"github.com/mselser95/dex-arb/pkg/httpserver"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

const gasGuardCheckInterval = 30 * time.Second

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	chainClient, err := chain.Dial(ctx, &chain.Config{
		RPCURL:      cfg.RPCURL,
		ChainID:     cfg.ChainID,
		NetworkName: cfg.NetworkName,
		DialTimeout: cfg.DialTimeout,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial chain: %w", err)
	}

	pair, err := NewPair(cfg)
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("build pair: %w", err)
	}

	registry, err := NewRegistry(cfg)
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("build venue registry: %w", err)
	}

	probeCache, err := setupCache(logger)
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	oracleClient, err := oracle.New(&oracle.Config{
		Reader: chainClient,
		Cache:  probeCache,
		Logger: logger,
	})
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("setup oracle: %w", err)
	}

	evaluator, err := spread.New(spread.Config{
		Threshold: cfg.SpreadThreshold,
		Logger:    logger,
	})
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("setup evaluator: %w", err)
	}

	tickStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	triggerEnabled := cfg.TriggerEnabled && !opts.MonitorOnly

	var executor *trigger.Executor
	var gasGuard *circuitbreaker.GasGuard
	if triggerEnabled {
		executor, gasGuard, err = setupTrigger(ctx, cfg, logger, chainClient, pair)
		if err != nil {
			cancel()
			chainClient.Close()
			return nil, fmt.Errorf("setup trigger: %w", err)
		}
	} else {
		logger.Info("trigger-disabled-monitor-only")
	}

	scheduler, err := monitor.New(&monitor.Config{
		Oracle:         oracleClient,
		Evaluator:      evaluator,
		Trigger:        triggerIface(executor),
		Storage:        tickStorage,
		Venues:         registry.All(),
		Pair:           pair,
		Interval:       cfg.PollInterval,
		TickTimeout:    cfg.TickTimeout,
		ExecTimeout:    cfg.ExecTimeout,
		TriggerEnabled: triggerEnabled,
		Logger:         logger,
	})
	if err != nil {
		cancel()
		chainClient.Close()
		return nil, fmt.Errorf("setup scheduler: %w", err)
	}

	healthChecker := healthprobe.New()
	httpServer := httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		HealthChecker:  healthChecker,
		ReportProvider: scheduler,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		chainClient:   chainClient,
		probeCache:    probeCache,
		gasGuard:      gasGuard,
		scheduler:     scheduler,
		storage:       tickStorage,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// triggerIface converts a possibly-nil executor into the scheduler's
// interface without producing a non-nil interface holding a nil pointer.
func triggerIface(executor *trigger.Executor) monitor.Trigger {
	if executor == nil {
		return nil
	}
	return executor
}

// NewPair builds the monitored asset pair from configuration. Shared with
// the one-shot CLI commands.
func NewPair(cfg *config.Config) (types.AssetPair, error) {
	tokenA, err := types.NewAsset(cfg.ChainID, cfg.TokenAAddress, int32(cfg.TokenADecimals), cfg.TokenASymbol)
	if err != nil {
		return types.AssetPair{}, fmt.Errorf("token A: %w", err)
	}

	tokenB, err := types.NewAsset(cfg.ChainID, cfg.TokenBAddress, int32(cfg.TokenBDecimals), cfg.TokenBSymbol)
	if err != nil {
		return types.AssetPair{}, fmt.Errorf("token B: %w", err)
	}

	return types.NewAssetPair(tokenA, tokenB, types.FeeTier(cfg.FeeTier))
}

// NewRegistry builds the venue registry from configuration, honoring the
// optional TOML override file.
func NewRegistry(cfg *config.Config) (*venue.Registry, error) {
	specs, err := config.LoadVenues(cfg.VenuesFile)
	if err != nil {
		return nil, err
	}

	configs := make([]venue.Config, len(specs))
	for i, spec := range specs {
		configs[i] = venue.Config{
			Name:         spec.Name,
			Factory:      spec.Factory,
			Deployer:     spec.Deployer,
			InitCodeHash: spec.InitCodeHash,
		}
	}

	return venue.NewRegistry(configs)
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (pools x venues)
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

// setupTrigger builds the signing submitter, the gas guard and the flash-loan
// executor. Only called when triggering is enabled; missing signer material is
// a configuration error here, not a warning.
func setupTrigger(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	chainClient *chain.Client,
	pair types.AssetPair,
) (*trigger.Executor, *circuitbreaker.GasGuard, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, nil, fmt.Errorf("parse private key: %w", err)
	}

	submitter, err := chain.NewSubmitter(&chain.SubmitterConfig{
		Client:     chainClient,
		PrivateKey: key,
		GasLimit:   cfg.GasLimit,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create submitter: %w", err)
	}

	guard, err := circuitbreaker.New(&circuitbreaker.Config{
		CheckInterval: gasGuardCheckInterval,
		DisableBelow:  big.NewInt(1e16), // 0.01 native unit
		EnableAbove:   big.NewInt(2e16),
		Fetcher:       chainClient,
		Address:       submitter.From(),
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create gas guard: %w", err)
	}
	guard.Start(ctx)

	loanAsset, err := loanAssetFor(cfg, pair)
	if err != nil {
		return nil, nil, err
	}

	loanAmount, ok := new(big.Int).SetString(cfg.LoanAmount, 10)
	if !ok {
		return nil, nil, fmt.Errorf("parse loan amount %q", cfg.LoanAmount)
	}

	executor, err := trigger.New(&trigger.Config{
		Sender:      submitter,
		LendingPool: common.HexToAddress(cfg.LendingPool),
		Receiver:    common.HexToAddress(cfg.SettlementContract),
		LoanAsset:   loanAsset,
		LoanAmount:  loanAmount,
		Deadline:    cfg.ExecTimeout,
		Guard:       guard,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create executor: %w", err)
	}

	logger.Info("trigger-armed",
		zap.String("signer", submitter.From().Hex()),
		zap.String("lending-pool", cfg.LendingPool),
		zap.String("settlement-contract", cfg.SettlementContract),
		zap.String("loan-asset", loanAsset.Symbol),
		zap.String("loan-amount", cfg.LoanAmount))

	return executor, guard, nil
}

// loanAssetFor resolves the configured loan-asset address against the
// monitored pair so the executor carries the right decimals and symbol.
func loanAssetFor(cfg *config.Config, pair types.AssetPair) (types.Asset, error) {
	loan := common.HexToAddress(cfg.LoanAsset)

	if loan == pair.A.Address {
		return pair.A, nil
	}
	if loan == pair.B.Address {
		return pair.B, nil
	}

	return types.Asset{}, fmt.Errorf("loan asset %s is not part of the monitored pair %s", cfg.LoanAsset, pair)
}
