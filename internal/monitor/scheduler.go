package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/internal/venue"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

// Oracle fetches one venue's price sample. Implemented by oracle.Client.
type Oracle interface {
	FetchSample(ctx context.Context, v venue.Venue, pair types.AssetPair, tick uint64) types.PriceSample
}

// Trigger hands a qualifying spread off for execution. Implemented by
// trigger.Executor.
type Trigger interface {
	Trigger(ctx context.Context, result *types.SpreadResult) types.ExecutionOutcome
}

// Storage is the observability sink for tick reports and trigger outcomes.
type Storage interface {
	StoreReport(ctx context.Context, report *spread.Report) error
	StoreOutcome(ctx context.Context, outcome types.ExecutionOutcome) error
	Close() error
}

// Scheduler drives the monitoring loop: every interval it fans out one price
// fetch per venue, joins the samples under a per-tick deadline, evaluates the
// spread and hands qualifying results to the trigger.
//
// Samples are scoped to their tick and never mixed across ticks. Stopping the
// scheduler prevents new ticks and new triggers; in-flight work completes or
// times out naturally.
type Scheduler struct {
	oracle    Oracle
	evaluator *spread.Evaluator
	trigger   Trigger
	storage   Storage
	venues    []venue.Venue
	pair      types.AssetPair
	logger    *zap.Logger

	interval       time.Duration
	tickTimeout    time.Duration
	execTimeout    time.Duration
	triggerEnabled bool

	tick       uint64
	lastReport atomic.Pointer[spread.Report]
	wg         sync.WaitGroup
}

// Config holds scheduler configuration.
type Config struct {
	Oracle         Oracle
	Evaluator      *spread.Evaluator
	Trigger        Trigger // may be nil when TriggerEnabled is false
	Storage        Storage
	Venues         []venue.Venue
	Pair           types.AssetPair
	Interval       time.Duration
	TickTimeout    time.Duration
	ExecTimeout    time.Duration
	TriggerEnabled bool
	Logger         *zap.Logger
}

// New creates a monitoring scheduler.
func New(cfg *Config) (*Scheduler, error) {
	if cfg.Oracle == nil {
		return nil, errors.New("oracle cannot be nil")
	}

	if cfg.Evaluator == nil {
		return nil, errors.New("evaluator cannot be nil")
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage cannot be nil")
	}

	if cfg.TriggerEnabled && cfg.Trigger == nil {
		return nil, errors.New("trigger cannot be nil when triggering is enabled")
	}

	if len(cfg.Venues) < 2 {
		return nil, errors.New("at least two venues required")
	}

	if cfg.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}

	if cfg.TickTimeout <= 0 || cfg.TickTimeout > cfg.Interval {
		return nil, errors.New("tick timeout must be positive and not exceed the interval")
	}

	if cfg.ExecTimeout <= 0 {
		return nil, errors.New("execution timeout must be positive")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Scheduler{
		oracle:         cfg.Oracle,
		evaluator:      cfg.Evaluator,
		trigger:        cfg.Trigger,
		storage:        cfg.Storage,
		venues:         cfg.Venues,
		pair:           cfg.Pair,
		logger:         cfg.Logger,
		interval:       cfg.Interval,
		tickTimeout:    cfg.TickTimeout,
		execTimeout:    cfg.ExecTimeout,
		triggerEnabled: cfg.TriggerEnabled,
	}, nil
}

// Run drives the monitoring loop until ctx is cancelled. The first tick runs
// immediately; later ticks follow the fixed interval. Run returns after
// in-flight trigger executions have finished or hit their timeout.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler-starting",
		zap.String("pair", s.pair.String()),
		zap.Strings("venues", venueNames(s.venues)),
		zap.Duration("interval", s.interval),
		zap.String("threshold-pct", s.evaluator.Threshold().String()),
		zap.Bool("trigger-enabled", s.triggerEnabled))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler-stopping")
			s.wg.Wait()
			s.logger.Info("scheduler-stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// LatestReport returns the most recent completed tick report, or nil before
// the first tick finishes.
func (s *Scheduler) LatestReport() *spread.Report {
	return s.lastReport.Load()
}

// runTick executes one sample → evaluate → (maybe) trigger cycle.
func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		// Shutdown requested: never start a new tick.
		return
	}

	s.tick++
	tick := s.tick
	start := time.Now()

	samples := s.sample(ctx, tick)
	result, inconclusive := s.evaluator.Evaluate(samples)

	report := spread.NewReport(tick, s.pair, samples, result, inconclusive)
	s.lastReport.Store(report)
	s.logTick(report)

	if err := s.storage.StoreReport(ctx, report); err != nil {
		s.logger.Error("store-report-failed",
			zap.Uint64("tick", tick),
			zap.Error(err))
	}

	if report.Triggerable() {
		if !s.triggerEnabled {
			s.logger.Info("trigger-suppressed-monitor-only",
				zap.Uint64("tick", tick),
				zap.String("spread-pct", result.Spread.StringFixed(4)))
		} else if ctx.Err() == nil {
			s.launchTrigger(ctx, result)
		}
	}

	TicksTotal.Inc()
	TickDurationSeconds.Observe(time.Since(start).Seconds())
}

// sample fans out one concurrent fetch per venue and joins them under the
// per-tick deadline. A slow venue times out through the fetch context and
// comes back as an absent sample; it can never block the tick forever.
func (s *Scheduler) sample(ctx context.Context, tick uint64) []types.PriceSample {
	tctx, cancel := context.WithTimeout(ctx, s.tickTimeout)
	defer cancel()

	samples := make([]types.PriceSample, len(s.venues))

	var wg sync.WaitGroup
	for i, v := range s.venues {
		wg.Add(1)
		go func(i int, v venue.Venue) {
			defer wg.Done()
			samples[i] = s.oracle.FetchSample(tctx, v, s.pair, tick)
		}(i, v)
	}
	wg.Wait()

	return samples
}

// launchTrigger runs the execution hand-off without blocking the loop, so a
// pending execution can span ticks and later qualifying ticks resolve to
// Skipped instead of queueing. The execution context survives scheduler
// shutdown but is bounded by the execution timeout.
func (s *Scheduler) launchTrigger(ctx context.Context, result *types.SpreadResult) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.execTimeout)
		defer cancel()

		outcome := s.trigger.Trigger(ectx, result)

		s.logger.Info("trigger-outcome",
			zap.Uint64("tick", result.Tick),
			zap.String("status", string(outcome.Status)),
			zap.String("outcome", outcome.String()))

		if err := s.storage.StoreOutcome(ectx, outcome); err != nil {
			s.logger.Error("store-outcome-failed",
				zap.String("request-id", outcome.RequestID),
				zap.Error(err))
		}
	}()
}

// logTick emits the per-tick observability line: every venue's price or
// failure reason, the spread, and the decision.
func (s *Scheduler) logTick(report *spread.Report) {
	fields := []zap.Field{
		zap.Uint64("tick", report.Tick),
		zap.String("pair", report.Pair.String()),
	}

	for _, sample := range report.Samples {
		if sample.Absent {
			fields = append(fields, zap.String("price-"+sample.Venue, "absent:"+string(sample.Reason)))
		} else {
			fields = append(fields, zap.String("price-"+sample.Venue, sample.Price.String()))
		}
	}

	if report.Result != nil {
		fields = append(fields,
			zap.String("spread-pct", report.Result.Spread.StringFixed(4)),
			zap.String("buy-venue", report.Result.BuyVenue),
			zap.String("sell-venue", report.Result.SellVenue),
			zap.Bool("qualifies", report.Result.Qualifies))
		s.logger.Info("tick-evaluated", fields...)
		return
	}

	fields = append(fields, zap.String("inconclusive", string(report.Inconclusive)))
	s.logger.Info("tick-inconclusive", fields...)
}

func venueNames(venues []venue.Venue) []string {
	names := make([]string, len(venues))
	for i, v := range venues {
		names[i] = v.Name
	}
	return names
}
