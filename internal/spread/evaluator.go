package spread

import (
	"errors"
	"time"

	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Evaluator computes the normalized relative spread across the present
// samples of one monitoring tick and classifies it against the configured
// trigger threshold.
type Evaluator struct {
	threshold decimal.Decimal // percent
	logger    *zap.Logger
}

// Config holds evaluator configuration.
type Config struct {
	// Threshold is the minimum qualifying spread as a percentage
	// (1.5 means 1.5%). Comparison is inclusive of equality.
	Threshold decimal.Decimal
	Logger    *zap.Logger
}

// New creates a spread evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Threshold.IsNegative() {
		return nil, errors.New("threshold cannot be negative")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Evaluator{
		threshold: cfg.Threshold,
		logger:    cfg.Logger,
	}, nil
}

// Threshold returns the configured trigger threshold in percent.
func (e *Evaluator) Threshold() decimal.Decimal {
	return e.threshold
}

// Evaluate computes the spread for one tick's samples. It requires at least
// two present samples for the same pair and tick; otherwise the tick is
// inconclusive and no spread is ever guessed from one side.
//
// With more than two present samples every pairwise combination is evaluated
// and the maximum spread wins; ties break toward the lexicographically
// smallest buy venue so the result is deterministic.
func (e *Evaluator) Evaluate(samples []types.PriceSample) (*types.SpreadResult, types.InconclusiveReason) {
	start := time.Now()
	defer func() {
		EvaluationDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	present := make([]types.PriceSample, 0, len(samples))
	for _, s := range samples {
		if !s.Absent {
			present = append(present, s)
		}
	}

	if len(present) < 2 {
		e.logger.Debug("evaluation-inconclusive",
			zap.Int("present", len(present)),
			zap.Int("total", len(samples)))
		EvaluationsTotal.WithLabelValues(string(types.InconclusiveTooFewSamples)).Inc()
		return nil, types.InconclusiveTooFewSamples
	}

	for _, s := range present[1:] {
		if !s.Pair.Equal(present[0].Pair) {
			EvaluationsTotal.WithLabelValues(string(types.InconclusiveMixedPairs)).Inc()
			return nil, types.InconclusiveMixedPairs
		}
		if s.Tick != present[0].Tick {
			EvaluationsTotal.WithLabelValues(string(types.InconclusiveMixedTicks)).Inc()
			return nil, types.InconclusiveMixedTicks
		}
	}

	best := e.bestPairwise(present)
	best.Threshold = e.threshold
	best.Qualifies = best.Spread.GreaterThanOrEqual(e.threshold)

	SpreadPercent.Observe(best.Spread.InexactFloat64())
	if best.Qualifies {
		EvaluationsTotal.WithLabelValues("qualifying").Inc()
	} else {
		EvaluationsTotal.WithLabelValues("below-threshold").Inc()
	}

	return best, ""
}

// bestPairwise selects the pairwise combination with the maximum spread.
func (e *Evaluator) bestPairwise(present []types.PriceSample) *types.SpreadResult {
	var best *types.SpreadResult

	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			candidate := pairSpread(present[i], present[j])

			if best == nil ||
				candidate.Spread.GreaterThan(best.Spread) ||
				(candidate.Spread.Equal(best.Spread) && candidate.BuyVenue < best.BuyVenue) {
				best = candidate
			}
		}
	}

	return best
}

// pairSpread computes |a-b| / min(a,b) * 100 and orients buy toward the
// cheaper venue. Normalizing by the lower price makes the percentage the
// uplift achievable by buying low and selling high.
func pairSpread(a, b types.PriceSample) *types.SpreadResult {
	buy, sell := a, b
	if b.Price.LessThan(a.Price) {
		buy, sell = b, a
	} else if a.Price.Equal(b.Price) && b.Venue < a.Venue {
		// Equal prices: deterministic buy side by venue name.
		buy, sell = b, a
	}

	spread := sell.Price.Sub(buy.Price).Div(buy.Price).Mul(hundred)

	return &types.SpreadResult{
		Pair:      buy.Pair,
		Tick:      buy.Tick,
		Spread:    spread,
		BuyVenue:  buy.Venue,
		SellVenue: sell.Venue,
		BuyPrice:  buy.Price,
		SellPrice: sell.Price,
	}
}
