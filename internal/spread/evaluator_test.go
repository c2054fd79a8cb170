package spread

import (
	"testing"

	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func evalPair(t *testing.T) types.AssetPair {
	t.Helper()

	weth, err := types.NewAsset(421614, "0x980B62Da83eFf3D4576C647993b0c1D7faf17c73", 18, "WETH")
	require.NoError(t, err)

	usdc, err := types.NewAsset(421614, "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", 6, "USDC")
	require.NoError(t, err)

	pair, err := types.NewAssetPair(weth, usdc, types.FeeMedium)
	require.NoError(t, err)

	return pair
}

func newEvaluator(t *testing.T, threshold string) *Evaluator {
	t.Helper()

	eval, err := New(Config{
		Threshold: decimal.RequireFromString(threshold),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	return eval
}

func present(t *testing.T, pair types.AssetPair, venue, price string, tick uint64) types.PriceSample {
	t.Helper()
	return types.NewPresentSample(venue, pair, tick, decimal.RequireFromString(price))
}

func TestEvaluate_QualifyingSpread(t *testing.T) {
	// Venue A at 100, venue B at 101.6 → spread 1.6% ≥ 1.5% threshold.
	pair := evalPair(t)
	eval := newEvaluator(t, "1.5")

	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "101.6", 1),
	})

	require.Empty(t, reason)
	require.NotNil(t, result)
	assert.True(t, result.Spread.Equal(decimal.RequireFromString("1.6")), "got %s", result.Spread)
	assert.True(t, result.Qualifies)
	assert.Equal(t, "uniswap", result.BuyVenue)
	assert.Equal(t, "pancakeswap", result.SellVenue)
}

func TestEvaluate_BelowThreshold(t *testing.T) {
	// 100 vs 100.9 → 0.9% < 1.5%: evaluated but not qualifying.
	pair := evalPair(t)
	eval := newEvaluator(t, "1.5")

	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "100.9", 1),
	})

	require.Empty(t, reason)
	require.NotNil(t, result)
	assert.True(t, result.Spread.Equal(decimal.RequireFromString("0.9")), "got %s", result.Spread)
	assert.False(t, result.Qualifies)
}

func TestEvaluate_ThresholdInclusive(t *testing.T) {
	// Exactly at threshold must qualify.
	pair := evalPair(t)
	eval := newEvaluator(t, "1.5")

	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "101.5", 1),
	})

	require.Empty(t, reason)
	require.NotNil(t, result)
	assert.True(t, result.Spread.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, result.Qualifies)
}

func TestEvaluate_MonotonicDecision(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "1.5")

	spreads := []struct {
		sellPrice string
		qualifies bool
	}{
		{"103", true},  // 3.0%
		{"101.6", true},
		{"101.5", true},
		{"101.49", false},
		{"100.1", false},
	}

	for _, tt := range spreads {
		result, reason := eval.Evaluate([]types.PriceSample{
			present(t, pair, "uniswap", "100", 1),
			present(t, pair, "pancakeswap", tt.sellPrice, 1),
		})
		require.Empty(t, reason)
		assert.Equal(t, tt.qualifies, result.Qualifies, "sell price %s", tt.sellPrice)
	}
}

func TestEvaluate_NormalizedByLowerPrice(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "1")

	// |80-100|/80*100 = 25, not 20: divide by the lower price.
	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "80", 1),
	})

	require.Empty(t, reason)
	assert.True(t, result.Spread.Equal(decimal.NewFromInt(25)), "got %s", result.Spread)
	assert.Equal(t, "pancakeswap", result.BuyVenue)
	assert.Equal(t, "uniswap", result.SellVenue)
}

func TestEvaluate_Inconclusive(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "1.5")

	t.Run("no-samples", func(t *testing.T) {
		result, reason := eval.Evaluate(nil)
		assert.Nil(t, result)
		assert.Equal(t, types.InconclusiveTooFewSamples, reason)
	})

	t.Run("one-present", func(t *testing.T) {
		result, reason := eval.Evaluate([]types.PriceSample{
			present(t, pair, "uniswap", "100", 1),
			types.NewAbsentSample("pancakeswap", pair, 1, types.ReasonNetworkError),
		})
		assert.Nil(t, result)
		assert.Equal(t, types.InconclusiveTooFewSamples, reason)
	})

	t.Run("all-absent", func(t *testing.T) {
		result, reason := eval.Evaluate([]types.PriceSample{
			types.NewAbsentSample("uniswap", pair, 1, types.ReasonPoolNotFound),
			types.NewAbsentSample("pancakeswap", pair, 1, types.ReasonNetworkError),
		})
		assert.Nil(t, result)
		assert.Equal(t, types.InconclusiveTooFewSamples, reason)
	})

	t.Run("mixed-ticks-rejected", func(t *testing.T) {
		result, reason := eval.Evaluate([]types.PriceSample{
			present(t, pair, "uniswap", "100", 1),
			present(t, pair, "pancakeswap", "102", 2),
		})
		assert.Nil(t, result)
		assert.Equal(t, types.InconclusiveMixedTicks, reason)
	})

	t.Run("mixed-pairs-rejected", func(t *testing.T) {
		other, err := types.NewAssetPair(pair.A, pair.B, types.FeeLow)
		require.NoError(t, err)

		result, reason := eval.Evaluate([]types.PriceSample{
			present(t, pair, "uniswap", "100", 1),
			present(t, other, "pancakeswap", "102", 1),
		})
		assert.Nil(t, result)
		assert.Equal(t, types.InconclusiveMixedPairs, reason)
	})
}

func TestEvaluate_ThreeVenuesMaxPairwise(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "1")

	// Max spread is sushi(98) vs pancake(102): |102-98|/98*100 ≈ 4.08%.
	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "102", 1),
		present(t, pair, "sushiswap", "98", 1),
	})

	require.Empty(t, reason)
	assert.Equal(t, "sushiswap", result.BuyVenue)
	assert.Equal(t, "pancakeswap", result.SellVenue)
	expected := decimal.NewFromInt(4).Div(decimal.NewFromInt(98)).Mul(decimal.NewFromInt(100))
	assert.True(t, result.Spread.Equal(expected), "got %s", result.Spread)
}

func TestEvaluate_TieBreaksDeterministically(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "1")

	// Two equal-spread combinations: (alpha 100, mid 102) and (zulu 100,
	// mid 102). The winner buys on the lexicographically smaller venue.
	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "zulu", "100", 1),
		present(t, pair, "alpha", "100", 1),
		present(t, pair, "mid", "102", 1),
	})

	require.Empty(t, reason)
	assert.Equal(t, "alpha", result.BuyVenue)
}

func TestEvaluate_EqualPricesZeroSpread(t *testing.T) {
	pair := evalPair(t)
	eval := newEvaluator(t, "0")

	result, reason := eval.Evaluate([]types.PriceSample{
		present(t, pair, "uniswap", "100", 1),
		present(t, pair, "pancakeswap", "100", 1),
	})

	require.Empty(t, reason)
	assert.True(t, result.Spread.IsZero())
	assert.True(t, result.Qualifies, "zero threshold is inclusive")
	assert.Equal(t, "pancakeswap", result.BuyVenue, "equal prices break ties by venue name")
}
