package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InconclusiveReason explains why a tick produced no spread result.
type InconclusiveReason string

const (
	// InconclusiveTooFewSamples means fewer than two venues produced a
	// present price; a spread is never guessed from one side.
	InconclusiveTooFewSamples InconclusiveReason = "too-few-samples"
	// InconclusiveMixedPairs means present samples disagreed on the asset
	// pair; evaluation refuses inconsistent input.
	InconclusiveMixedPairs InconclusiveReason = "mixed-pairs"
	// InconclusiveMixedTicks means samples from different monitoring ticks
	// were offered together; cross-tick data is never compared.
	InconclusiveMixedTicks InconclusiveReason = "mixed-ticks"
)

// SpreadResult is the normalized relative spread between two present samples
// for the same pair and tick. It identifies the cheaper venue as the buy side
// and the dearer one as the sell side. Transient: derived per tick, never
// carried over.
type SpreadResult struct {
	Pair      AssetPair
	Tick      uint64
	Spread    decimal.Decimal // percent, normalized by the lower price
	Threshold decimal.Decimal // configured trigger threshold, percent
	Qualifies bool            // Spread >= Threshold (inclusive)
	BuyVenue  string
	SellVenue string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
}

func (r *SpreadResult) String() string {
	return fmt.Sprintf("spread %s%% (buy %s @ %s, sell %s @ %s)",
		r.Spread.StringFixed(4), r.BuyVenue, r.BuyPrice, r.SellVenue, r.SellPrice)
}
