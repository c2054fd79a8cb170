package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AbsentReason classifies why a venue produced no usable price for a tick.
type AbsentReason string

const (
	// ReasonPoolNotFound means the derived pool address has no contract code.
	ReasonPoolNotFound AbsentReason = "pool-not-found"
	// ReasonNetworkError covers RPC transport failures and timeouts.
	ReasonNetworkError AbsentReason = "network-error"
	// ReasonCallReverted means the price-state read itself reverted.
	ReasonCallReverted AbsentReason = "call-reverted"
	// ReasonDecodeError means the node answered but the response was not a
	// usable price (malformed data, uninitialized pool).
	ReasonDecodeError AbsentReason = "decode-error"
)

// PriceSample is the result of querying one venue for one pair within one
// monitoring tick: either a present, strictly positive price or an absence
// marker with a typed reason. Samples are immutable and tick-scoped.
type PriceSample struct {
	Venue      string
	Pair       AssetPair
	Tick       uint64
	Price      decimal.Decimal
	Absent     bool
	Reason     AbsentReason
	ObservedAt time.Time
}

// NewPresentSample creates a present sample. The price must be strictly
// positive; a non-positive price is reported as a decode failure instead of
// letting an invalid sample into spread evaluation.
func NewPresentSample(venue string, pair AssetPair, tick uint64, price decimal.Decimal) PriceSample {
	if !price.IsPositive() {
		return NewAbsentSample(venue, pair, tick, ReasonDecodeError)
	}

	return PriceSample{
		Venue:      venue,
		Pair:       pair,
		Tick:       tick,
		Price:      price,
		ObservedAt: time.Now(),
	}
}

// NewAbsentSample creates an absence marker for a failed venue query.
func NewAbsentSample(venue string, pair AssetPair, tick uint64, reason AbsentReason) PriceSample {
	return PriceSample{
		Venue:      venue,
		Pair:       pair,
		Tick:       tick,
		Absent:     true,
		Reason:     reason,
		ObservedAt: time.Now(),
	}
}

func (s PriceSample) String() string {
	if s.Absent {
		return fmt.Sprintf("%s: absent (%s)", s.Venue, s.Reason)
	}
	return fmt.Sprintf("%s: %s", s.Venue, s.Price.String())
}
