package trigger

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/dex-arb/pkg/types"
)

// Request holds the parameters of one flash-loan-funded execution. It is
// constructed fresh from a qualifying spread result, never mutated after
// construction, and submitted at most once.
type Request struct {
	ID         string
	Pair       types.AssetPair
	Tick       uint64
	LoanAsset  types.Asset
	LoanAmount *big.Int // in the loan asset's smallest units
	BuyVenue   string
	SellVenue  string
	Deadline   time.Time
	CreatedAt  time.Time
}

// NewRequest builds an execution request from a qualifying spread result.
func NewRequest(result *types.SpreadResult, loanAsset types.Asset, loanAmount *big.Int, deadline time.Duration) (*Request, error) {
	if result == nil {
		return nil, fmt.Errorf("nil spread result")
	}

	if !result.Qualifies {
		return nil, fmt.Errorf("spread %s%% below threshold %s%%",
			result.Spread.StringFixed(4), result.Threshold.StringFixed(4))
	}

	if loanAmount == nil || loanAmount.Sign() <= 0 {
		return nil, fmt.Errorf("loan amount must be positive")
	}

	now := time.Now()

	return &Request{
		ID:         uuid.New().String(),
		Pair:       result.Pair,
		Tick:       result.Tick,
		LoanAsset:  loanAsset,
		LoanAmount: new(big.Int).Set(loanAmount),
		BuyVenue:   result.BuyVenue,
		SellVenue:  result.SellVenue,
		Deadline:   now.Add(deadline),
		CreatedAt:  now,
	}, nil
}
