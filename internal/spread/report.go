package spread

import (
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/dex-arb/pkg/types"
)

// Report is the observable record of one monitoring tick: each venue's sample
// (present or absent with its reason), the evaluation result, and the trigger
// decision. Reports exist for observability sinks and the HTTP snapshot; the
// samples themselves are never fed back into a later tick.
type Report struct {
	ID           string
	Tick         uint64
	Pair         types.AssetPair
	Samples      []types.PriceSample
	Result       *types.SpreadResult
	Inconclusive types.InconclusiveReason
	CreatedAt    time.Time
}

// NewReport assembles the record for one completed tick.
func NewReport(tick uint64, pair types.AssetPair, samples []types.PriceSample, result *types.SpreadResult, reason types.InconclusiveReason) *Report {
	return &Report{
		ID:           uuid.New().String(),
		Tick:         tick,
		Pair:         pair,
		Samples:      samples,
		Result:       result,
		Inconclusive: reason,
		CreatedAt:    time.Now(),
	}
}

// Triggerable reports whether this tick's evaluation qualified for execution.
func (r *Report) Triggerable() bool {
	return r.Result != nil && r.Result.Qualifies
}
