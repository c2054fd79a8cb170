package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ExecutionStatus is the terminal state of one trigger attempt.
type ExecutionStatus string

const (
	// StatusConfirmed means the flash-loan transaction was included with a
	// success status.
	StatusConfirmed ExecutionStatus = "confirmed"
	// StatusReverted means the transaction was included but the settlement
	// logic failed on-chain. A gas loss, not a pipeline fault.
	StatusReverted ExecutionStatus = "reverted"
	// StatusSubmissionFailed means the transaction could not be submitted or
	// its inclusion could not be observed. The caller may retry on a later
	// tick.
	StatusSubmissionFailed ExecutionStatus = "submission-failed"
	// StatusSkipped means a trigger for the same pair was already in flight.
	StatusSkipped ExecutionStatus = "skipped"
)

// ExecutionOutcome reports how one trigger attempt ended. The pipeline's
// responsibility ends at observing and reporting; it never interprets
// settlement-contract profit or loss.
type ExecutionOutcome struct {
	RequestID    string
	Pair         AssetPair
	Status       ExecutionStatus
	TxHash       common.Hash
	GasUsed      uint64
	RevertReason string // decoded on-chain reason, when available
	Err          error  // submission-path error, when any
}

func (o ExecutionOutcome) String() string {
	switch o.Status {
	case StatusConfirmed:
		return fmt.Sprintf("confirmed tx=%s gas=%d", o.TxHash.Hex(), o.GasUsed)
	case StatusReverted:
		return fmt.Sprintf("reverted tx=%s reason=%q", o.TxHash.Hex(), o.RevertReason)
	case StatusSubmissionFailed:
		return fmt.Sprintf("submission failed: %v", o.Err)
	default:
		return string(o.Status)
	}
}
