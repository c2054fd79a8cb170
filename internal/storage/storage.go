package storage

import (
	"context"

	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/pkg/types"
)

// Storage is the observability sink for tick reports and trigger outcomes.
// These are monitoring records, not a trade ledger.
type Storage interface {
	// StoreReport persists one completed tick's spread report.
	StoreReport(ctx context.Context, report *spread.Report) error

	// StoreOutcome persists the terminal state of one trigger attempt.
	StoreOutcome(ctx context.Context, outcome types.ExecutionOutcome) error

	// Close closes the storage connection.
	Close() error
}
