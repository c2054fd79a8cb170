package storage

import (
	"context"
	"fmt"

	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreReport pretty-prints one tick's spread report to console.
func (c *ConsoleStorage) StoreReport(_ context.Context, report *spread.Report) error {
	fmt.Println("\n" + rule)
	if report.Triggerable() {
		fmt.Printf("🎯 SPREAD OPPORTUNITY DETECTED\n")
	} else {
		fmt.Printf("📈 SPREAD REPORT\n")
	}
	fmt.Println(rule)
	fmt.Printf("ID:    %s\n", report.ID[:8])
	fmt.Printf("Tick:  %d\n", report.Tick)
	fmt.Printf("Pair:  %s\n", report.Pair.String())
	fmt.Printf("Time:  %s\n", report.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(rule)
	fmt.Printf("📊 VENUE PRICES\n")
	for _, sample := range report.Samples {
		if sample.Absent {
			fmt.Printf("  %-14s absent (%s)\n", sample.Venue+":", sample.Reason)
		} else {
			fmt.Printf("  %-14s %s\n", sample.Venue+":", sample.Price.StringFixed(8))
		}
	}
	fmt.Println(rule)
	if report.Result != nil {
		fmt.Printf("💹 EVALUATION\n")
		fmt.Printf("  Spread:     %s%% (threshold: %s%%)\n",
			report.Result.Spread.StringFixed(4), report.Result.Threshold.String())
		fmt.Printf("  Buy:        %s @ %s\n", report.Result.BuyVenue, report.Result.BuyPrice.StringFixed(8))
		fmt.Printf("  Sell:       %s @ %s\n", report.Result.SellVenue, report.Result.SellPrice.StringFixed(8))
		if report.Result.Qualifies {
			fmt.Printf("  ✅ QUALIFIES for trigger\n")
		} else {
			fmt.Printf("  ❌ below threshold\n")
		}
	} else {
		fmt.Printf("⚠️  INCONCLUSIVE: %s\n", report.Inconclusive)
	}
	fmt.Println(rule)

	return nil
}

// StoreOutcome pretty-prints a trigger outcome to console.
func (c *ConsoleStorage) StoreOutcome(_ context.Context, outcome types.ExecutionOutcome) error {
	fmt.Println("\n" + rule)
	fmt.Printf("⚡ TRIGGER OUTCOME\n")
	fmt.Println(rule)
	fmt.Printf("Request:  %s\n", outcome.RequestID)
	fmt.Printf("Pair:     %s\n", outcome.Pair.String())
	fmt.Printf("Status:   %s\n", outcome.Status)
	switch outcome.Status {
	case types.StatusConfirmed:
		fmt.Printf("Tx:       %s\n", outcome.TxHash.Hex())
		fmt.Printf("Gas:      %d\n", outcome.GasUsed)
	case types.StatusReverted:
		fmt.Printf("Tx:       %s\n", outcome.TxHash.Hex())
		fmt.Printf("Reason:   %s\n", outcome.RevertReason)
	case types.StatusSubmissionFailed:
		fmt.Printf("Error:    %v\n", outcome.Err)
	}
	fmt.Println(rule)

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
