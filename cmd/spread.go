package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mselser95/dex-arb/internal/app"
	"github.com/mselser95/dex-arb/internal/oracle"
	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var spreadCmd = &cobra.Command{
	Use:   "spread",
	Short: "Sample all venues once and print the spread",
	Long: `Runs a single monitoring tick without the scheduler or the trigger:
samples every configured venue, evaluates the spread, and prints the result.

Useful for checking venue configuration and thresholds before running the
monitor.`,
	RunE: runSpread,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(spreadCmd)
}

func runSpread(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop() // one-shot command reports through stdout

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TickTimeout)
	defer cancel()

	client, err := chain.Dial(ctx, &chain.Config{
		RPCURL:      cfg.RPCURL,
		ChainID:     cfg.ChainID,
		NetworkName: cfg.NetworkName,
		DialTimeout: cfg.DialTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("dial chain: %w", err)
	}
	defer client.Close()

	pair, err := app.NewPair(cfg)
	if err != nil {
		return fmt.Errorf("build pair: %w", err)
	}

	registry, err := app.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build venue registry: %w", err)
	}

	oracleClient, err := oracle.New(&oracle.Config{
		Reader: client,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}

	evaluator, err := spread.New(spread.Config{
		Threshold: cfg.SpreadThreshold,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}

	fmt.Printf("=== Spread Check ===\n\n")
	fmt.Printf("Pair:      %s\n", pair)
	fmt.Printf("Network:   %s (chain %d)\n", cfg.NetworkName, cfg.ChainID)
	fmt.Printf("Threshold: %s%%\n\n", cfg.SpreadThreshold)

	venues := registry.All()
	samples := make([]types.PriceSample, 0, len(venues))
	for _, v := range venues {
		start := time.Now()
		sample := oracleClient.FetchSample(ctx, v, pair, 1)
		samples = append(samples, sample)

		if sample.Absent {
			fmt.Printf("%-14s absent (%s)  [%s]\n", v.Name+":", sample.Reason, time.Since(start).Round(time.Millisecond))
		} else {
			fmt.Printf("%-14s %s  [%s]\n", v.Name+":", sample.Price, time.Since(start).Round(time.Millisecond))
		}
	}

	result, inconclusive := evaluator.Evaluate(samples)
	fmt.Printf("\n=== Result ===\n\n")

	if result == nil {
		fmt.Printf("Inconclusive: %s\n", inconclusive)
		return nil
	}

	fmt.Printf("Spread:     %s%%\n", result.Spread.StringFixed(4))
	fmt.Printf("Buy venue:  %s @ %s\n", result.BuyVenue, result.BuyPrice)
	fmt.Printf("Sell venue: %s @ %s\n", result.SellVenue, result.SellPrice)
	if result.Qualifies {
		fmt.Printf("Qualifies:  ✅ YES (>= %s%%)\n", result.Threshold)
	} else {
		fmt.Printf("Qualifies:  ❌ NO (< %s%%)\n", result.Threshold)
	}

	return nil
}
