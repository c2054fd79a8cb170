package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "dex-arb",
	Short: "Cross-venue DEX arbitrage monitor",
	Long: `Cross-venue arbitrage monitor for concentrated-liquidity pools.

The monitor derives the pair's pool address on every configured venue,
samples each pool's current price at a fixed interval, evaluates the
relative spread against a threshold, and optionally hands qualifying
spreads to an on-chain flash-loan settlement contract.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
