package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mselser95/dex-arb/internal/app"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Derive the pair's pool address on every venue",
	Long: `Derives the pair's pool address on every configured venue from the
factory, deployer and init code hash, then probes whether contract code is
deployed there.

The derivation is pure; only the code probe touches the chain. Use --offline
to skip the probe.`,
	RunE: runResolve,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("offline", false, "Skip the on-chain code probe")
}

func runResolve(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pair, err := app.NewPair(cfg)
	if err != nil {
		return fmt.Errorf("build pair: %w", err)
	}

	registry, err := app.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build venue registry: %w", err)
	}

	offline, _ := cmd.Flags().GetBool("offline")

	var client *chain.Client
	if !offline {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		defer cancel()

		client, err = chain.Dial(ctx, &chain.Config{
			RPCURL:      cfg.RPCURL,
			ChainID:     cfg.ChainID,
			NetworkName: cfg.NetworkName,
			DialTimeout: cfg.DialTimeout,
			Logger:      zap.NewNop(),
		})
		if err != nil {
			return fmt.Errorf("dial chain: %w", err)
		}
		defer client.Close()
	}

	token0, token1 := pair.Ordered()

	fmt.Printf("=== Pool Resolution ===\n\n")
	fmt.Printf("Pair:   %s (fee %d)\n", pair, pair.Fee)
	fmt.Printf("Token0: %s (%s)\n", token0.Address.Hex(), token0.Symbol)
	fmt.Printf("Token1: %s (%s)\n\n", token1.Address.Hex(), token1.Symbol)

	for _, v := range registry.All() {
		pool := v.PoolAddress(pair)

		fmt.Printf("%s\n", v.Name)
		fmt.Printf("  factory:  %s\n", v.Factory.Hex())
		if v.Deployer != v.Factory {
			fmt.Printf("  deployer: %s\n", v.Deployer.Hex())
		}
		fmt.Printf("  pool:     %s\n", pool.Hex())

		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.TickTimeout)
			code, err := client.CodeAt(ctx, pool, nil)
			cancel()

			switch {
			case err != nil:
				fmt.Printf("  deployed: ? (probe failed: %v)\n", err)
			case len(code) > 0:
				fmt.Printf("  deployed: ✅ YES (%d bytes of code)\n", len(code))
			default:
				fmt.Printf("  deployed: ❌ NO\n")
			}
		}
		fmt.Println()
	}

	return nil
}
