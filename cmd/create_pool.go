package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/mselser95/dex-arb/internal/app"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getPool is checked before createPool so re-running the command against an
// already-deployed pool is a no-op instead of a revert.
const factoryABI = `[{"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"fee","type":"uint24"}],"name":"getPool","outputs":[{"name":"pool","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"fee","type":"uint24"}],"name":"createPool","outputs":[{"name":"pool","type":"address"}],"stateMutability":"nonpayable","type":"function"}]`

//nolint:gochecknoglobals // Cobra boilerplate
var createPoolCmd = &cobra.Command{
	Use:   "create-pool <venue>",
	Short: "Create the pair's pool on a venue's factory",
	Long: `Creates the configured pair's pool on the named venue's factory.

The factory's getPool is checked first: if the pool already exists the
command prints its address and exits without sending a transaction.
Requires PRIVATE_KEY for the creation transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreatePool,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(createPoolCmd)
}

func runCreatePool(cmd *cobra.Command, args []string) error {
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

	venueName := args[0]
	v, ok := registry.Get(venueName)
	if !ok {
		return fmt.Errorf("unknown venue %q (configured: %s)", venueName, strings.Join(registry.Names(), ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := chain.Dial(ctx, &chain.Config{
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

	parsed, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return fmt.Errorf("parse factory ABI: %w", err)
	}

	token0, token1 := pair.Ordered()
	fee := big.NewInt(int64(pair.Fee))

	fmt.Printf("=== Pool Creation ===\n\n")
	fmt.Printf("Venue:   %s\n", v.Name)
	fmt.Printf("Factory: %s\n", v.Factory.Hex())
	fmt.Printf("Pair:    %s (fee %d)\n\n", pair, pair.Fee)

	existing, err := callGetPool(ctx, client, parsed, v.Factory, token0.Address, token1.Address, fee)
	if err != nil {
		return fmt.Errorf("getPool: %w", err)
	}

	if existing != (common.Address{}) {
		fmt.Printf("Pool already exists: %s ✅\n", existing.Hex())
		return nil
	}

	fmt.Printf("Pool does not exist yet, creating...\n")

	privateKeyHex := os.Getenv("PRIVATE_KEY")
	if privateKeyHex == "" {
		return fmt.Errorf("PRIVATE_KEY not set; required to send the creation transaction")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	submitter, err := chain.NewSubmitter(&chain.SubmitterConfig{
		Client:     client,
		PrivateKey: key,
		GasLimit:   cfg.GasLimit,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		return fmt.Errorf("create submitter: %w", err)
	}

	calldata, err := parsed.Pack("createPool", token0.Address, token1.Address, fee)
	if err != nil {
		return fmt.Errorf("pack createPool: %w", err)
	}

	tx, err := submitter.Submit(ctx, v.Factory, calldata)
	if err != nil {
		return fmt.Errorf("submit createPool: %w", err)
	}

	fmt.Printf("Transaction: %s\n", tx.Hash().Hex())
	fmt.Printf("Waiting for inclusion...\n")

	receipt, err := submitter.WaitMined(ctx, tx)
	if err != nil {
		return fmt.Errorf("wait for inclusion: %w", err)
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("createPool reverted (tx %s)", tx.Hash().Hex())
	}

	created, err := callGetPool(ctx, client, parsed, v.Factory, token0.Address, token1.Address, fee)
	if err != nil {
		return fmt.Errorf("getPool after creation: %w", err)
	}

	fmt.Printf("\nPool created: %s ✅\n", created.Hex())
	fmt.Printf("Gas used: %d\n", receipt.GasUsed)

	return nil
}

func callGetPool(
	ctx context.Context,
	client *chain.Client,
	parsed abi.ABI,
	factory, tokenA, tokenB common.Address,
	fee *big.Int,
) (common.Address, error) {
	calldata, err := parsed.Pack("getPool", tokenA, tokenB, fee)
	if err != nil {
		return common.Address{}, err
	}

	raw, err := client.CallContract(ctx, ethereum.CallMsg{To: &factory, Data: calldata}, nil)
	if err != nil {
		return common.Address{}, err
	}

	out, err := parsed.Unpack("getPool", raw)
	if err != nil || len(out) == 0 {
		return common.Address{}, fmt.Errorf("decode getPool result: %w", err)
	}

	pool, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPool result type")
	}

	return pool, nil
}
