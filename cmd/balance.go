package cmd

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/joho/godotenv"
	"github.com/mselser95/dex-arb/pkg/chain"
	"github.com/mselser95/dex-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check the signer's gas and loan-asset balances",
	Long: `Display the trigger signer's current holdings:
- Native balance (for gas)
- Loan-asset balance (flash loans repay principal + premium from it)

Pass --address to check an arbitrary account instead of the configured
signer.`,
	RunE: runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringP("address", "a", "", "Account to check instead of the configured signer")
}

func runBalance(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	address, err := balanceAddress(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	fmt.Printf("=== Account Balance Sheet ===\n\n")
	fmt.Printf("Network: %s (chain %d)\n", cfg.NetworkName, cfg.ChainID)
	fmt.Printf("Address: %s\n\n", address.Hex())

	nativeBalance, err := client.NativeBalance(ctx, address)
	if err != nil {
		return fmt.Errorf("get native balance: %w", err)
	}

	nativeFloat := new(big.Float).Quo(new(big.Float).SetInt(nativeBalance), big.NewFloat(params.Ether))
	fmt.Printf("Native Balance: %s ETH\n", nativeFloat.Text('f', 6))

	loanAsset := common.HexToAddress(cfg.LoanAsset)
	loanBalance, err := client.ERC20Balance(ctx, loanAsset, address)
	if err != nil {
		return fmt.Errorf("get loan asset balance: %w", err)
	}

	decimals := loanAssetDecimals(cfg)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	loanFloat := new(big.Float).Quo(new(big.Float).SetInt(loanBalance), scale)
	fmt.Printf("Loan Asset:     %s %s\n", loanFloat.Text('f', 6), loanAssetSymbol(cfg))

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Ready to trigger: ")
	if nativeBalance.Sign() > 0 {
		fmt.Printf("✅ YES\n")
	} else {
		fmt.Printf("❌ NO\n")
		fmt.Printf("  - Need native funds for gas\n")
	}

	return nil
}

// balanceAddress resolves the account to inspect: --address wins, otherwise
// the address is derived from the configured private key.
func balanceAddress(cmd *cobra.Command) (common.Address, error) {
	flagAddr, _ := cmd.Flags().GetString("address")
	if flagAddr != "" {
		if !common.IsHexAddress(flagAddr) {
			return common.Address{}, fmt.Errorf("invalid address %q", flagAddr)
		}
		return common.HexToAddress(flagAddr), nil
	}

	privateKeyHex := os.Getenv("PRIVATE_KEY")
	if privateKeyHex == "" {
		return common.Address{}, fmt.Errorf("PRIVATE_KEY not set; pass --address to check another account")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, fmt.Errorf("error casting public key to ECDSA")
	}

	return crypto.PubkeyToAddress(*publicKey), nil
}

func loanAssetDecimals(cfg *config.Config) int {
	switch common.HexToAddress(cfg.LoanAsset) {
	case common.HexToAddress(cfg.TokenBAddress):
		return cfg.TokenBDecimals
	default:
		return cfg.TokenADecimals
	}
}

func loanAssetSymbol(cfg *config.Config) string {
	switch common.HexToAddress(cfg.LoanAsset) {
	case common.HexToAddress(cfg.TokenBAddress):
		return cfg.TokenBSymbol
	default:
		return cfg.TokenASymbol
	}
}
