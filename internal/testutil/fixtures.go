package testutil

import (
	"testing"

	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/stretchr/testify/require"
)

// Arbitrum Sepolia fixtures used across package tests.
const (
	FixtureChainID  = uint64(421614)
	FixtureWETHAddr = "0x980B62Da83eFf3D4576C647993b0c1D7faf17c73"
	FixtureUSDCAddr = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"
)

// WETHUSDC returns the standard WETH/USDC medium-fee test pair.
func WETHUSDC(t *testing.T) types.AssetPair {
	t.Helper()

	weth, err := types.NewAsset(FixtureChainID, FixtureWETHAddr, 18, "WETH")
	require.NoError(t, err)

	usdc, err := types.NewAsset(FixtureChainID, FixtureUSDCAddr, 6, "USDC")
	require.NoError(t, err)

	pair, err := types.NewAssetPair(weth, usdc, types.FeeMedium)
	require.NoError(t, err)

	return pair
}
