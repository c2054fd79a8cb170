package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Asset identifies one ERC-20 token on one chain. The zero address plus
// Native=true is the sentinel for the chain's native asset (gas token).
type Asset struct {
	ChainID  uint64
	Address  common.Address
	Native   bool
	Decimals int32
	Symbol   string
}

// NewAsset creates a validated ERC-20 asset.
func NewAsset(chainID uint64, address string, decimals int32, symbol string) (Asset, error) {
	if !common.IsHexAddress(address) {
		return Asset{}, fmt.Errorf("asset %s: invalid address %q", symbol, address)
	}

	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		return Asset{}, fmt.Errorf("asset %s: zero address", symbol)
	}

	if decimals < 0 || decimals > 36 {
		return Asset{}, fmt.Errorf("asset %s: decimals out of range: %d", symbol, decimals)
	}

	if symbol == "" {
		return Asset{}, fmt.Errorf("asset at %s: empty symbol", addr.Hex())
	}

	return Asset{
		ChainID:  chainID,
		Address:  addr,
		Decimals: decimals,
		Symbol:   symbol,
	}, nil
}

// NativeAsset creates the native-asset sentinel for a chain.
func NativeAsset(chainID uint64, decimals int32, symbol string) Asset {
	return Asset{
		ChainID:  chainID,
		Native:   true,
		Decimals: decimals,
		Symbol:   symbol,
	}
}

// Equal reports whether two assets are the same token.
func (a Asset) Equal(other Asset) bool {
	return a.ChainID == other.ChainID && a.Native == other.Native && a.Address == other.Address
}

func (a Asset) String() string {
	if a.Native {
		return fmt.Sprintf("%s(native)", a.Symbol)
	}
	return fmt.Sprintf("%s(%s)", a.Symbol, a.Address.Hex())
}

// FeeTier is a V3 pool fee bucket in hundredths of a basis point
// (100 = 0.01%, 3000 = 0.3%). Distinct tiers address distinct pools.
type FeeTier uint32

const (
	FeeLowest FeeTier = 100
	FeeLow    FeeTier = 500
	FeeCake   FeeTier = 2500 // PancakeSwap-specific medium tier
	FeeMedium FeeTier = 3000
	FeeHigh   FeeTier = 10000
)

// Valid reports whether the tier is one of the known buckets.
func (f FeeTier) Valid() bool {
	switch f {
	case FeeLowest, FeeLow, FeeCake, FeeMedium, FeeHigh:
		return true
	default:
		return false
	}
}

// Percent renders the tier as a human-readable percentage.
func (f FeeTier) Percent() string {
	return fmt.Sprintf("%g%%", float64(f)/10000)
}

// AssetPair is an unordered pair of two distinct assets plus a fee tier.
// Argument order at construction does not matter for equality or for
// on-chain pool resolution.
type AssetPair struct {
	A   Asset
	B   Asset
	Fee FeeTier
}

// NewAssetPair creates a validated pair. The two assets must be distinct
// ERC-20 tokens on the same chain.
func NewAssetPair(a, b Asset, fee FeeTier) (AssetPair, error) {
	if a.Native || b.Native {
		return AssetPair{}, fmt.Errorf("pool pairs require ERC-20 assets, got native asset")
	}

	if a.ChainID != b.ChainID {
		return AssetPair{}, fmt.Errorf("cross-chain pair %s/%s", a.Symbol, b.Symbol)
	}

	if a.Equal(b) {
		return AssetPair{}, fmt.Errorf("pair assets must be distinct, got %s twice", a.Symbol)
	}

	if !fee.Valid() {
		return AssetPair{}, fmt.Errorf("unknown fee tier %d", fee)
	}

	return AssetPair{A: a, B: b, Fee: fee}, nil
}

// Ordered returns the pair's assets sorted ascending by contract address.
// This ordering is the protocol-level token0/token1 rule shared by all V3
// deployments; pool derivation and price orientation both depend on it.
func (p AssetPair) Ordered() (token0, token1 Asset) {
	if bytes.Compare(p.A.Address.Bytes(), p.B.Address.Bytes()) < 0 {
		return p.A, p.B
	}
	return p.B, p.A
}

// Equal reports whether two pairs contain the same two assets and fee tier,
// regardless of argument order.
func (p AssetPair) Equal(other AssetPair) bool {
	if p.Fee != other.Fee {
		return false
	}

	a0, a1 := p.Ordered()
	b0, b1 := other.Ordered()

	return a0.Equal(b0) && a1.Equal(b1)
}

// Key returns a canonical order-insensitive identifier, used for in-flight
// trigger accounting and log correlation.
func (p AssetPair) Key() string {
	t0, t1 := p.Ordered()
	return fmt.Sprintf("%s-%s-%d", strings.ToLower(t0.Address.Hex()), strings.ToLower(t1.Address.Hex()), p.Fee)
}

func (p AssetPair) String() string {
	return fmt.Sprintf("%s/%s@%s", p.A.Symbol, p.B.Symbol, p.Fee.Percent())
}
