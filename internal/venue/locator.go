package venue

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mselser95/dex-arb/pkg/types"
)

// PoolAddress derives the canonical pool address for a pair on this venue.
//
// V3 deployments create pools with CREATE2, so the address is a pure function
// of the deployer, the ordered token pair, the fee tier and the venue's pool
// init code hash. No network call is involved; whether a contract actually
// exists at the derived address is discovered later by the oracle's code
// probe.
func (v Venue) PoolAddress(pair types.AssetPair) common.Address {
	token0, token1 := pair.Ordered()

	// salt = keccak256(abi.encode(token0, token1, fee)): three 32-byte words.
	enc := make([]byte, 0, 96)
	enc = append(enc, common.LeftPadBytes(token0.Address.Bytes(), 32)...)
	enc = append(enc, common.LeftPadBytes(token1.Address.Bytes(), 32)...)
	enc = append(enc, common.LeftPadBytes(feeWord(pair.Fee), 32)...)

	salt := crypto.Keccak256Hash(enc)

	return crypto.CreateAddress2(v.Deployer, salt, v.InitCodeHash.Bytes())
}

// feeWord encodes a fee tier as the big-endian bytes of its uint24 value.
func feeWord(fee types.FeeTier) []byte {
	return []byte{byte(fee >> 16), byte(fee >> 8), byte(fee)}
}
