package oracle

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// sqrtPriceX96 values carry up to 160 bits of mantissa; divisions here need
// far more digits than the package default before the decimal-shift brings
// the price back into human range.
const priceDivisionPrecision = 48

// q192 is 2^192, the denominator of the squared Q64.96 fixed-point price.
var q192 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 192), 0)

// maxSqrtPriceBits bounds the slot0 value; anything wider than uint160 is a
// malformed response.
const maxSqrtPriceBits = 160

// PriceFromSqrtX96 converts a V3 sqrtPriceX96 value into the price of token0
// quoted in token1, adjusted for the tokens' decimal precision. The
// conversion is venue-agnostic: any two V3-style pools for the same ordered
// pair yield directly comparable numbers.
//
//	price = (sqrtPriceX96 / 2^96)^2 * 10^(dec0-dec1)
func PriceFromSqrtX96(sqrtPriceX96 *big.Int, decimals0, decimals1 int32) (decimal.Decimal, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive sqrt price")
	}

	if sqrtPriceX96.BitLen() > maxSqrtPriceBits {
		return decimal.Zero, fmt.Errorf("sqrt price exceeds uint160: %d bits", sqrtPriceX96.BitLen())
	}

	s := decimal.NewFromBigInt(sqrtPriceX96, 0)
	price := s.Mul(s).DivRound(q192, priceDivisionPrecision).Shift(decimals0 - decimals1)

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price underflow for sqrt=%s", sqrtPriceX96)
	}

	return price, nil
}
