package oracle

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q96() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 96)
}

func TestPriceFromSqrtX96_UnitPrice(t *testing.T) {
	// sqrtPriceX96 == 2^96 encodes a raw price of exactly 1.0.
	price, err := PriceFromSqrtX96(q96(), 18, 18)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(1)), "got %s", price)
}

func TestPriceFromSqrtX96_Squares(t *testing.T) {
	// 2 * 2^96 encodes sqrt(price) = 2, so price = 4.
	sqrt := new(big.Int).Mul(q96(), big.NewInt(2))

	price, err := PriceFromSqrtX96(sqrt, 6, 6)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(4)), "got %s", price)
}

func TestPriceFromSqrtX96_DecimalShift(t *testing.T) {
	// Raw price 1.0 between an 18-decimal token0 and a 6-decimal token1 is
	// 10^12 once normalized to human units.
	price, err := PriceFromSqrtX96(q96(), 18, 6)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.New(1, 12)), "got %s", price)

	// And the inverse orientation shifts the other way.
	price, err = PriceFromSqrtX96(q96(), 6, 18)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.New(1, -12)), "got %s", price)
}

func TestPriceFromSqrtX96_VenueAgnostic(t *testing.T) {
	// The same slot0 value read from two different venues' pools must convert
	// to the same number: the conversion has no venue-specific inputs.
	sqrt := new(big.Int).Mul(q96(), big.NewInt(3))

	a, err := PriceFromSqrtX96(sqrt, 18, 6)
	require.NoError(t, err)

	b, err := PriceFromSqrtX96(new(big.Int).Set(sqrt), 18, 6)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestPriceFromSqrtX96_Rejections(t *testing.T) {
	_, err := PriceFromSqrtX96(nil, 18, 6)
	assert.Error(t, err)

	_, err = PriceFromSqrtX96(big.NewInt(0), 18, 6)
	assert.Error(t, err, "uninitialized pool reports sqrt price 0")

	_, err = PriceFromSqrtX96(big.NewInt(-1), 18, 6)
	assert.Error(t, err)

	tooWide := new(big.Int).Lsh(big.NewInt(1), 161)
	_, err = PriceFromSqrtX96(tooWide, 18, 6)
	assert.Error(t, err)
}

func TestPriceFromSqrtX96_SmallValuesKeepPrecision(t *testing.T) {
	// A tiny sqrt price must not collapse to zero through division rounding.
	price, err := PriceFromSqrtX96(big.NewInt(1_000_000), 18, 18)
	require.NoError(t, err)
	assert.True(t, price.IsPositive(), "got %s", price)
}
