package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/dex-arb/internal/venue"
	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader implements ChainReader with canned responses.
type fakeReader struct {
	code    []byte
	codeErr error
	result  []byte
	callErr error

	codeCalls int
	callCalls int
}

func (f *fakeReader) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	f.codeCalls++
	return f.code, f.codeErr
}

func (f *fakeReader) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.callCalls++
	return f.result, f.callErr
}

// revertError mimics go-ethereum's JSON-RPC data error for reverts.
type revertError struct{ data string }

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorData() interface{} { return e.data }

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func testVenue() venue.Venue {
	return venue.Venue{
		Name:         "uniswap",
		Factory:      common.HexToAddress("0xBA5973D0D236F7f03A8C3bd262375C2795F2c7B4"),
		Deployer:     common.HexToAddress("0xBA5973D0D236F7f03A8C3bd262375C2795F2c7B4"),
		InitCodeHash: common.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54"),
	}
}

func oraclePair(t *testing.T) types.AssetPair {
	t.Helper()

	weth, err := types.NewAsset(421614, "0x980B62Da83eFf3D4576C647993b0c1D7faf17c73", 18, "WETH")
	require.NoError(t, err)

	usdc, err := types.NewAsset(421614, "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", 6, "USDC")
	require.NoError(t, err)

	pair, err := types.NewAssetPair(weth, usdc, types.FeeMedium)
	require.NoError(t, err)

	return pair
}

func newTestClient(t *testing.T, reader ChainReader) *Client {
	t.Helper()

	client, err := New(&Config{
		Reader: reader,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return client
}

func TestFetchSample_PresentPrice(t *testing.T) {
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96) // raw price 1.0
	reader := &fakeReader{
		code:   []byte{0x60, 0x80},
		result: word(sqrt),
	}

	client := newTestClient(t, reader)
	sample := client.FetchSample(context.Background(), testVenue(), oraclePair(t), 7)

	require.False(t, sample.Absent)
	assert.Equal(t, "uniswap", sample.Venue)
	assert.Equal(t, uint64(7), sample.Tick)
	assert.True(t, sample.Price.IsPositive())
}

func TestFetchSample_PoolNotFound(t *testing.T) {
	reader := &fakeReader{code: nil}

	client := newTestClient(t, reader)
	sample := client.FetchSample(context.Background(), testVenue(), oraclePair(t), 1)

	require.True(t, sample.Absent)
	assert.Equal(t, types.ReasonPoolNotFound, sample.Reason)
	assert.Equal(t, 0, reader.callCalls, "no slot0 read without code at the pool address")
}

func TestFetchSample_NetworkErrors(t *testing.T) {
	t.Run("code-probe-fails", func(t *testing.T) {
		reader := &fakeReader{codeErr: errors.New("connection refused")}

		sample := newTestClient(t, reader).FetchSample(context.Background(), testVenue(), oraclePair(t), 1)
		require.True(t, sample.Absent)
		assert.Equal(t, types.ReasonNetworkError, sample.Reason)
	})

	t.Run("call-fails", func(t *testing.T) {
		reader := &fakeReader{
			code:    []byte{0x60},
			callErr: errors.New("i/o timeout"),
		}

		sample := newTestClient(t, reader).FetchSample(context.Background(), testVenue(), oraclePair(t), 1)
		require.True(t, sample.Absent)
		assert.Equal(t, types.ReasonNetworkError, sample.Reason)
	})
}

func TestFetchSample_CallReverted(t *testing.T) {
	reader := &fakeReader{
		code:    []byte{0x60},
		callErr: &revertError{data: "0x08c379a0"},
	}

	sample := newTestClient(t, reader).FetchSample(context.Background(), testVenue(), oraclePair(t), 1)
	require.True(t, sample.Absent)
	assert.Equal(t, types.ReasonCallReverted, sample.Reason)
}

func TestFetchSample_DecodeErrors(t *testing.T) {
	t.Run("short-response", func(t *testing.T) {
		reader := &fakeReader{
			code:   []byte{0x60},
			result: []byte{0x01, 0x02},
		}

		sample := newTestClient(t, reader).FetchSample(context.Background(), testVenue(), oraclePair(t), 1)
		require.True(t, sample.Absent)
		assert.Equal(t, types.ReasonDecodeError, sample.Reason)
	})

	t.Run("uninitialized-pool", func(t *testing.T) {
		reader := &fakeReader{
			code:   []byte{0x60},
			result: word(big.NewInt(0)),
		}

		sample := newTestClient(t, reader).FetchSample(context.Background(), testVenue(), oraclePair(t), 1)
		require.True(t, sample.Absent)
		assert.Equal(t, types.ReasonDecodeError, sample.Reason)
	})
}

func TestClassifyCallError(t *testing.T) {
	assert.Equal(t, types.ReasonCallReverted, classifyCallError(&revertError{}))
	assert.Equal(t, types.ReasonCallReverted, classifyCallError(errors.New("execution reverted: nope")))
	assert.Equal(t, types.ReasonNetworkError, classifyCallError(errors.New("dial tcp: timeout")))
}
