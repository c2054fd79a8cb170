package oracle

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/dex-arb/internal/venue"
	"github.com/mselser95/dex-arb/pkg/cache"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

// slot0 carries seven fields on-chain; they are all statically sized, so
// declaring only the leading sqrtPriceX96 output decodes the first word and
// ignores the rest.
const slot0ABI = `[{"constant":true,"inputs":[],"name":"slot0","outputs":[{"name":"sqrtPriceX96","type":"uint160"}],"type":"function"}]`

const codeProbeTTL = 10 * time.Minute

// ChainReader is the read-only chain surface the oracle needs. Satisfied by
// ethclient.Client and by test fakes.
type ChainReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client reads the current price state of V3 pools and converts it into
// comparable decimal prices. Every failure mode is captured as an absent
// sample with a typed reason; a monitoring tick must complete even when a
// venue is unreachable. Retry policy belongs to the scheduler, not here.
type Client struct {
	reader ChainReader
	cache  cache.Cache
	logger *zap.Logger
	abi    abi.ABI
}

// Config holds oracle client configuration.
type Config struct {
	Reader ChainReader
	Cache  cache.Cache // caches pool code probes; may be nil
	Logger *zap.Logger
}

// New creates a price oracle client.
func New(cfg *Config) (*Client, error) {
	if cfg.Reader == nil {
		return nil, errors.New("chain reader cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	parsed, err := abi.JSON(strings.NewReader(slot0ABI))
	if err != nil {
		return nil, err
	}

	return &Client{
		reader: cfg.Reader,
		cache:  cfg.Cache,
		logger: cfg.Logger,
		abi:    parsed,
	}, nil
}

// FetchSample resolves the pair's pool on the venue and reads its current
// price. It never returns an error: absence with a typed reason is a normal
// result.
func (c *Client) FetchSample(ctx context.Context, v venue.Venue, pair types.AssetPair, tick uint64) types.PriceSample {
	start := time.Now()
	sample := c.fetch(ctx, v, pair, tick)
	FetchDurationSeconds.WithLabelValues(v.Name).Observe(time.Since(start).Seconds())

	if sample.Absent {
		SamplesTotal.WithLabelValues(v.Name, string(sample.Reason)).Inc()
	} else {
		SamplesTotal.WithLabelValues(v.Name, "present").Inc()
	}

	return sample
}

func (c *Client) fetch(ctx context.Context, v venue.Venue, pair types.AssetPair, tick uint64) types.PriceSample {
	pool := v.PoolAddress(pair)

	hasCode, reason := c.probeCode(ctx, v, pool)
	if reason != "" {
		return types.NewAbsentSample(v.Name, pair, tick, reason)
	}
	if !hasCode {
		c.logger.Debug("pool-has-no-code",
			zap.String("venue", v.Name),
			zap.String("pool", pool.Hex()))
		return types.NewAbsentSample(v.Name, pair, tick, types.ReasonPoolNotFound)
	}

	calldata, err := c.abi.Pack("slot0")
	if err != nil {
		c.logger.Error("pack-slot0-failed", zap.Error(err))
		return types.NewAbsentSample(v.Name, pair, tick, types.ReasonDecodeError)
	}

	raw, err := c.reader.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: calldata}, nil)
	if err != nil {
		reason := classifyCallError(err)
		c.logger.Warn("slot0-call-failed",
			zap.String("venue", v.Name),
			zap.String("pool", pool.Hex()),
			zap.String("reason", string(reason)),
			zap.Error(err))
		return types.NewAbsentSample(v.Name, pair, tick, reason)
	}

	out, err := c.abi.Unpack("slot0", raw)
	if err != nil || len(out) == 0 {
		c.logger.Warn("slot0-decode-failed",
			zap.String("venue", v.Name),
			zap.String("pool", pool.Hex()),
			zap.Error(err))
		return types.NewAbsentSample(v.Name, pair, tick, types.ReasonDecodeError)
	}

	sqrtPriceX96, ok := out[0].(*big.Int)
	if !ok {
		return types.NewAbsentSample(v.Name, pair, tick, types.ReasonDecodeError)
	}

	token0, token1 := pair.Ordered()

	price, err := PriceFromSqrtX96(sqrtPriceX96, token0.Decimals, token1.Decimals)
	if err != nil {
		c.logger.Warn("price-conversion-failed",
			zap.String("venue", v.Name),
			zap.String("pool", pool.Hex()),
			zap.Error(err))
		return types.NewAbsentSample(v.Name, pair, tick, types.ReasonDecodeError)
	}

	return types.NewPresentSample(v.Name, pair, tick, price)
}

// probeCode checks whether the derived pool address holds contract code.
// Positive and negative results are cached so steady-state ticks skip the
// extra round trip per venue.
func (c *Client) probeCode(ctx context.Context, v venue.Venue, pool common.Address) (hasCode bool, failure types.AbsentReason) {
	key := "pool-code:" + v.Name + ":" + pool.Hex()

	if c.cache != nil {
		if cached, found := c.cache.Get(key); found {
			if has, ok := cached.(bool); ok {
				return has, ""
			}
		}
	}

	code, err := c.reader.CodeAt(ctx, pool, nil)
	if err != nil {
		return false, types.ReasonNetworkError
	}

	hasCode = len(code) > 0
	if c.cache != nil {
		c.cache.Set(key, hasCode, codeProbeTTL)
	}

	return hasCode, ""
}

// classifyCallError separates an on-chain revert from a transport failure.
// go-ethereum surfaces revert payloads through the ErrorData accessor on the
// JSON-RPC error.
func classifyCallError(err error) types.AbsentReason {
	type dataError interface {
		ErrorData() interface{}
	}

	var de dataError
	if errors.As(err, &de) {
		return types.ReasonCallReverted
	}

	if strings.Contains(err.Error(), "execution reverted") {
		return types.ReasonCallReverted
	}

	return types.ReasonNetworkError
}
