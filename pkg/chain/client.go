package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const erc20ReadABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

// Client wraps the shared read-only JSON-RPC connection. It is safe for
// concurrent use: all venue fetches within a tick go through one client and
// the sampling phase writes no shared state.
type Client struct {
	eth     *ethclient.Client
	rpcURL  string
	chainID *big.Int
	network string
	logger  *zap.Logger
}

// Config holds chain client configuration.
type Config struct {
	RPCURL      string
	ChainID     uint64
	NetworkName string
	DialTimeout time.Duration
	Logger      *zap.Logger
}

// Dial connects to the RPC endpoint and verifies it serves the expected
// chain. A chain-ID mismatch is a configuration error and fails fast.
func Dial(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpc url cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 15 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	eth, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	chainID, err := eth.ChainID(dialCtx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	want := new(big.Int).SetUint64(cfg.ChainID)
	if chainID.Cmp(want) != 0 {
		eth.Close()
		return nil, fmt.Errorf("chain id mismatch: endpoint serves %s, configured %s (%s)",
			chainID, want, cfg.NetworkName)
	}

	cfg.Logger.Info("chain-connected",
		zap.String("network", cfg.NetworkName),
		zap.Uint64("chain-id", cfg.ChainID))

	return &Client{
		eth:     eth,
		rpcURL:  cfg.RPCURL,
		chainID: chainID,
		network: cfg.NetworkName,
		logger:  cfg.Logger,
	}, nil
}

// ChainID returns the verified chain identifier.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// CodeAt returns the contract code at the given address.
func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	code, err := c.eth.CodeAt(ctx, account, blockNumber)
	observeRPC("eth_getCode", start, err)
	return code, err
}

// CallContract executes a read-only contract call.
func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	out, err := c.eth.CallContract(ctx, call, blockNumber)
	observeRPC("eth_call", start, err)
	return out, err
}

// NativeBalance returns the native-asset balance of an account in wei.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	start := time.Now()
	bal, err := c.eth.BalanceAt(ctx, account, nil)
	observeRPC("eth_getBalance", start, err)
	if err != nil {
		return nil, fmt.Errorf("get native balance: %w", err)
	}
	return bal, nil
}

// ERC20Balance returns an account's balance of an ERC-20 token in the
// token's smallest units.
func (c *Client) ERC20Balance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ReadABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	data, err := parsed.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	raw, err := c.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	return new(big.Int).SetBytes(raw), nil
}

// Eth exposes the underlying ethclient for collaborators that need the full
// surface (transaction submission, receipt polling).
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
	c.logger.Info("chain-connection-closed", zap.String("network", c.network))
}
