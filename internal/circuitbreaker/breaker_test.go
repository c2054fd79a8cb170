package circuitbreaker

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	mu      sync.Mutex
	balance *big.Int
	err     error
}

func (f *fakeFetcher) NativeBalance(_ context.Context, _ common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeFetcher) set(balance *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance = balance
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func newTestGuard(t *testing.T, fetcher BalanceFetcher) *GasGuard {
	t.Helper()

	guard, err := New(&Config{
		CheckInterval: time.Minute,
		DisableBelow:  ether(1),
		EnableAbove:   ether(2),
		Fetcher:       fetcher,
		Address:       common.HexToAddress("0x00000000000000000000000000000000000000cc"),
		Logger:        zap.NewNop(),
	})
	require.NoError(t, err)

	return guard
}

func TestNew_Validation(t *testing.T) {
	fetcher := &fakeFetcher{balance: ether(5)}
	logger := zap.NewNop()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"nil fetcher", &Config{CheckInterval: time.Minute, DisableBelow: ether(1), EnableAbove: ether(2), Logger: logger}},
		{"nil logger", &Config{CheckInterval: time.Minute, DisableBelow: ether(1), EnableAbove: ether(2), Fetcher: fetcher}},
		{"zero interval", &Config{DisableBelow: ether(1), EnableAbove: ether(2), Fetcher: fetcher, Logger: logger}},
		{"zero floor", &Config{CheckInterval: time.Minute, DisableBelow: big.NewInt(0), EnableAbove: ether(2), Fetcher: fetcher, Logger: logger}},
		{"enable below floor", &Config{CheckInterval: time.Minute, DisableBelow: ether(2), EnableAbove: ether(1), Fetcher: fetcher, Logger: logger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestGasGuard_StartsEnabled(t *testing.T) {
	guard := newTestGuard(t, &fakeFetcher{balance: ether(5)})
	assert.True(t, guard.IsEnabled())
}

func TestGasGuard_DisablesBelowFloor(t *testing.T) {
	fetcher := &fakeFetcher{balance: big.NewInt(5e17)} // 0.5 ether
	guard := newTestGuard(t, fetcher)

	require.NoError(t, guard.CheckBalance(context.Background()))
	assert.False(t, guard.IsEnabled())
}

func TestGasGuard_Hysteresis(t *testing.T) {
	fetcher := &fakeFetcher{balance: big.NewInt(5e17)}
	guard := newTestGuard(t, fetcher)

	require.NoError(t, guard.CheckBalance(context.Background()))
	require.False(t, guard.IsEnabled())

	// Back above the floor but below the enable level: stays disabled.
	fetcher.set(new(big.Int).Add(ether(1), big.NewInt(1)))
	require.NoError(t, guard.CheckBalance(context.Background()))
	assert.False(t, guard.IsEnabled(), "must not flap between the thresholds")

	// At the enable level: re-enables.
	fetcher.set(ether(2))
	require.NoError(t, guard.CheckBalance(context.Background()))
	assert.True(t, guard.IsEnabled())
}

func TestGasGuard_FetchErrorKeepsState(t *testing.T) {
	fetcher := &fakeFetcher{balance: ether(5)}
	guard := newTestGuard(t, fetcher)

	require.NoError(t, guard.CheckBalance(context.Background()))
	require.True(t, guard.IsEnabled())

	fetcher.mu.Lock()
	fetcher.err = errors.New("rpc unavailable")
	fetcher.mu.Unlock()

	err := guard.CheckBalance(context.Background())
	assert.Error(t, err)
	assert.True(t, guard.IsEnabled(), "transient fetch failure must not disable triggering")
}

func TestGasGuard_GetStatus(t *testing.T) {
	fetcher := &fakeFetcher{balance: ether(3)}
	guard := newTestGuard(t, fetcher)

	require.NoError(t, guard.CheckBalance(context.Background()))

	status := guard.GetStatus()
	assert.True(t, status.Enabled)
	assert.Equal(t, 0, status.LastBalance.Cmp(ether(3)))
	assert.Equal(t, 0, status.DisableBelow.Cmp(ether(1)))
	assert.Equal(t, 0, status.EnableAbove.Cmp(ether(2)))
	assert.False(t, status.LastCheck.IsZero())
}
