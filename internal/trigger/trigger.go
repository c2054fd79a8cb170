package trigger

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/mselser95/dex-arb/pkg/types"
	"go.uber.org/zap"
)

// Aave-style flash loan entry point on the lending pool.
const flashLoanABI = `[{"inputs":[{"name":"receiverAddress","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"params","type":"bytes"},{"name":"referralCode","type":"uint16"}],"name":"flashLoanSimple","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// TxSender submits signed transactions and observes their inclusion. The
// production implementation is pkg/chain.Submitter, which serializes nonce
// use for the signing identity.
type TxSender interface {
	Submit(ctx context.Context, to common.Address, calldata []byte) (*ethtypes.Transaction, error)
	WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
	ReplayForRevert(ctx context.Context, tx *ethtypes.Transaction, blockNumber *big.Int) error
}

// Guard gates execution on an external condition, such as the signer's gas
// balance. Implemented by circuitbreaker.GasGuard.
type Guard interface {
	IsEnabled() bool
}

// Executor hands qualifying spreads off to the external settlement contract
// through the lending pool's flash-loan entry point.
//
// At most one execution may be in flight per asset pair: a qualifying tick
// that arrives while a previous trigger for the same pair is pending resolves
// to Skipped rather than queueing or double-submitting.
type Executor struct {
	sender      TxSender
	lendingPool common.Address
	receiver    common.Address // settlement contract
	loanAsset   types.Asset
	loanAmount  *big.Int
	deadline    time.Duration
	guard       Guard
	logger      *zap.Logger
	abi         abi.ABI

	mu       sync.Mutex
	inflight map[string]struct{} // pair key -> pending execution
}

// Config holds executor configuration.
type Config struct {
	Sender      TxSender
	LendingPool common.Address
	Receiver    common.Address
	LoanAsset   types.Asset
	LoanAmount  *big.Int
	Deadline    time.Duration
	Guard       Guard // optional gas guard
	Logger      *zap.Logger
}

// New creates a flash-loan trigger executor.
func New(cfg *Config) (*Executor, error) {
	if cfg.Sender == nil {
		return nil, errors.New("tx sender cannot be nil")
	}

	if cfg.LendingPool == (common.Address{}) {
		return nil, errors.New("lending pool address cannot be zero")
	}

	if cfg.Receiver == (common.Address{}) {
		return nil, errors.New("settlement receiver address cannot be zero")
	}

	if cfg.LoanAmount == nil || cfg.LoanAmount.Sign() <= 0 {
		return nil, errors.New("loan amount must be positive")
	}

	if cfg.Deadline <= 0 {
		return nil, errors.New("deadline must be positive")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	parsed, err := abi.JSON(strings.NewReader(flashLoanABI))
	if err != nil {
		return nil, err
	}

	return &Executor{
		sender:      cfg.Sender,
		lendingPool: cfg.LendingPool,
		receiver:    cfg.Receiver,
		loanAsset:   cfg.LoanAsset,
		loanAmount:  new(big.Int).Set(cfg.LoanAmount),
		deadline:    cfg.Deadline,
		guard:       cfg.Guard,
		logger:      cfg.Logger,
		abi:         parsed,
		inflight:    make(map[string]struct{}),
	}, nil
}

// Trigger submits a flash-loan execution for a qualifying spread and reports
// the outcome. It blocks until the transaction is included, fails to submit,
// or ctx expires.
func (e *Executor) Trigger(ctx context.Context, result *types.SpreadResult) types.ExecutionOutcome {
	start := time.Now()
	outcome := e.trigger(ctx, result)
	ExecutionDurationSeconds.Observe(time.Since(start).Seconds())
	TriggersTotal.WithLabelValues(string(outcome.Status)).Inc()

	return outcome
}

func (e *Executor) trigger(ctx context.Context, result *types.SpreadResult) types.ExecutionOutcome {
	if e.guard != nil && !e.guard.IsEnabled() {
		e.logger.Warn("trigger-skipped-gas-guard",
			zap.String("pair", result.Pair.String()),
			zap.Uint64("tick", result.Tick))
		return types.ExecutionOutcome{Pair: result.Pair, Status: types.StatusSkipped}
	}

	key := result.Pair.Key()

	if !e.acquire(key) {
		e.logger.Info("trigger-skipped-in-flight",
			zap.String("pair", result.Pair.String()),
			zap.Uint64("tick", result.Tick))
		return types.ExecutionOutcome{Pair: result.Pair, Status: types.StatusSkipped}
	}
	defer e.release(key)

	req, err := NewRequest(result, e.loanAsset, e.loanAmount, e.deadline)
	if err != nil {
		return types.ExecutionOutcome{
			Pair:   result.Pair,
			Status: types.StatusSubmissionFailed,
			Err:    err,
		}
	}

	calldata, err := e.packFlashLoan(req)
	if err != nil {
		return types.ExecutionOutcome{
			RequestID: req.ID,
			Pair:      req.Pair,
			Status:    types.StatusSubmissionFailed,
			Err:       err,
		}
	}

	e.logger.Info("submitting-flash-loan",
		zap.String("request-id", req.ID),
		zap.String("pair", req.Pair.String()),
		zap.String("loan-asset", req.LoanAsset.Symbol),
		zap.String("loan-amount", req.LoanAmount.String()),
		zap.String("buy-venue", req.BuyVenue),
		zap.String("sell-venue", req.SellVenue))

	tx, err := e.sender.Submit(ctx, e.lendingPool, calldata)
	if err != nil {
		// The in-flight slot is released on return so a later tick may retry.
		e.logger.Error("flash-loan-submission-failed",
			zap.String("request-id", req.ID),
			zap.Error(err))
		return types.ExecutionOutcome{
			RequestID: req.ID,
			Pair:      req.Pair,
			Status:    types.StatusSubmissionFailed,
			Err:       err,
		}
	}

	receipt, err := e.sender.WaitMined(ctx, tx)
	if err != nil {
		e.logger.Error("flash-loan-inclusion-unobserved",
			zap.String("request-id", req.ID),
			zap.String("tx", tx.Hash().Hex()),
			zap.Error(err))
		return types.ExecutionOutcome{
			RequestID: req.ID,
			Pair:      req.Pair,
			Status:    types.StatusSubmissionFailed,
			TxHash:    tx.Hash(),
			Err:       err,
		}
	}

	if receipt.Status == ethtypes.ReceiptStatusSuccessful {
		e.logger.Info("flash-loan-confirmed",
			zap.String("request-id", req.ID),
			zap.String("tx", tx.Hash().Hex()),
			zap.Uint64("gas-used", receipt.GasUsed))
		return types.ExecutionOutcome{
			RequestID: req.ID,
			Pair:      req.Pair,
			Status:    types.StatusConfirmed,
			TxHash:    tx.Hash(),
			GasUsed:   receipt.GasUsed,
		}
	}

	// Included but failed on-chain: a gas loss, not a pipeline fault. Replay
	// the call at the inclusion block to recover the revert reason.
	reason := e.revertReason(ctx, tx, receipt)

	e.logger.Warn("flash-loan-reverted",
		zap.String("request-id", req.ID),
		zap.String("tx", tx.Hash().Hex()),
		zap.String("revert-reason", reason),
		zap.Uint64("gas-used", receipt.GasUsed))

	return types.ExecutionOutcome{
		RequestID:    req.ID,
		Pair:         req.Pair,
		Status:       types.StatusReverted,
		TxHash:       tx.Hash(),
		GasUsed:      receipt.GasUsed,
		RevertReason: reason,
	}
}

// InFlight reports whether an execution for the pair is currently pending.
func (e *Executor) InFlight(pair types.AssetPair) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, pending := e.inflight[pair.Key()]
	return pending
}

func (e *Executor) acquire(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, pending := e.inflight[key]; pending {
		return false
	}

	e.inflight[key] = struct{}{}
	return true
}

func (e *Executor) release(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, key)
}

// packFlashLoan encodes the flashLoanSimple calldata. The params bytes carry
// the routing hints the settlement contract needs; its internal swap logic is
// outside this pipeline's scope.
func (e *Executor) packFlashLoan(req *Request) ([]byte, error) {
	params, err := packRouteParams(req)
	if err != nil {
		return nil, err
	}

	return e.abi.Pack("flashLoanSimple",
		e.receiver,
		req.LoanAsset.Address,
		req.LoanAmount,
		params,
		uint16(0),
	)
}

// packRouteParams abi-encodes (token0, token1, fee, buyVenue, sellVenue,
// deadline) for the settlement contract.
func packRouteParams(req *Request) ([]byte, error) {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	uint24Ty, err := abi.NewType("uint24", "", nil)
	if err != nil {
		return nil, err
	}
	stringTy, err := abi.NewType("string", "", nil)
	if err != nil {
		return nil, err
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}

	token0, token1 := req.Pair.Ordered()

	args := abi.Arguments{
		{Type: addressTy},
		{Type: addressTy},
		{Type: uint24Ty},
		{Type: stringTy},
		{Type: stringTy},
		{Type: uint256Ty},
	}

	return args.Pack(
		token0.Address,
		token1.Address,
		big.NewInt(int64(req.Pair.Fee)),
		req.BuyVenue,
		req.SellVenue,
		big.NewInt(req.Deadline.Unix()),
	)
}
