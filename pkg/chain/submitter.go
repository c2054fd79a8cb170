package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const (
	defaultGasLimit    = 1_500_000
	receiptPollBackoff = 2 * time.Second
)

// Submitter signs and sends transactions for one account. Submissions are
// serialized: the account's nonce state is exclusive, so no two triggers may
// race for the same nonce.
type Submitter struct {
	client   *Client
	key      *ecdsa.PrivateKey
	from     common.Address
	gasLimit uint64
	logger   *zap.Logger

	mu sync.Mutex // guards nonce acquisition + send as one unit
}

// SubmitterConfig holds transaction submitter configuration.
type SubmitterConfig struct {
	Client     *Client
	PrivateKey *ecdsa.PrivateKey
	GasLimit   uint64 // optional, defaults to a flash-loan-sized limit
	Logger     *zap.Logger
}

// NewSubmitter creates a serialized transaction submitter.
func NewSubmitter(cfg *SubmitterConfig) (*Submitter, error) {
	if cfg.Client == nil {
		return nil, errors.New("chain client cannot be nil")
	}

	if cfg.PrivateKey == nil {
		return nil, errors.New("private key cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return &Submitter{
		client:   cfg.Client,
		key:      cfg.PrivateKey,
		from:     crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey),
		gasLimit: gasLimit,
		logger:   cfg.Logger,
	}, nil
}

// From returns the submitting account address.
func (s *Submitter) From() common.Address {
	return s.from
}

// Submit signs and broadcasts a transaction to the target contract. The
// pending nonce is read and consumed under the submitter lock.
func (s *Submitter) Submit(ctx context.Context, to common.Address, calldata []byte) (*ethtypes.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.client.eth.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := s.client.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	tx := ethtypes.NewTransaction(nonce, to, big.NewInt(0), s.gasLimit, gasPrice, calldata)

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(s.client.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	start := time.Now()
	err = s.client.eth.SendTransaction(ctx, signed)
	observeRPC("eth_sendRawTransaction", start, err)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	SubmissionsTotal.Inc()
	s.logger.Info("transaction-submitted",
		zap.String("tx", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.String("to", to.Hex()))

	return signed, nil
}

// WaitMined polls for the transaction receipt until inclusion or ctx expiry.
func (s *Submitter) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(receiptPollBackoff)
	defer ticker.Stop()

	for {
		receipt, err := s.client.eth.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}

		if !errors.Is(err, ethereum.NotFound) {
			s.logger.Debug("receipt-poll-failed",
				zap.String("tx", tx.Hash().Hex()),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ReplayForRevert re-executes a mined transaction as a read-only call at its
// inclusion block. A nil return means the replay succeeded; otherwise the
// error carries the revert payload for decoding.
func (s *Submitter) ReplayForRevert(ctx context.Context, tx *ethtypes.Transaction, blockNumber *big.Int) error {
	msg := ethereum.CallMsg{
		From:     s.from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}

	_, err := s.client.CallContract(ctx, msg, blockNumber)
	return err
}
