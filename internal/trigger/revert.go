package trigger

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// revertReason replays a reverted transaction as a read-only call at its
// inclusion block and decodes the revert payload. Best effort: an empty
// string means the reason was not decodable, never that the revert did not
// happen.
func (e *Executor) revertReason(ctx context.Context, tx *ethtypes.Transaction, receipt *ethtypes.Receipt) string {
	err := e.sender.ReplayForRevert(ctx, tx, receipt.BlockNumber)
	if err == nil {
		// State moved between inclusion and replay; nothing to decode.
		return ""
	}

	return DecodeRevert(err)
}

// DecodeRevert extracts a human-readable revert reason from a call error.
// It understands the solidity Error(string) encoding carried in the JSON-RPC
// error data, and falls back to the conventional error-message suffix.
func DecodeRevert(err error) string {
	type dataError interface {
		ErrorData() interface{}
	}

	if de, ok := err.(dataError); ok {
		if hexData, ok := de.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(hexData); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("execution reverted:"):])
	}

	return ""
}
