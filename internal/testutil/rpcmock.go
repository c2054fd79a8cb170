package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockChain is an httptest server speaking just enough JSON-RPC for the
// chain client: eth_chainId, eth_getCode, eth_getBalance and eth_call.
// Contract state is configured per lowercase hex address.
type MockChain struct {
	*httptest.Server

	mu      sync.RWMutex
	chainID uint64
	code    map[string]string // address -> hex code
	callOut map[string]string // address -> hex eth_call result
	callErr map[string]string // address -> revert message
	balance map[string]string // address -> hex wei balance
}

// NewMockChain creates a mock chain endpoint serving the given chain ID.
func NewMockChain(chainID uint64) *MockChain {
	mock := &MockChain{
		chainID: chainID,
		code:    make(map[string]string),
		callOut: make(map[string]string),
		callErr: make(map[string]string),
		balance: make(map[string]string),
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// SetCode installs contract code at an address.
func (m *MockChain) SetCode(address, hexCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code[strings.ToLower(address)] = hexCode
}

// SetCallResult installs the eth_call response for an address.
func (m *MockChain) SetCallResult(address, hexResult string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callOut[strings.ToLower(address)] = hexResult
}

// SetCallRevert makes eth_call to an address fail with a revert message.
func (m *MockChain) SetCallRevert(address, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callErr[strings.ToLower(address)] = message
}

// SetBalance installs a native balance (hex wei) for an address.
func (m *MockChain) SetBalance(address, hexWei string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance[strings.ToLower(address)] = hexWei
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

func (m *MockChain) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch req.Method {
	case "eth_chainId":
		writeResult(w, req.ID, fmt.Sprintf("0x%x", m.chainID))

	case "eth_getCode":
		addr := m.paramAddress(req, 0)
		code, ok := m.code[addr]
		if !ok {
			code = "0x"
		}
		writeResult(w, req.ID, code)

	case "eth_getBalance":
		addr := m.paramAddress(req, 0)
		bal, ok := m.balance[addr]
		if !ok {
			bal = "0x0"
		}
		writeResult(w, req.ID, bal)

	case "eth_call":
		var call struct {
			To string `json:"to"`
		}
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &call)
		}
		to := strings.ToLower(call.To)

		if msg, reverts := m.callErr[to]; reverts {
			writeError(w, req.ID, 3, "execution reverted: "+msg)
			return
		}

		out, ok := m.callOut[to]
		if !ok {
			out = "0x"
		}
		writeResult(w, req.ID, out)

	default:
		writeError(w, req.ID, -32601, "method not found: "+req.Method)
	}
}

func (m *MockChain) paramAddress(req rpcRequest, idx int) string {
	if len(req.Params) <= idx {
		return ""
	}

	var addr string
	_ = json.Unmarshal(req.Params[idx], &addr)
	return strings.ToLower(addr)
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
