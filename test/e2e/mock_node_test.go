// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-attest.
//
// sage-attest is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-attest is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-attest.  If not, see <https://www.gnu.org/licenses/>.

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/sage-x-project/sage-attest/pkg/abi"
	"github.com/sage-x-project/sage-attest/pkg/chain"
)

// onChainIntent is the state the mock node returns for one intent
type onChainIntent struct {
	depositor  common.Address
	solver     common.Address
	status     uint8
	fiatAmount uint64
}

// mockNode is a minimal JSON-RPC endpoint answering eth_call for the
// off-ramp V4 contract
type mockNode struct {
	t        *testing.T
	contract common.Address

	mu         sync.Mutex
	intents    map[common.Hash]onChainIntent
	authorized map[common.Address]bool
	calls      int
}

func newMockNode(t *testing.T, contract common.Address) (*mockNode, *httptest.Server) {
	n := &mockNode{
		t:          t,
		contract:   contract,
		intents:    make(map[common.Hash]onChainIntent),
		authorized: make(map[common.Address]bool),
	}
	srv := httptest.NewServer(n)
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *mockNode) setIntent(hash common.Hash, intent onChainIntent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents[hash] = intent
}

func (n *mockNode) authorize(solver common.Address) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.authorized[solver] = true
}

func (n *mockNode) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

func (n *mockNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "eth_call" || len(req.Params) != 2 {
		n.reply(w, req.ID, nil, &rpcErr{Code: -32600, Message: "invalid request"})
		return
	}
	var call struct {
		To   common.Address `json:"to"`
		Data hexutil.Bytes  `json:"data"`
	}
	if err := json.Unmarshal(req.Params[0], &call); err != nil || call.To != n.contract || len(call.Data) != 36 {
		n.reply(w, req.ID, nil, &rpcErr{Code: -32602, Message: "invalid params"})
		return
	}

	var selector abi.Selector
	copy(selector[:], call.Data[:4])
	arg := call.Data[4:]
	switch selector {
	case chain.OffRampV4{}.IntentSelector():
		intent := n.intents[common.BytesToHash(arg)]
		n.reply(w, req.ID, encodeV4(intent), nil)
	case chain.SelectorAuthorizedSolvers:
		var out [32]byte
		if n.authorized[common.BytesToAddress(arg)] {
			out[31] = 1
		}
		n.reply(w, req.ID, out[:], nil)
	default:
		n.reply(w, req.ID, nil, &rpcErr{Code: 3, Message: "execution reverted"})
	}
}

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (n *mockNode) reply(w http.ResponseWriter, id json.RawMessage, result []byte, e *rpcErr) {
	resp := map[string]any{"jsonrpc": "2.0", "id": id}
	if e != nil {
		resp["error"] = e
	} else {
		resp["result"] = hexutil.Encode(result)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// encodeV4 encodes a getIntent(bytes32) return tuple
func encodeV4(in onChainIntent) []byte {
	words := []*uint256.Int{
		uint256.NewInt(32),
		new(uint256.Int).SetBytes(in.depositor[:]),
		uint256.NewInt(1_000_000),
		uint256.NewInt(1),
		uint256.NewInt(uint64(in.status)),
		uint256.NewInt(1700000000),
		uint256.NewInt(1700000100),
		new(uint256.Int).SetBytes(in.solver[:]),
		uint256.NewInt(0),
		uint256.NewInt(in.fiatAmount),
	}
	var out []byte
	for _, w := range words {
		b := w.Bytes32()
		out = append(out, b[:]...)
	}
	return out
}
