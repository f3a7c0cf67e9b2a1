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

package chain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-attest/pkg/abi"
	"github.com/sage-x-project/sage-attest/pkg/attesterr"
	"github.com/sage-x-project/sage-attest/pkg/transport"
)

var (
	testContract  = common.HexToAddress("0x34249F4AB741F0661A38651A08213DDe1469b60f")
	testDepositor = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSolver    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherSolver   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testHash      = common.HexToHash("0x01")
)

// mockTransport answers eth_call by selector
type mockTransport struct {
	mu         sync.Mutex
	intentData []byte
	authorized bool
	authData   []byte
	err        error
	calls      []callMsg
}

func (m *mockTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	p := params.([]any)
	msg := p[0].(callMsg)
	m.calls = append(m.calls, msg)

	data, _ := hexutil.Decode(msg.Data)
	var out []byte
	switch {
	case strings.HasPrefix(msg.Data, SelectorAuthorizedSolvers.Hex()):
		out = m.authData
		if out == nil {
			word := make([]byte, abi.WordSize)
			if m.authorized {
				word[abi.WordSize-1] = 1
			}
			out = word
		}
	case len(data) == 4+abi.WordSize:
		out = m.intentData
	}
	return json.Marshal(hexutil.Encode(out))
}

func word(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}

func addrWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), abi.WordSize)
}

// buildV4Response encodes a getIntent(bytes32) return value
func buildV4Response(depositor, solver common.Address, usdc, fiatCents uint64, status uint8) []byte {
	var out []byte
	out = append(out, word(32)...)
	out = append(out, addrWord(depositor)...)
	out = append(out, word(usdc)...)
	out = append(out, word(1)...) // EUR
	out = append(out, word(uint64(status))...)
	out = append(out, word(1700000000)...)
	out = append(out, word(1700000100)...)
	out = append(out, addrWord(solver)...)
	out = append(out, word(0)...)
	out = append(out, word(fiatCents)...)
	return out
}

// buildV3Response encodes an intents(bytes32) return value
func buildV3Response(owner, solver common.Address, amount uint64, status uint8) []byte {
	var out []byte
	out = append(out, addrWord(owner)...)
	out = append(out, addrWord(solver)...)
	out = append(out, word(amount)...)
	out = append(out, word(uint64(status))...)
	return out
}

func TestSchemaSelectors(t *testing.T) {
	assert.Equal(t, abi.SelectorOf("intents(bytes32)"), OffRampV3{}.IntentSelector())
	assert.Equal(t, abi.SelectorOf("getIntent(bytes32)"), OffRampV4{}.IntentSelector())
	assert.Equal(t, "0x9672fb2e", SelectorAuthorizedSolvers.Hex())
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("V3")
	require.NoError(t, err)
	assert.Equal(t, "v3", s.Name())

	s, err = ParseSchema("offramp-v4")
	require.NoError(t, err)
	assert.Equal(t, "v4", s.Name())

	_, err = ParseSchema("v5")
	assert.Error(t, err)
}

func TestOffRampV4_Decode(t *testing.T) {
	data := buildV4Response(testDepositor, testSolver, 100_000_000, 10000, 2)

	intent, found, err := OffRampV4{}.Decode(data)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, testDepositor, intent.Owner)
	assert.Equal(t, testSolver, intent.Solver)
	assert.Equal(t, uint64(100_000_000), intent.Amount.Uint64())
	assert.Equal(t, uint64(10000), intent.FiatAmount.Uint64())
	assert.Equal(t, uint8(2), intent.Status)
	assert.Equal(t, uint8(1), intent.Currency)
	assert.True(t, intent.HasCurrency)
	assert.Equal(t, uint64(1700000000), intent.CreatedAt)
	assert.Equal(t, uint64(1700000100), intent.CommittedAt)
	assert.Equal(t, "Committed", OffRampV4{}.StatusName(intent.Status))
}

func TestOffRampV4_DecodeNotFound(t *testing.T) {
	// Test Case 1: short response
	_, found, err := OffRampV4{}.Decode(make([]byte, V4MinLength-1))
	require.NoError(t, err)
	assert.False(t, found)

	// Test Case 2: zero depositor
	_, found, err = OffRampV4{}.Decode(buildV4Response(common.Address{}, testSolver, 1, 1, 2))
	require.NoError(t, err)
	assert.False(t, found)

	// Test Case 3: offset word pointing past the fields
	data := buildV4Response(testDepositor, testSolver, 1, 1, 2)
	copy(data[:abi.WordSize], word(64))
	_, found, err = OffRampV4{}.Decode(data)
	require.NoError(t, err)
	assert.False(t, found)

	// Test Case 4: garbage offset word
	copy(data[:abi.WordSize], word(1<<40))
	_, _, err = OffRampV4{}.Decode(data)
	var de *abi.DecodeError
	assert.ErrorAs(t, err, &de)

	// Test Case 5: offset word pointing back into itself
	for _, off := range []uint64{0, 16} {
		copy(data[:abi.WordSize], word(off))
		_, found, err = OffRampV4{}.Decode(data)
		assert.ErrorAs(t, err, &de, "offset %d", off)
		assert.False(t, found)
	}
}

func TestOffRampV3_Decode(t *testing.T) {
	intent, found, err := OffRampV3{}.Decode(buildV3Response(testDepositor, testSolver, 5000, 1))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testDepositor, intent.Owner)
	assert.Equal(t, testSolver, intent.Solver)
	assert.Equal(t, uint64(5000), intent.Amount.Uint64())
	assert.Equal(t, uint8(1), intent.Status)
	assert.True(t, intent.FiatAmount.IsZero())
	assert.False(t, intent.HasCurrency)

	_, found, err = OffRampV3{}.Decode(make([]byte, 127))
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = OffRampV3{}.Decode(buildV3Response(common.Address{}, testSolver, 5000, 1))
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, "Unknown(9)", OffRampV3{}.StatusName(9))
}

func TestClient_GetIntentCalldata(t *testing.T) {
	mt := &mockTransport{intentData: buildV4Response(testDepositor, testSolver, 1, 1, 2)}
	c := NewClient(mt, testContract, OffRampV4{})

	intent, found, err := c.GetIntent(context.Background(), testHash)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testHash, intent.Hash)

	require.Len(t, mt.calls, 1)
	assert.Equal(t, testContract.Hex(), mt.calls[0].To)
	assert.Equal(t, "0xf13c46aa0000000000000000000000000000000000000000000000000000000000000001", mt.calls[0].Data)
}

func TestClient_IsSolverAuthorized(t *testing.T) {
	mt := &mockTransport{authorized: true}
	c := NewClient(mt, testContract, OffRampV4{})

	ok, err := c.IsSolverAuthorized(context.Background(), testSolver)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0x9672fb2e0000000000000000000000002222222222222222222222222222222222222222", mt.calls[0].Data)

	// short result is treated as not authorized
	mt.authData = []byte{0x01}
	ok, err = c.IsSolverAuthorized(context.Background(), testSolver)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_TransportErrorsAreDistinct(t *testing.T) {
	mt := &mockTransport{err: &transport.RPCError{Code: -32000, Message: "header not found"}}
	c := NewClient(mt, testContract, OffRampV4{})

	_, found, err := c.GetIntent(context.Background(), testHash)
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, attesterr.KindChainTransport, attesterr.KindOf(err))

	var rpcErr *transport.RPCError
	assert.True(t, errors.As(err, &rpcErr))

	err = c.ValidateIntent(context.Background(), testHash, testSolver, 100)
	assert.Equal(t, attesterr.KindChainTransport, attesterr.KindOf(err))
}

func TestClient_ValidateIntent(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		authorized bool
		solver     common.Address
		claimed    int64
		wantErr    string
	}{
		{
			name:       "valid committed intent",
			data:       buildV4Response(testDepositor, testSolver, 100_000_000, 10000, 2),
			authorized: true,
			solver:     testSolver,
			claimed:    10000,
		},
		{
			name:    "intent does not exist",
			data:    buildV4Response(common.Address{}, testSolver, 0, 0, 0),
			solver:  testSolver,
			wantErr: "Intent does not exist on-chain",
		},
		{
			name:    "empty result",
			data:    nil,
			solver:  testSolver,
			wantErr: "Intent does not exist on-chain",
		},
		{
			name:       "not committed",
			data:       buildV4Response(testDepositor, testSolver, 1, 10000, 3),
			authorized: true,
			solver:     testSolver,
			wantErr:    "Intent is not active (status: Fulfilled)",
		},
		{
			name:       "solver mismatch",
			data:       buildV4Response(testDepositor, testSolver, 1, 10000, 2),
			authorized: true,
			solver:     otherSolver,
			wantErr:    "Solver mismatch: intent assigned to 0x2222222222222222222222222222222222222222, request from 0x3333333333333333333333333333333333333333",
		},
		{
			name:       "unassigned intent accepts any authorized solver",
			data:       buildV4Response(testDepositor, common.Address{}, 1, 0, 2),
			authorized: true,
			solver:     otherSolver,
			claimed:    1,
		},
		{
			name:       "unauthorized solver",
			data:       buildV4Response(testDepositor, testSolver, 1, 10000, 2),
			authorized: false,
			solver:     testSolver,
			claimed:    10000,
			wantErr:    "Solver 0x2222222222222222222222222222222222222222 is not authorized",
		},
		{
			name:       "underpayment",
			data:       buildV4Response(testDepositor, testSolver, 1, 10000, 2),
			authorized: true,
			solver:     testSolver,
			claimed:    9999,
			wantErr:    "Amount mismatch: proof shows 9999 cents paid, but solver committed to 10000 cents on-chain",
		},
		{
			name:       "negative claim",
			data:       buildV4Response(testDepositor, testSolver, 1, 10000, 2),
			authorized: true,
			solver:     testSolver,
			claimed:    -1,
			wantErr:    "Amount mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mt := &mockTransport{intentData: tt.data, authorized: tt.authorized}
			c := NewClient(mt, testContract, OffRampV4{})

			// Execute
			err := c.ValidateIntent(context.Background(), testHash, tt.solver, tt.claimed)

			// Assert
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, attesterr.KindBusinessRejection, attesterr.KindOf(err))
		})
	}
}

func TestClient_ValidateIntentZeroCommittedSkipsAmount(t *testing.T) {
	mt := &mockTransport{
		intentData: buildV4Response(testDepositor, testSolver, 1, 0, 2),
		authorized: true,
	}
	c := NewClient(mt, testContract, OffRampV4{})

	for _, claimed := range []int64{-5, 0, 1, 10000, 1 << 40} {
		assert.NoError(t, c.ValidateIntent(context.Background(), testHash, testSolver, claimed))
	}
}

func TestClient_ValidateIntentAmountThreshold(t *testing.T) {
	pairs := []struct{ proof, committed uint64 }{
		{10000, 10000}, {10500, 10000}, {9999, 10000}, {1, 2}, {2, 1}, {1 << 50, 1 << 50}, {(1 << 50) - 1, 1 << 50},
	}

	for _, p := range pairs {
		mt := &mockTransport{
			intentData: buildV4Response(testDepositor, testSolver, 1, p.committed, 2),
			authorized: true,
		}
		c := NewClient(mt, testContract, OffRampV4{})

		err := c.ValidateIntent(context.Background(), testHash, testSolver, int64(p.proof))
		if p.proof >= p.committed {
			assert.NoError(t, err, "proof %d committed %d", p.proof, p.committed)
		} else {
			assert.Error(t, err, "proof %d committed %d", p.proof, p.committed)
		}
	}
}

func TestClient_ValidateIntentV3(t *testing.T) {
	mt := &mockTransport{
		intentData: buildV3Response(testDepositor, testSolver, 5000, 1),
		authorized: true,
	}
	c := NewClient(mt, testContract, OffRampV3{})

	// no fiat commitment in V3, any claim passes
	require.NoError(t, c.ValidateIntent(context.Background(), testHash, testSolver, 1))
	assert.True(t, strings.HasPrefix(mt.calls[0].Data, "0x9021578a"))

	mt.intentData = buildV3Response(testDepositor, testSolver, 5000, 2)
	err := c.ValidateIntent(context.Background(), testHash, testSolver, 1)
	assert.EqualError(t, err, "Intent is not active (status: Fulfilled)")
}

func TestClient_FiatUnits(t *testing.T) {
	// Test Case 1: currency mismatch
	mt := &mockTransport{
		intentData: buildV4Response(testDepositor, testSolver, 1, 10000, 2),
		authorized: true,
	}
	c := NewClient(mt, testContract, OffRampV4{}, WithFiatUnits(FiatUnits{Currency: 2, Decimals: 2}))
	err := c.ValidateIntent(context.Background(), testHash, testSolver, 10000)
	assert.ErrorContains(t, err, "Currency mismatch")

	// Test Case 2: 6-decimal fiat amounts round up to the next cent
	mt.intentData = buildV4Response(testDepositor, testSolver, 1, 100_000_001, 2)
	c = NewClient(mt, testContract, OffRampV4{}, WithFiatUnits(FiatUnits{Currency: 1, Decimals: 6}))
	assert.ErrorContains(t, c.ValidateIntent(context.Background(), testHash, testSolver, 10000),
		"committed to 10001 cents")
	assert.NoError(t, c.ValidateIntent(context.Background(), testHash, testSolver, 10001))

	// Test Case 3: whole-unit fiat amounts
	mt.intentData = buildV4Response(testDepositor, testSolver, 1, 100, 2)
	c = NewClient(mt, testContract, OffRampV4{}, WithFiatUnits(FiatUnits{Decimals: 0}))
	assert.NoError(t, c.ValidateIntent(context.Background(), testHash, testSolver, 10000))
	assert.Error(t, c.ValidateIntent(context.Background(), testHash, testSolver, 9999))
}
