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
	"fmt"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/sage-x-project/sage-attest/pkg/abi"
	"github.com/sage-x-project/sage-attest/pkg/attesterr"
	"github.com/sage-x-project/sage-attest/pkg/transport"
)

// CentsDecimals is the number of fractional digits in a cent amount.
const CentsDecimals = 2

// FiatUnits describes how the contract denominates committed fiat amounts.
type FiatUnits struct {
	// Currency is the expected on-chain currency code. Zero disables the
	// currency check.
	Currency uint8
	// Decimals is the number of fractional digits of on-chain fiat amounts.
	Decimals uint8
}

// Client reads intents from an off-ramp contract.
type Client struct {
	transport transport.Transport
	contract  common.Address
	schema    IntentSchema
	fiat      FiatUnits
	log       slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithFiatUnits sets the on-chain fiat denomination.
func WithFiatUnits(units FiatUnits) Option {
	return func(c *Client) {
		c.fiat = units
	}
}

// NewClient creates a chain client for contract, decoding intents with schema.
func NewClient(t transport.Transport, contract common.Address, schema IntentSchema, opts ...Option) *Client {
	c := &Client{
		transport: t,
		contract:  contract,
		schema:    schema,
		fiat:      FiatUnits{Decimals: CentsDecimals},
		log:       slog.Disabled,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema returns the configured intent schema.
func (c *Client) Schema() IntentSchema {
	return c.schema
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// ethCall runs eth_call against the contract at the latest block.
func (c *Client) ethCall(ctx context.Context, data []byte) ([]byte, error) {
	params := []any{
		callMsg{To: c.contract.Hex(), Data: hexutil.Encode(data)},
		"latest",
	}

	raw, err := c.transport.Call(ctx, "eth_call", params)
	if err != nil {
		return nil, attesterr.New(attesterr.KindChainTransport, "eth_call failed", err)
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, attesterr.New(attesterr.KindChainTransport, "eth_call returned a non-string result", err)
	}
	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, attesterr.New(attesterr.KindChainTransport, "eth_call returned invalid hex", err)
	}
	return out, nil
}

// GetIntent fetches the intent stored under hash. found is false when the
// contract has no such intent.
func (c *Client) GetIntent(ctx context.Context, hash common.Hash) (*Intent, bool, error) {
	data, err := c.ethCall(ctx, abi.EncodeCall(c.schema.IntentSelector(), abi.Bytes32Arg(hash)))
	if err != nil {
		return nil, false, err
	}

	intent, found, err := c.schema.Decode(data)
	if err != nil {
		return nil, false, attesterr.New(attesterr.KindChainTransport,
			fmt.Sprintf("cannot decode %s intent", c.schema.Name()), err)
	}
	if !found {
		return nil, false, nil
	}
	intent.Hash = hash
	return intent, true, nil
}

// IsSolverAuthorized reports whether the contract lists solver as authorized.
func (c *Client) IsSolverAuthorized(ctx context.Context, solver common.Address) (bool, error) {
	data, err := c.ethCall(ctx, abi.EncodeCall(SelectorAuthorizedSolvers, abi.AddressArg(solver)))
	if err != nil {
		return false, err
	}
	if len(data) < abi.WordSize {
		return false, nil
	}
	return abi.Bool(data, 0)
}

// ValidateIntent checks that the intent under hash can be settled by solver
// for a payment of claimedCents. Checks run in order and stop at the first
// failure.
func (c *Client) ValidateIntent(ctx context.Context, hash common.Hash, solver common.Address, claimedCents int64) error {
	c.log.Debugf("Validating intent %s for solver %s", hash.Hex(), solver.Hex())

	intent, found, err := c.GetIntent(ctx, hash)
	if err != nil {
		return err
	}
	if !found {
		return attesterr.Rejected("Intent does not exist on-chain")
	}

	if intent.Status != c.schema.ReadyStatus() {
		return attesterr.Rejected("Intent is not active (status: %s)", c.schema.StatusName(intent.Status))
	}

	if intent.Solver != (common.Address{}) && intent.Solver != solver {
		return attesterr.Rejected("Solver mismatch: intent assigned to %s, request from %s",
			intent.Solver.Hex(), solver.Hex())
	}

	authorized, err := c.IsSolverAuthorized(ctx, solver)
	if err != nil {
		return err
	}
	if !authorized {
		c.log.Warnf("SECURITY: unauthorized solver %s attempted attestation for intent %s",
			solver.Hex(), hash.Hex())
		return attesterr.Rejected("Solver %s is not authorized", solver.Hex())
	}

	if c.fiat.Currency != 0 && intent.HasCurrency && intent.Currency != c.fiat.Currency {
		return attesterr.Rejected("Currency mismatch: intent settles in currency %d, expected %d",
			intent.Currency, c.fiat.Currency)
	}

	committed := c.committedCents(intent)
	if committed.IsZero() {
		c.log.Debugf("Intent %s has no committed fiat amount, skipping amount check", hash.Hex())
		return nil
	}
	if claimedCents < 0 || uint256.NewInt(uint64(claimedCents)).Lt(committed) {
		return attesterr.Rejected("Amount mismatch: proof shows %d cents paid, but solver committed to %s cents on-chain",
			claimedCents, committed.Dec())
	}

	return nil
}

// committedCents converts the intent's fiat amount to cents, rounding up so
// that a conversion never lowers what the solver owes.
func (c *Client) committedCents(intent *Intent) *uint256.Int {
	if intent.FiatAmount == nil {
		return new(uint256.Int)
	}
	amount := new(uint256.Int).Set(intent.FiatAmount)

	switch d := int(c.fiat.Decimals); {
	case d > CentsDecimals:
		scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(d-CentsDecimals)))
		rem := new(uint256.Int)
		amount.DivMod(amount, scale, rem)
		if !rem.IsZero() {
			amount.AddUint64(amount, 1)
		}
	case d < CentsDecimals:
		scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(CentsDecimals-d)))
		amount.Mul(amount, scale)
	}
	return amount
}
