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
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/sage-x-project/sage-attest/pkg/abi"
)

// Intent is an on-chain settlement record as read through an IntentSchema.
type Intent struct {
	Hash common.Hash

	// Owner is the intent owner (V3) or depositor (V4). Zero means the
	// intent does not exist.
	Owner common.Address
	// Solver is the assigned or selected solver, zero when unassigned.
	Solver common.Address
	// Amount is the token amount locked by the intent.
	Amount *uint256.Int
	Status uint8

	// FiatAmount is the fiat amount the solver committed to, in the
	// contract's fiat units. Zero when unset or not tracked by the schema.
	FiatAmount *uint256.Int
	// Currency is the on-chain currency code. Only meaningful when
	// HasCurrency is set.
	Currency    uint8
	HasCurrency bool

	CreatedAt   uint64
	CommittedAt uint64
}

// IntentSchema describes one deployed off-ramp contract version.
type IntentSchema interface {
	// Name identifies the schema in configuration and logs.
	Name() string
	// IntentSelector is the selector of the intent getter.
	IntentSelector() abi.Selector
	// ReadyStatus is the status value of an intent that can be fulfilled.
	ReadyStatus() uint8
	// StatusName renders a status value for error messages.
	StatusName(status uint8) string
	// Decode parses the getter's return data. It reports found=false when
	// the data is shorter than the schema minimum or the owner is zero.
	Decode(data []byte) (intent *Intent, found bool, err error)
}

// Selectors shared by every schema.
var (
	SelectorAuthorizedSolvers = abi.SelectorOf("authorizedSolvers(address)")
)

// ParseSchema returns the schema registered under name.
func ParseSchema(name string) (IntentSchema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "v3", "offramp-v3":
		return OffRampV3{}, nil
	case "v4", "offramp-v4", "":
		return OffRampV4{}, nil
	default:
		return nil, fmt.Errorf("unknown intent schema %q (want v3 or v4)", name)
	}
}

func statusName(names []string, status uint8) string {
	if int(status) < len(names) {
		return names[status]
	}
	return fmt.Sprintf("Unknown(%d)", status)
}

// OffRampV3 is the fixed-offset struct returned by intents(bytes32):
// (address owner, address solver, uint256 amount, uint8 status).
type OffRampV3 struct{}

// V3 layout.
const (
	V3MinLength    = 4 * abi.WordSize
	v3OwnerOffset  = 0
	v3SolverOffset = abi.WordSize
	v3AmountOffset = 2 * abi.WordSize
	v3StatusIndex  = 4*abi.WordSize - 1

	V3StatusActive uint8 = 1
)

var (
	selectorIntentsV3 = abi.Selector{0x90, 0x21, 0x57, 0x8a}
	v3StatusNames     = []string{"None", "Active", "Fulfilled", "Cancelled"}
)

func (OffRampV3) Name() string { return "v3" }
func (OffRampV3) IntentSelector() abi.Selector { return selectorIntentsV3 }
func (OffRampV3) ReadyStatus() uint8 { return V3StatusActive }
func (OffRampV3) StatusName(status uint8) string { return statusName(v3StatusNames, status) }

func (OffRampV3) Decode(data []byte) (*Intent, bool, error) {
	if len(data) < V3MinLength {
		return nil, false, nil
	}

	owner, err := abi.Address(data, v3OwnerOffset)
	if err != nil {
		return nil, false, err
	}
	if owner == (common.Address{}) {
		return nil, false, nil
	}
	solver, err := abi.Address(data, v3SolverOffset)
	if err != nil {
		return nil, false, err
	}
	amount, err := abi.Uint256(data, v3AmountOffset)
	if err != nil {
		return nil, false, err
	}
	status, err := abi.Byte(data, v3StatusIndex)
	if err != nil {
		return nil, false, err
	}

	return &Intent{
		Owner:      owner,
		Solver:     solver,
		Amount:     amount,
		Status:     status,
		FiatAmount: new(uint256.Int),
	}, true, nil
}

// OffRampV4 is the dynamic tuple returned by getIntent(bytes32). Fields
// follow a leading offset word:
// (address depositor, uint256 usdcAmount, uint8 currency, uint8 status,
// uint64 createdAt, uint64 committedAt, address selectedSolver,
// uint8 selectedRtpn, uint256 selectedFiatAmount).
type OffRampV4 struct{}

// V4 layout, relative to the tuple base.
const (
	V4MinLength = abi.WordSize + v4FieldsLength

	v4FieldsLength      = 9 * abi.WordSize
	v4DepositorOffset   = 0
	v4AmountOffset      = abi.WordSize
	v4CurrencyOffset    = 2 * abi.WordSize
	v4StatusOffset      = 3 * abi.WordSize
	v4CreatedAtOffset   = 4 * abi.WordSize
	v4CommittedAtOffset = 5 * abi.WordSize
	v4SolverOffset      = 6 * abi.WordSize
	v4FiatAmountOffset  = 8 * abi.WordSize
	v4LowByte           = abi.WordSize - 1

	V4StatusCommitted uint8 = 2
)

var (
	selectorGetIntentV4 = abi.Selector{0xf1, 0x3c, 0x46, 0xaa}
	v4StatusNames       = []string{"None", "Pending", "Committed", "Fulfilled", "Cancelled"}
)

func (OffRampV4) Name() string { return "v4" }
func (OffRampV4) IntentSelector() abi.Selector { return selectorGetIntentV4 }
func (OffRampV4) ReadyStatus() uint8 { return V4StatusCommitted }
func (OffRampV4) StatusName(status uint8) string { return statusName(v4StatusNames, status) }

func (OffRampV4) Decode(data []byte) (*Intent, bool, error) {
	if len(data) < V4MinLength {
		return nil, false, nil
	}

	base, err := abi.TupleBase(data)
	if err != nil {
		return nil, false, err
	}
	if len(data)-base < v4FieldsLength {
		return nil, false, nil
	}

	depositor, err := abi.Address(data, base+v4DepositorOffset)
	if err != nil {
		return nil, false, err
	}
	if depositor == (common.Address{}) {
		return nil, false, nil
	}

	intent := &Intent{Owner: depositor, HasCurrency: true}
	if intent.Amount, err = abi.Uint256(data, base+v4AmountOffset); err != nil {
		return nil, false, err
	}
	if intent.Currency, err = abi.Byte(data, base+v4CurrencyOffset+v4LowByte); err != nil {
		return nil, false, err
	}
	if intent.Status, err = abi.Byte(data, base+v4StatusOffset+v4LowByte); err != nil {
		return nil, false, err
	}
	if intent.CreatedAt, err = abi.Uint64(data, base+v4CreatedAtOffset); err != nil {
		return nil, false, err
	}
	if intent.CommittedAt, err = abi.Uint64(data, base+v4CommittedAtOffset); err != nil {
		return nil, false, err
	}
	if intent.Solver, err = abi.Address(data, base+v4SolverOffset); err != nil {
		return nil, false, err
	}
	if intent.FiatAmount, err = abi.Uint256(data, base+v4FiatAmountOffset); err != nil {
		return nil, false, err
	}

	return intent, true, nil
}
