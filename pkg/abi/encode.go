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

package abi

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// WordSize is the width of an ABI word.
const WordSize = 32

// Selector is the first four bytes of keccak256 of a function signature.
type Selector [4]byte

// SelectorOf computes the selector of a canonical function signature such as
// "authorizedSolvers(address)".
func SelectorOf(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:4])
	return s
}

// Hex returns the 0x-prefixed selector.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Arg is a single static argument word.
type Arg interface {
	word() [WordSize]byte
}

type addressArg common.Address

func (a addressArg) word() [WordSize]byte {
	var w [WordSize]byte
	copy(w[WordSize-common.AddressLength:], a[:])
	return w
}

type uintArg struct{ v uint256.Int }

func (u uintArg) word() [WordSize]byte {
	return u.v.Bytes32()
}

type bytes32Arg [WordSize]byte

func (b bytes32Arg) word() [WordSize]byte {
	return b
}

// AddressArg encodes an address right-aligned in a word.
func AddressArg(a common.Address) Arg { return addressArg(a) }

// UintArg encodes an unsigned integer big-endian in a word.
func UintArg(v *uint256.Int) Arg { return uintArg{v: *v} }

// Uint64Arg is UintArg for native integers.
func Uint64Arg(v uint64) Arg { return uintArg{v: *uint256.NewInt(v)} }

// Bytes32Arg copies a 32-byte value (hashes, ids) as-is.
func Bytes32Arg(b [WordSize]byte) Arg { return bytes32Arg(b) }

// EncodeCall builds calldata: selector followed by one word per argument.
func EncodeCall(selector Selector, args ...Arg) []byte {
	out := make([]byte, 0, len(selector)+len(args)*WordSize)
	out = append(out, selector[:]...)
	for _, a := range args {
		w := a.word()
		out = append(out, w[:]...)
	}
	return out
}
