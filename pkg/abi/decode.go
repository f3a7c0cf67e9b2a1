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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a word does not fit the requested Go type.
var ErrOverflow = errors.New("abi: value overflows target type")

// DecodeError reports a read outside the buffer.
type DecodeError struct {
	Offset int
	Width  int
	Len    int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("abi: short buffer: need %d bytes at offset %d, have %d", e.Width, e.Offset, e.Len)
}

// Field returns buf[offset:offset+width] without copying.
func Field(buf []byte, offset, width int) ([]byte, error) {
	if offset < 0 || width < 0 || offset > len(buf) || width > len(buf)-offset {
		return nil, &DecodeError{Offset: offset, Width: width, Len: len(buf)}
	}
	return buf[offset : offset+width], nil
}

// Word reads the 32-byte word starting at offset.
func Word(buf []byte, offset int) ([WordSize]byte, error) {
	var w [WordSize]byte
	b, err := Field(buf, offset, WordSize)
	if err != nil {
		return w, err
	}
	copy(w[:], b)
	return w, nil
}

// Address reads the low-order 20 bytes of the word at offset.
func Address(buf []byte, offset int) (common.Address, error) {
	b, err := Field(buf, offset, WordSize)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b[WordSize-common.AddressLength:]), nil
}

// Uint256 reads the word at offset as a big-endian unsigned integer.
func Uint256(buf []byte, offset int) (*uint256.Int, error) {
	b, err := Field(buf, offset, WordSize)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

// Uint64 reads the word at offset and fails with ErrOverflow if it does not
// fit 64 bits.
func Uint64(buf []byte, offset int) (uint64, error) {
	v, err := Uint256(buf, offset)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, ErrOverflow
	}
	return v.Uint64(), nil
}

// Byte reads the single byte at index.
func Byte(buf []byte, index int) (byte, error) {
	b, err := Field(buf, index, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads the low-order byte of the word at offset.
func Bool(buf []byte, offset int) (bool, error) {
	b, err := Field(buf, offset, WordSize)
	if err != nil {
		return false, err
	}
	return b[WordSize-1] != 0, nil
}

// TupleBase reads the leading offset word of a dynamic tuple return and
// returns the position where the tuple's fields begin. The offset must be
// word aligned, past the offset word itself and within buf.
func TupleBase(buf []byte) (int, error) {
	v, err := Uint256(buf, 0)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() < WordSize || v.Uint64()%WordSize != 0 || v.Uint64() > uint64(len(buf)) {
		return 0, &DecodeError{Offset: 0, Width: WordSize, Len: len(buf)}
	}
	return int(v.Uint64()), nil
}
