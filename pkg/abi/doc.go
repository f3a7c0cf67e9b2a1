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

// Package abi is a hand-written contract-call codec covering exactly what the
// attestation service sends to and reads from the off-ramp contracts: 4-byte
// selectors, 32-byte aligned argument words and fixed-offset return fields.
//
// Every decoder is bounds-checked and returns a *DecodeError instead of
// panicking on short or malformed buffers. Deciding that a field is "absent"
// (for example a zero address) is left to the caller.
package abi
