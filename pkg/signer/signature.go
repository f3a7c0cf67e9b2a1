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

package signer

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is len(r || s || v).
const SignatureLength = 65

// Signature is an Ethereum-style recoverable signature r || s || v.
type Signature [SignatureLength]byte

var (
	// ErrInvalidSignature is returned for signatures that cannot be recovered.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrSignerMismatch is returned when a signature recovers to an
	// unexpected address.
	ErrSignerMismatch = errors.New("signature does not match expected signer")
)

// R returns the r component.
func (s Signature) R() []byte { return s[:32] }

// S returns the s component.
func (s Signature) S() []byte { return s[32:64] }

// V returns the recovery byte, 27 or 28.
func (s Signature) V() byte { return s[64] }

// Hex returns the 0x-prefixed signature.
func (s Signature) Hex() string { return hexutil.Encode(s[:]) }

// ParseSignature decodes a 0x-prefixed 65-byte signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	b, err := hexutil.Decode(s)
	if err != nil {
		return sig, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// RecoverAddress returns the address that produced sig over digest.
func RecoverAddress(digest common.Hash, sig Signature) (common.Address, error) {
	v := sig.V()
	if v != 27 && v != 28 {
		return common.Address{}, fmt.Errorf("%w: v=%d", ErrInvalidSignature, v)
	}

	rsv := make([]byte, SignatureLength)
	copy(rsv, sig[:])
	rsv[64] = v - 27

	pub, err := crypto.SigToPub(digest[:], rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyAttestation recomputes the digest of payload under domain and checks
// that sig was produced by expected.
func VerifyAttestation(domain Domain, payload *Payload, sig Signature, expected common.Address) error {
	recovered, err := RecoverAddress(Digest(domain, payload), sig)
	if err != nil {
		return err
	}
	if recovered != expected {
		return fmt.Errorf("%w: got %s, want %s", ErrSignerMismatch, recovered.Hex(), expected.Hex())
	}
	return nil
}
