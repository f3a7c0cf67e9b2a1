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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Domain defaults shared with the on-chain verifier.
const (
	DefaultDomainName    = "WisePaymentVerifier"
	DefaultDomainVersion = "1"
	DefaultChainID       = uint64(84532)
)

const (
	domainType  = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	payloadType = "PaymentAttestation(bytes32 intentHash,uint256 amount,uint256 timestamp,string paymentId,bytes32 dataHash)"
)

var (
	domainTypeHash  = crypto.Keccak256Hash([]byte(domainType))
	payloadTypeHash = crypto.Keccak256Hash([]byte(payloadType))

	eip712Prefix = []byte{0x19, 0x01}
)

// Domain is the EIP-712 signing domain.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// NewDomain returns the default-named domain for a deployment.
func NewDomain(chainID uint64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              DefaultDomainName,
		Version:           DefaultDomainVersion,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Separator returns the EIP-712 domain separator.
func (d Domain) Separator() common.Hash {
	return crypto.Keccak256Hash(
		domainTypeHash[:],
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		uint64Word(d.ChainID),
		common.LeftPadBytes(d.VerifyingContract[:], 32),
	)
}

// Payload is the typed data attested for one payment.
type Payload struct {
	IntentHash common.Hash
	// Amount is in cents.
	Amount uint64
	// Timestamp is the notarized session time, unix seconds.
	Timestamp uint64
	PaymentID string
	// RawData is the disclosed response body the payment was read from.
	RawData []byte
}

// DataHash returns keccak256(RawData).
func (p *Payload) DataHash() common.Hash {
	return crypto.Keccak256Hash(p.RawData)
}

// StructHash returns the EIP-712 hashStruct of the payload.
func (p *Payload) StructHash() common.Hash {
	return p.Hashed().StructHash()
}

// Hashed returns the payload with its raw data replaced by DataHash.
func (p *Payload) Hashed() HashedPayload {
	return HashedPayload{
		IntentHash: p.IntentHash,
		Amount:     p.Amount,
		Timestamp:  p.Timestamp,
		PaymentID:  p.PaymentID,
		DataHash:   p.DataHash(),
	}
}

// HashedPayload carries exactly the fields that enter the struct hash. It
// lets a party holding only the data hash recompute the digest.
type HashedPayload struct {
	IntentHash common.Hash
	Amount     uint64
	Timestamp  uint64
	PaymentID  string
	DataHash   common.Hash
}

// StructHash returns the EIP-712 hashStruct of the payload.
func (h HashedPayload) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		payloadTypeHash[:],
		h.IntentHash[:],
		uint64Word(h.Amount),
		uint64Word(h.Timestamp),
		crypto.Keccak256([]byte(h.PaymentID)),
		h.DataHash[:],
	)
}

// Digest returns the EIP-712 digest of the payload under domain.
func (h HashedPayload) Digest(domain Domain) common.Hash {
	return typedDataDigest(domain, h.StructHash())
}

// Digest returns keccak256(0x19 0x01 || domainSeparator || structHash).
func Digest(domain Domain, payload *Payload) common.Hash {
	return typedDataDigest(domain, payload.StructHash())
}

func typedDataDigest(domain Domain, structHash common.Hash) common.Hash {
	sep := domain.Separator()
	return crypto.Keccak256Hash(eip712Prefix, sep[:], structHash[:])
}

func uint64Word(v uint64) []byte {
	w := uint256.NewInt(v).Bytes32()
	return w[:]
}
