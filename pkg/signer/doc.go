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

// Package signer produces EIP-712 payment attestations signed by the witness
// key.
//
// # Overview
//
// A payment attestation is the typed struct
//
//	PaymentAttestation(bytes32 intentHash,uint256 amount,uint256 timestamp,string paymentId,bytes32 dataHash)
//
// hashed under the domain
//
//	EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
//
// and signed with deterministic (RFC6979) secp256k1 ECDSA. Signatures are
// 65 bytes, r || s || v with v in {27, 28}, the form ecrecover expects.
//
// # Basic Usage
//
//	s, err := signer.NewDefaultAttestationSignerFromHex(os.Getenv("WITNESS_PRIVATE_KEY"))
//	if err != nil {
//	    return err
//	}
//
//	domain := signer.NewDomain(84532, verifierContract)
//	signed, err := s.Sign(ctx, domain, &signer.Payload{
//	    IntentHash: intentHash,
//	    Amount:     10000,
//	    Timestamp:  uint64(notarizedAt.Unix()),
//	    PaymentID:  "tx-123",
//	    RawData:    body,
//	})
//
// # Verification
//
// Consumers recompute the digest from the same typed inputs:
//
//	err := signer.VerifyAttestation(domain, payload, signed.Signature, witness)
//
// No API signs a caller-provided digest.
package signer
