package signer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// AttestationSigner signs payment attestations with the witness key
type AttestationSigner interface {
	// Sign hashes payload under domain and signs the resulting digest.
	// The digest is always computed here from the typed inputs.
	Sign(ctx context.Context, domain Domain, payload *Payload) (*SignedAttestation, error)

	// Address returns the witness address the on-chain verifier trusts
	Address() common.Address
}

// SignedAttestation is the output of a successful Sign call
type SignedAttestation struct {
	// Signature is r || s || v with v in {27, 28}
	Signature Signature

	// Digest is the EIP-712 digest that was signed
	Digest common.Hash

	// DataHash is keccak256 of the payload's raw data
	DataHash common.Hash

	// Signer is the witness address
	Signer common.Address
}
