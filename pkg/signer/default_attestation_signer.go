package signer

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sage-x-project/sage-attest/pkg/attesterr"
)

// DefaultAttestationSigner implements AttestationSigner with an in-memory
// secp256k1 key and deterministic RFC6979 ECDSA
type DefaultAttestationSigner struct {
	key     *secp256k1.PrivateKey
	address common.Address
	log     slog.Logger
}

// Option configures a DefaultAttestationSigner
type Option func(*DefaultAttestationSigner)

// WithLogger sets the signer logger
func WithLogger(log slog.Logger) Option {
	return func(s *DefaultAttestationSigner) {
		s.log = log
	}
}

// NewDefaultAttestationSigner creates a signer from a raw 32-byte key
func NewDefaultAttestationSigner(rawKey []byte, opts ...Option) (*DefaultAttestationSigner, error) {
	// ToECDSA rejects zero and out-of-range scalars, PrivKeyFromBytes does not
	ecKey, err := crypto.ToECDSA(rawKey)
	if err != nil {
		return nil, fmt.Errorf("invalid witness key: %w", err)
	}

	s := &DefaultAttestationSigner{
		key:     secp256k1.PrivKeyFromBytes(rawKey),
		address: crypto.PubkeyToAddress(ecKey.PublicKey),
		log:     slog.Disabled,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefaultAttestationSignerFromHex creates a signer from a hex key, with or
// without 0x prefix
func NewDefaultAttestationSignerFromHex(hexKey string, opts ...Option) (*DefaultAttestationSigner, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid witness key hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid witness key length: got %d bytes, want 32", len(raw))
	}
	return NewDefaultAttestationSigner(raw, opts...)
}

// Address returns the witness address
func (s *DefaultAttestationSigner) Address() common.Address {
	return s.address
}

// Sign computes the EIP-712 digest of payload and signs it
func (s *DefaultAttestationSigner) Sign(ctx context.Context, domain Domain, payload *Payload) (*SignedAttestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if payload == nil {
		return nil, attesterr.Newf(attesterr.KindSigning, "payload cannot be nil")
	}

	digest := Digest(domain, payload)

	sig, err := s.signDigest(digest)
	if err != nil {
		s.log.Criticalf("Signing failed for intent %s: %v", payload.IntentHash.Hex(), err)
		return nil, attesterr.New(attesterr.KindSigning, "Signing failed", err)
	}

	// The contract rejects anything that does not recover to the witness.
	recovered, err := RecoverAddress(digest, sig)
	if err != nil || recovered != s.address {
		s.log.Criticalf("Signature self-check failed for intent %s: recovered %s, err %v",
			payload.IntentHash.Hex(), recovered.Hex(), err)
		return nil, attesterr.Newf(attesterr.KindSigning, "Signing failed: signature self-check")
	}

	s.log.Debugf("Signed attestation for intent %s, digest %s", payload.IntentHash.Hex(), digest.Hex())

	return &SignedAttestation{
		Signature: sig,
		Digest:    digest,
		DataHash:  payload.DataHash(),
		Signer:    s.address,
	}, nil
}

// signDigest signs the 32-byte digest as-is and reorders the compact
// [v || r || s] form into r || s || v.
func (s *DefaultAttestationSigner) signDigest(digest common.Hash) (Signature, error) {
	var sig Signature

	compact := ecdsa.SignCompact(s.key, digest[:], false)
	if len(compact) != SignatureLength {
		return sig, fmt.Errorf("unexpected compact signature length %d", len(compact))
	}
	v := compact[0]
	if v != 27 && v != 28 {
		return sig, fmt.Errorf("unsupported recovery code %d", v)
	}

	copy(sig[:64], compact[1:])
	sig[64] = v
	return sig, nil
}
