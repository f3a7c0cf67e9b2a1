package verifier

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Notary signs presentation commitments. The service only verifies; Notary
// exists for local notarization tooling and tests.
type Notary struct {
	key     *secp256k1.PrivateKey
	address common.Address
}

// NewNotary creates a notary from a raw 32-byte secp256k1 key.
func NewNotary(rawKey []byte) (*Notary, error) {
	if _, err := crypto.ToECDSA(rawKey); err != nil {
		return nil, fmt.Errorf("invalid notary key: %w", err)
	}
	return newNotary(secp256k1.PrivKeyFromBytes(rawKey)), nil
}

// GenerateNotary creates a notary with a fresh random key.
func GenerateNotary() (*Notary, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notary key: %w", err)
	}
	return newNotary(key), nil
}

func newNotary(key *secp256k1.PrivateKey) *Notary {
	pub := key.PubKey().SerializeUncompressed()
	return &Notary{
		key:     key,
		address: common.BytesToAddress(crypto.Keccak256(pub[1:])[12:]),
	}
}

// Address returns the notary address trust roots refer to.
func (n *Notary) Address() common.Address {
	return n.address
}

// PrivateKey returns the raw key bytes.
func (n *Notary) PrivateKey() []byte {
	return n.key.Serialize()
}

// Notarize signs p's commitment and stores the signature in p.
func (n *Notary) Notarize(p *Presentation) error {
	h, err := p.Commitment()
	if err != nil {
		return err
	}
	compact := ecdsa.SignCompact(n.key, h[:], false)

	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	p.Signature = sig
	return nil
}
