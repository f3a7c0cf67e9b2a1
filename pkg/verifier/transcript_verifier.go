package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrUnsupportedVersion is returned for unknown artifact versions.
	ErrUnsupportedVersion = errors.New("unsupported presentation version")

	// ErrBadNotarySignature is returned when the notary signature is
	// malformed or cannot be recovered.
	ErrBadNotarySignature = errors.New("invalid notary signature")

	// ErrUntrustedNotary is returned when the signature recovers to a notary
	// outside the trust roots.
	ErrUntrustedNotary = errors.New("untrusted notary")
)

// Transcript is the authenticated view of a TLS session.
type Transcript struct {
	ServerName string
	// Time is the session time in unix seconds.
	Time uint64
	Sent []byte
	// Received has every undisclosed byte replaced by RedactionSentinel.
	Received []byte
	Notary   common.Address
}

// TranscriptVerifier authenticates a presentation against trust roots.
type TranscriptVerifier interface {
	Verify(ctx context.Context, p *Presentation, roots TrustRootProvider) (*Transcript, error)
}

// NotarySignatureVerifier checks a secp256k1 notary signature over the
// presentation commitment.
type NotarySignatureVerifier struct{}

// NewNotarySignatureVerifier creates a NotarySignatureVerifier.
func NewNotarySignatureVerifier() *NotarySignatureVerifier {
	return &NotarySignatureVerifier{}
}

// Verify implements TranscriptVerifier.
func (v *NotarySignatureVerifier) Verify(ctx context.Context, p *Presentation, roots TrustRootProvider) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if p.Version != PresentationVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}

	commitment, err := p.Commitment()
	if err != nil {
		return nil, err
	}

	notary, err := recoverNotary(commitment, p.Signature)
	if err != nil {
		return nil, err
	}

	trusted, err := roots.IsTrusted(ctx, notary)
	if err != nil {
		return nil, fmt.Errorf("trust root lookup failed: %w", err)
	}
	if !trusted {
		return nil, fmt.Errorf("%w: %s", ErrUntrustedNotary, notary.Hex())
	}

	return &Transcript{
		ServerName: p.ServerName,
		Time:       p.Time,
		Sent:       p.Sent,
		Received:   p.Masked(),
		Notary:     notary,
	}, nil
}

func recoverNotary(h common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrBadNotarySignature, len(sig))
	}
	rsv := append([]byte(nil), sig...)
	if rsv[64] >= 27 {
		rsv[64] -= 27
	}
	if rsv[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrBadNotarySignature, sig[64])
	}

	pub, err := crypto.SigToPub(h[:], rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadNotarySignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
