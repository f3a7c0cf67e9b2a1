package verifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TrustRootProvider decides which notaries are trusted to vouch for a TLS
// session
type TrustRootProvider interface {
	// IsTrusted reports whether presentations signed by notary are accepted
	IsTrusted(ctx context.Context, notary common.Address) (bool, error)
}

// StaticTrustRoots is a fixed set of notary addresses
type StaticTrustRoots struct {
	roots map[common.Address]struct{}
}

// NewStaticTrustRoots creates a trust-root set from addresses
func NewStaticTrustRoots(notaries ...common.Address) *StaticTrustRoots {
	s := &StaticTrustRoots{roots: make(map[common.Address]struct{}, len(notaries))}
	for _, n := range notaries {
		s.roots[n] = struct{}{}
	}
	return s
}

// ParseTrustRoots parses hex notary addresses
func ParseTrustRoots(addrs []string) (*StaticTrustRoots, error) {
	notaries := make([]common.Address, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid notary address %q", a)
		}
		notaries = append(notaries, common.HexToAddress(a))
	}
	return NewStaticTrustRoots(notaries...), nil
}

// IsTrusted implements TrustRootProvider
func (s *StaticTrustRoots) IsTrusted(ctx context.Context, notary common.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}
	_, ok := s.roots[notary]
	return ok, nil
}

// Len returns the number of trusted notaries
func (s *StaticTrustRoots) Len() int {
	return len(s.roots)
}
