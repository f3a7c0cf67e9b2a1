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

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
)

// AnonymousIdentity is used for every request when no API keys are
// configured.
const AnonymousIdentity = "0x0000000000000000000000000000000000000000"

var (
	// ErrMissingAPIKey is returned when auth is enabled and no key was sent.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidAPIKey is returned for unknown keys.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// ParseAPIKeys parses "key1:0xAddr1,key2:0xAddr2". Identities are lowercase
// hex addresses. Empty entries are skipped.
func ParseAPIKeys(s string) (map[string]string, error) {
	keys := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, addr, ok := strings.Cut(pair, ":")
		key, addr = strings.TrimSpace(key), strings.TrimSpace(addr)
		if !ok || key == "" || strings.Contains(addr, ":") {
			return nil, fmt.Errorf("malformed API key entry %q (want key:0xaddress)", pair)
		}
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("API key %q maps to invalid address %q", key, addr)
		}
		if _, dup := keys[key]; dup {
			return nil, fmt.Errorf("duplicate API key %q", key)
		}
		keys[key] = strings.ToLower(common.HexToAddress(addr).Hex())
	}
	return keys, nil
}

// SolverAuth resolves API keys to solver identities
type SolverAuth struct {
	keys map[string]string
	log  slog.Logger
}

// NewSolverAuth creates an authenticator. A nil or empty key map disables
// authentication.
func NewSolverAuth(keys map[string]string, log slog.Logger) *SolverAuth {
	if log == nil {
		log = slog.Disabled
	}
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = strings.ToLower(v)
	}
	return &SolverAuth{keys: copied, log: log}
}

// Enabled reports whether API keys are required
func (a *SolverAuth) Enabled() bool {
	return len(a.keys) > 0
}

// SolverCount returns the number of configured keys
func (a *SolverAuth) SolverCount() int {
	return len(a.keys)
}

// Authenticate returns the identity bound to apiKey
func (a *SolverAuth) Authenticate(apiKey string) (string, bool) {
	var identity string
	found := 0
	for k, id := range a.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(apiKey)) == 1 {
			identity = id
			found = 1
		}
	}
	return identity, found == 1
}

// Identify resolves the identity of a request carrying apiKey. When
// authentication is disabled every request maps to AnonymousIdentity.
func (a *SolverAuth) Identify(apiKey string) (string, error) {
	if !a.Enabled() {
		return AnonymousIdentity, nil
	}
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	identity, ok := a.Authenticate(apiKey)
	if !ok {
		a.log.Warnf("Rejected request with unknown API key")
		return "", ErrInvalidAPIKey
	}
	return identity, nil
}
