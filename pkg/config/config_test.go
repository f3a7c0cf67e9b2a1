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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-attest/pkg/chain"
)

const (
	testWitnessKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testNotary     = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func minimalEnv() map[string]string {
	return map[string]string{
		EnvWitnessPrivateKey: testWitnessKey,
		EnvNotaryTrustRoots:  testNotary,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", envMap(minimalEnv()))
	require.NoError(t, err)

	assert.Equal(t, uint64(84532), cfg.Witness.ChainID)
	assert.Equal(t, common.Address{}, cfg.VerifierContractAddress())
	assert.Equal(t, []string{DefaultAllowedServer}, cfg.Verifier.AllowedServers)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "v4", cfg.Chain.IntentSchema)
	assert.Equal(t, 10*time.Second, cfg.Chain.RPCTimeout)
	assert.Equal(t, uint8(2), cfg.Chain.FiatDecimals)
	assert.Equal(t, 100, cfg.Auth.RateLimitPerMinute)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.False(t, cfg.ChainValidationEnabled())

	keys, err := cfg.SolverKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	domain := cfg.SigningDomain()
	assert.Equal(t, "WisePaymentVerifier", domain.Name)
	assert.Equal(t, "1", domain.Version)
}

func TestLoadEnvOverrides(t *testing.T) {
	env := minimalEnv()
	env[EnvChainID] = "8453"
	env[EnvVerifierContract] = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	env[EnvAllowedServers] = "thirdparty.qonto.com, api.wise.com ,"
	env[EnvRPCURL] = "http://localhost:8545"
	env[EnvOffRampContract] = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	env[EnvIntentSchema] = "v3"
	env[EnvRPCTimeout] = "3"
	env[EnvFiatCurrency] = "1"
	env[EnvFiatDecimals] = "6"
	env[EnvSolverAPIKeys] = "k1:0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266"
	env[EnvRateLimit] = "5"
	env[EnvAuditLogPath] = "/tmp/audit.jsonl"
	env[EnvAuditDatabaseURL] = "postgres://attest@localhost:5432/audit"
	env[EnvPort] = "8080"
	env[EnvLogLevel] = "debug"

	cfg, err := load("", envMap(env))
	require.NoError(t, err)

	assert.Equal(t, uint64(8453), cfg.Witness.ChainID)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), cfg.VerifierContractAddress())
	assert.Equal(t, []string{"thirdparty.qonto.com", "api.wise.com"}, cfg.Verifier.AllowedServers)
	assert.True(t, cfg.ChainValidationEnabled())
	assert.Equal(t, common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"), cfg.OffRampContractAddress())
	assert.Equal(t, 3*time.Second, cfg.Chain.RPCTimeout)
	assert.Equal(t, chain.FiatUnits{Currency: 1, Decimals: 6}, cfg.FiatUnits())
	assert.Equal(t, 5, cfg.Auth.RateLimitPerMinute)
	assert.Equal(t, "/tmp/audit.jsonl", cfg.Audit.LogPath)
	assert.Equal(t, "postgres://attest@localhost:5432/audit", cfg.Audit.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	keys, err := cfg.SolverKeys()
	require.NoError(t, err)
	assert.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", keys["k1"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attestd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 5000
witness:
  private_key: "`+testWitnessKey+`"
  chain_id: 1
verifier:
  allowed_servers: [bank.example.com]
  notary_trust_roots: ["`+testNotary+`"]
chain:
  rpc_timeout: 2500ms
log:
  level: warn
`), 0o600))

	t.Run("file values", func(t *testing.T) {
		cfg, err := load(path, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, uint64(1), cfg.Witness.ChainID)
		assert.Equal(t, []string{"bank.example.com"}, cfg.Verifier.AllowedServers)
		assert.Equal(t, 2500*time.Millisecond, cfg.Chain.RPCTimeout)
		assert.Equal(t, "v4", cfg.Chain.IntentSchema)
	})

	t.Run("env wins over file", func(t *testing.T) {
		cfg, err := load(path, envMap(map[string]string{EnvPort: "6000", EnvRPCTimeout: "1m"}))
		require.NoError(t, err)
		assert.Equal(t, 6000, cfg.Server.Port)
		assert.Equal(t, time.Minute, cfg.Chain.RPCTimeout)
	})

	t.Run("unknown field", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("bogus: 1\n"), 0o600))
		_, err := load(bad, envMap(minimalEnv()))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envMap(minimalEnv()))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("missing witness key", func(t *testing.T) {
		_, err := load("", envMap(map[string]string{EnvNotaryTrustRoots: testNotary}))
		assert.ErrorIs(t, err, ErrMissingWitnessKey)
	})

	t.Run("missing trust roots", func(t *testing.T) {
		_, err := load("", envMap(map[string]string{EnvWitnessPrivateKey: testWitnessKey}))
		assert.ErrorIs(t, err, ErrNoTrustRoots)
	})

	tests := map[string][2]string{
		"bad key":           {EnvWitnessPrivateKey, "0x1234"},
		"bad chain id":      {EnvChainID, "base"},
		"bad verifier":      {EnvVerifierContract, "0x1234"},
		"bad notary":        {EnvNotaryTrustRoots, "notary"},
		"bad offramp":       {EnvOffRampContract, "0x12"},
		"bad schema":        {EnvIntentSchema, "v5"},
		"bad timeout":       {EnvRPCTimeout, "soon"},
		"zero timeout":      {EnvRPCTimeout, "0"},
		"bad decimals":      {EnvFiatDecimals, "300"},
		"too many decimals": {EnvFiatDecimals, "40"},
		"bad api keys":      {EnvSolverAPIKeys, "k1:0xABC"},
		"zero rate limit":   {EnvRateLimit, "0"},
		"bad port":          {EnvPort, "70000"},
		"bad log level":     {EnvLogLevel, "verbose"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			env := minimalEnv()
			env[kv[0]] = kv[1]
			_, err := load("", envMap(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), kv[0])
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingWitnessKey)
		assert.ErrorIs(t, err, ErrNoTrustRoots)
		assert.Contains(t, err.Error(), EnvPort)
	})
}
