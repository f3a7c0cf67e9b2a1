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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/chain"
	"github.com/sage-x-project/sage-attest/pkg/signer"
)

// Environment variables overriding the config file.
const (
	EnvWitnessPrivateKey = "WITNESS_PRIVATE_KEY"
	EnvChainID           = "CHAIN_ID"
	EnvVerifierContract  = "VERIFIER_CONTRACT"
	EnvAllowedServers    = "ALLOWED_SERVERS"
	EnvNotaryTrustRoots  = "NOTARY_TRUST_ROOTS"
	EnvRPCURL            = "RPC_URL"
	EnvOffRampContract   = "OFFRAMP_CONTRACT"
	EnvIntentSchema      = "INTENT_SCHEMA"
	EnvRPCTimeout        = "RPC_TIMEOUT"
	EnvFiatCurrency      = "FIAT_CURRENCY"
	EnvFiatDecimals      = "FIAT_DECIMALS"
	EnvSolverAPIKeys     = "SOLVER_API_KEYS"
	EnvRateLimit         = "RATE_LIMIT_PER_MINUTE"
	EnvAuditLogPath      = "AUDIT_LOG_PATH"
	EnvAuditDatabaseURL  = "AUDIT_DATABASE_URL"
	EnvPort              = "PORT"
	EnvLogLevel          = "LOG_LEVEL"
)

// Defaults.
const (
	DefaultAllowedServer = "thirdparty.qonto.com"
	DefaultPort          = 4001
	DefaultIntentSchema  = "v4"
	DefaultRPCTimeout    = 10 * time.Second
	DefaultLogLevel      = "info"

	maxFiatDecimals = 36
)

var (
	// ErrMissingWitnessKey is returned when no witness key is configured.
	ErrMissingWitnessKey = errors.New(EnvWitnessPrivateKey + " not set")

	// ErrNoTrustRoots is returned when no notary is trusted.
	ErrNoTrustRoots = errors.New("no notary trust roots configured")
)

// Config is the attestation service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Witness  WitnessConfig  `yaml:"witness"`
	Verifier VerifierConfig `yaml:"verifier"`
	Chain    ChainConfig    `yaml:"chain"`
	Auth     AuthConfig     `yaml:"auth"`
	Audit    AuditConfig    `yaml:"audit"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// WitnessConfig configures the attestation signer and its EIP-712 domain.
type WitnessConfig struct {
	PrivateKey       string `yaml:"private_key"`
	ChainID          uint64 `yaml:"chain_id"`
	VerifierContract string `yaml:"verifier_contract"`
}

// VerifierConfig configures presentation verification.
type VerifierConfig struct {
	AllowedServers   []string `yaml:"allowed_servers"`
	NotaryTrustRoots []string `yaml:"notary_trust_roots"`
}

// ChainConfig configures on-chain intent validation. Validation is enabled
// only when both RPCURL and OffRampContract are set.
type ChainConfig struct {
	RPCURL          string        `yaml:"rpc_url"`
	OffRampContract string        `yaml:"offramp_contract"`
	IntentSchema    string        `yaml:"intent_schema"`
	RPCTimeout      time.Duration `yaml:"rpc_timeout"`
	FiatCurrency    uint8         `yaml:"fiat_currency"`
	FiatDecimals    uint8         `yaml:"fiat_decimals"`
}

// AuthConfig configures solver API keys and the request quota.
type AuthConfig struct {
	// SolverAPIKeys is "key1:0xaddr1,key2:0xaddr2". Empty disables auth.
	SolverAPIKeys      string `yaml:"solver_api_keys"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// AuditConfig configures the audit sinks. Empty values disable them.
type AuditConfig struct {
	LogPath     string `yaml:"log_path"`
	DatabaseURL string `yaml:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Witness: WitnessConfig{
			ChainID:          signer.DefaultChainID,
			VerifierContract: common.Address{}.Hex(),
		},
		Verifier: VerifierConfig{AllowedServers: []string{DefaultAllowedServer}},
		Chain: ChainConfig{
			IntentSchema: DefaultIntentSchema,
			RPCTimeout:   DefaultRPCTimeout,
			FiatDecimals: chain.CentsDecimals,
		},
		Auth: AuthConfig{RateLimitPerMinute: auth.DefaultRateLimit},
		Log:  LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads the optional YAML file at path, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		var v string
		str(key, &v)
		if v != "" {
			*dst = splitList(v)
		}
	}
	uintVar := func(key string, bits int, set func(uint64)) {
		var v string
		str(key, &v)
		if v == "" {
			return
		}
		n, err := strconv.ParseUint(v, 10, bits)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		set(n)
	}

	str(EnvWitnessPrivateKey, &c.Witness.PrivateKey)
	uintVar(EnvChainID, 64, func(n uint64) { c.Witness.ChainID = n })
	str(EnvVerifierContract, &c.Witness.VerifierContract)
	list(EnvAllowedServers, &c.Verifier.AllowedServers)
	list(EnvNotaryTrustRoots, &c.Verifier.NotaryTrustRoots)
	str(EnvRPCURL, &c.Chain.RPCURL)
	str(EnvOffRampContract, &c.Chain.OffRampContract)
	str(EnvIntentSchema, &c.Chain.IntentSchema)
	uintVar(EnvFiatCurrency, 8, func(n uint64) { c.Chain.FiatCurrency = uint8(n) })
	uintVar(EnvFiatDecimals, 8, func(n uint64) { c.Chain.FiatDecimals = uint8(n) })
	str(EnvSolverAPIKeys, &c.Auth.SolverAPIKeys)
	uintVar(EnvRateLimit, 31, func(n uint64) { c.Auth.RateLimitPerMinute = int(n) })
	str(EnvAuditLogPath, &c.Audit.LogPath)
	str(EnvAuditDatabaseURL, &c.Audit.DatabaseURL)
	uintVar(EnvPort, 16, func(n uint64) { c.Server.Port = int(n) })
	str(EnvLogLevel, &c.Log.Level)

	var timeout string
	str(EnvRPCTimeout, &timeout)
	if timeout != "" {
		d, err := parseTimeout(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", EnvRPCTimeout, err))
		} else {
			c.Chain.RPCTimeout = d
		}
	}

	return errors.Join(errs...)
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Witness.PrivateKey == "" {
		errs = append(errs, ErrMissingWitnessKey)
	} else if _, err := crypto.HexToECDSA(strings.TrimPrefix(c.Witness.PrivateKey, "0x")); err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", EnvWitnessPrivateKey, err))
	}
	if !common.IsHexAddress(c.Witness.VerifierContract) {
		errs = append(errs, fmt.Errorf("invalid %s: %q is not a 20-byte address", EnvVerifierContract, c.Witness.VerifierContract))
	}
	if len(c.Verifier.AllowedServers) == 0 {
		errs = append(errs, fmt.Errorf("invalid %s: at least one server is required", EnvAllowedServers))
	}
	if len(c.Verifier.NotaryTrustRoots) == 0 {
		errs = append(errs, ErrNoTrustRoots)
	}
	for _, root := range c.Verifier.NotaryTrustRoots {
		if !common.IsHexAddress(root) {
			errs = append(errs, fmt.Errorf("invalid %s: %q is not an address", EnvNotaryTrustRoots, root))
		}
	}

	if c.Chain.OffRampContract != "" && !common.IsHexAddress(c.Chain.OffRampContract) {
		errs = append(errs, fmt.Errorf("invalid %s: %q is not a 20-byte address", EnvOffRampContract, c.Chain.OffRampContract))
	}
	if _, err := chain.ParseSchema(c.Chain.IntentSchema); err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", EnvIntentSchema, err))
	}
	if c.Chain.RPCTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid %s: must be > 0", EnvRPCTimeout))
	}
	if c.Chain.FiatDecimals > maxFiatDecimals {
		errs = append(errs, fmt.Errorf("invalid %s: must be <= %d", EnvFiatDecimals, maxFiatDecimals))
	}

	if _, err := auth.ParseAPIKeys(c.Auth.SolverAPIKeys); err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", EnvSolverAPIKeys, err))
	}
	if c.Auth.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("invalid %s: must be > 0", EnvRateLimit))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid %s: must be in range 1..65535", EnvPort))
	}
	if _, ok := slog.LevelFromString(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("invalid %s: unknown level %q", EnvLogLevel, c.Log.Level))
	}

	return errors.Join(errs...)
}

// ChainValidationEnabled reports whether intents are checked on-chain.
func (c *Config) ChainValidationEnabled() bool {
	return c.Chain.RPCURL != "" && c.Chain.OffRampContract != ""
}

// VerifierContractAddress returns the EIP-712 verifying contract.
func (c *Config) VerifierContractAddress() common.Address {
	return common.HexToAddress(c.Witness.VerifierContract)
}

// OffRampContractAddress returns the intent contract.
func (c *Config) OffRampContractAddress() common.Address {
	return common.HexToAddress(c.Chain.OffRampContract)
}

// SigningDomain returns the EIP-712 domain attestations are signed under.
func (c *Config) SigningDomain() signer.Domain {
	return signer.NewDomain(c.Witness.ChainID, c.VerifierContractAddress())
}

// FiatUnits returns the on-chain fiat denomination.
func (c *Config) FiatUnits() chain.FiatUnits {
	return chain.FiatUnits{Currency: c.Chain.FiatCurrency, Decimals: c.Chain.FiatDecimals}
}

// SolverKeys parses the configured API keys.
func (c *Config) SolverKeys() (map[string]string, error) {
	return auth.ParseAPIKeys(c.Auth.SolverAPIKeys)
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	if lvl, ok := slog.LevelFromString(c.Log.Level); ok {
		return lvl
	}
	return slog.LevelInfo
}
