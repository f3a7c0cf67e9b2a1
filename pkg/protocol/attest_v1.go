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

// Package protocol provides the attestation API v1 wire types.
package protocol

// API paths. Every route is also served under APIPrefix.
const (
	APIPrefix  = "/api/v1"
	AttestPath = "/attest"
	HealthPath = "/health"

	// APIKeyHeader carries the solver API key.
	APIKeyHeader = "X-Solver-API-Key"

	// RequestIDHeader carries a caller-chosen request id that is echoed
	// into the audit log.
	RequestIDHeader = "X-Request-Id"
)

// AttestRequest is the body of POST /attest.
type AttestRequest struct {
	// Presentation is the standard base64 encoding of the presentation artifact.
	Presentation string `json:"presentation"`

	// IntentHash is the 32-byte on-chain intent id as 0x-prefixed hex.
	IntentHash string `json:"intent_hash"`

	// ExpectedAmountCents is the amount the solver paid. Zero skips the
	// amount cross-check.
	ExpectedAmountCents int64 `json:"expected_amount_cents"`

	// ExpectedBeneficiaryIBAN is the IBAN the solver paid. Empty skips the
	// IBAN cross-check.
	ExpectedBeneficiaryIBAN string `json:"expected_beneficiary_iban"`
}

// AttestResponse is the body of a successful POST /attest.
type AttestResponse struct {
	Success bool `json:"success"`

	// Signature is the 65-byte r || s || v signature as 0x-prefixed hex.
	Signature string `json:"signature"`

	// Digest is the EIP-712 digest that was signed.
	Digest string `json:"digest"`

	// DataHash is keccak256 of the disclosed response body.
	DataHash string `json:"data_hash"`

	// Payment is the verified payment the signature covers.
	Payment PaymentDetails `json:"payment"`
}

// PaymentDetails describes a verified payment.
type PaymentDetails struct {
	// TransactionID is null when the presentation did not disclose one.
	TransactionID *string `json:"transaction_id"`

	// AmountCents is zero when the presentation did not disclose an amount.
	AmountCents int64 `json:"amount_cents"`

	BeneficiaryIBAN string `json:"beneficiary_iban"`

	Status string `json:"status,omitempty"`

	// Timestamp is the notarized session time in unix seconds.
	Timestamp uint64 `json:"timestamp"`

	// Server is the TLS server name the presentation was captured from.
	Server string `json:"server"`
}

// PaymentID returns the transaction id or "" when absent.
func (p PaymentDetails) PaymentID() string {
	if p.TransactionID == nil {
		return ""
	}
	return *p.TransactionID
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status                 string `json:"status"`
	WitnessAddress         string `json:"witness_address"`
	ChainID                uint64 `json:"chain_id"`
	AuthEnabled            bool   `json:"auth_enabled"`
	ChainValidationEnabled bool   `json:"chain_validation_enabled"`
	Version                string `json:"version"`
}

// ErrorResponse is returned for failed attestations.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// AuthErrorResponse is returned when authentication or rate limiting
// rejects a request.
type AuthErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`

	// RetryAfter is set on 429 responses, in seconds.
	RetryAfter int64 `json:"retry_after,omitempty"`
}
