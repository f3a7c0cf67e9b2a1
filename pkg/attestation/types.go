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

package attestation

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/sage-x-project/sage-attest/pkg/signer"
)

// Request is a solver's attestation request.
type Request struct {
	// Presentation is the raw presentation artifact.
	Presentation []byte
	// IntentHash must be exactly 32 bytes.
	IntentHash []byte
	// ExpectedAmountCents is the amount the solver claims to have paid.
	// Zero skips the amount cross-check.
	ExpectedAmountCents int64
	// ExpectedBeneficiaryIBAN is the IBAN the solver claims to have paid.
	// Empty skips the IBAN cross-check.
	ExpectedBeneficiaryIBAN string
}

// PaymentSummary is the verified payment returned alongside the signature.
type PaymentSummary struct {
	TransactionID   string
	AmountCents     int64
	BeneficiaryIBAN string
	Status          string
	Timestamp       uint64
	Server          string
}

// Result is a signed attestation.
type Result struct {
	Signature  signer.Signature
	Digest     common.Hash
	DataHash   common.Hash
	Witness    common.Address
	IntentHash common.Hash
	Payment    PaymentSummary
}
