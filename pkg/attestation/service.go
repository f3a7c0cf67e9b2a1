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
	"context"
	"strings"
	"unicode"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sage-x-project/sage-attest/pkg/attesterr"
	"github.com/sage-x-project/sage-attest/pkg/signer"
	"github.com/sage-x-project/sage-attest/pkg/verifier"
)

// IntentValidator checks on-chain intent state for a solver's claim.
// chain.Client implements it.
type IntentValidator interface {
	ValidateIntent(ctx context.Context, hash common.Hash, solver common.Address, claimedCents int64) error
}

// Service issues attestations.
type Service struct {
	verifier       verifier.PresentationVerifier
	signer         signer.AttestationSigner
	intents        IntentValidator
	domain         signer.Domain
	allowedServers []string
	log            slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIntentValidator enables on-chain intent validation.
func WithIntentValidator(v IntentValidator) Option {
	return func(s *Service) {
		s.intents = v
	}
}

// WithLogger sets the service logger.
func WithLogger(log slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates an attestation service. Presentations must come from
// one of allowedServers, and attestations are signed under domain.
func NewService(v verifier.PresentationVerifier, sig signer.AttestationSigner, domain signer.Domain, allowedServers []string, opts ...Option) *Service {
	s := &Service{
		verifier:       v,
		signer:         sig,
		domain:         domain,
		allowedServers: append([]string(nil), allowedServers...),
		log:            slog.Disabled,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChainValidationEnabled reports whether intents are checked on-chain.
func (s *Service) ChainValidationEnabled() bool {
	return s.intents != nil
}

// Witness returns the address attestations are signed with.
func (s *Service) Witness() common.Address {
	return s.signer.Address()
}

// Domain returns the signing domain.
func (s *Service) Domain() signer.Domain {
	return s.domain
}

// Attest verifies req on behalf of solver and signs the verified payment.
func (s *Service) Attest(ctx context.Context, req *Request, solver common.Address) (*Result, error) {
	if req == nil {
		return nil, attesterr.InvalidInput("Empty attestation request")
	}
	if len(req.IntentHash) != common.HashLength {
		return nil, attesterr.InvalidInput("Invalid intent hash: expected %d bytes, got %d", common.HashLength, len(req.IntentHash))
	}
	if req.ExpectedAmountCents < 0 {
		return nil, attesterr.InvalidInput("Invalid expected amount: %d cents", req.ExpectedAmountCents)
	}
	intentHash := common.BytesToHash(req.IntentHash)

	s.log.Infof("Processing attestation for intent %s from solver %s (expected %d cents)",
		intentHash.Hex(), solver.Hex(), req.ExpectedAmountCents)

	if s.intents != nil {
		if err := s.intents.ValidateIntent(ctx, intentHash, solver, req.ExpectedAmountCents); err != nil {
			s.log.Warnf("Intent validation failed for %s: %v", intentHash.Hex(), err)
			return nil, err
		}
	}

	payment, err := s.verifier.Verify(ctx, req.Presentation, s.allowedServers)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Verified presentation from %s (%s extraction)", payment.ServerName, payment.Extraction)

	if err := crossCheck(payment, req); err != nil {
		return nil, err
	}

	if payment.AmountCents < 0 {
		return nil, attesterr.Rejected("Proof discloses a negative amount: %d cents", payment.AmountCents)
	}
	payload := &signer.Payload{
		IntentHash: intentHash,
		Amount:     uint64(payment.AmountCents),
		Timestamp:  payment.Timestamp,
		PaymentID:  payment.TransactionID,
		RawData:    []byte(payment.ResponseBody),
	}

	signed, err := s.signer.Sign(ctx, s.domain, payload)
	if err != nil {
		if ctx.Err() == nil && !attesterr.Is(err, attesterr.KindSigning) {
			err = attesterr.New(attesterr.KindSigning, "Signing failed", err)
		}
		return nil, err
	}

	s.log.Infof("Attested intent %s: payment %q, %d cents", intentHash.Hex(), payment.TransactionID, payment.AmountCents)

	return &Result{
		Signature:  signed.Signature,
		Digest:     signed.Digest,
		DataHash:   signed.DataHash,
		Witness:    signed.Signer,
		IntentHash: intentHash,
		Payment: PaymentSummary{
			TransactionID:   payment.TransactionID,
			AmountCents:     payment.AmountCents,
			BeneficiaryIBAN: payment.BeneficiaryIBAN,
			Status:          payment.Status,
			Timestamp:       payment.Timestamp,
			Server:          payment.ServerName,
		},
	}, nil
}

// crossCheck compares the solver's declared payment with the verified one.
// Zero expectations skip the corresponding check.
func crossCheck(payment *verifier.VerifiedPayment, req *Request) error {
	if req.ExpectedAmountCents == 0 && req.ExpectedBeneficiaryIBAN == "" {
		return nil
	}

	if req.ExpectedAmountCents > 0 {
		if payment.AmountCents == 0 {
			return attesterr.MissingField("amount_cents")
		}
		if payment.AmountCents != req.ExpectedAmountCents {
			return attesterr.Rejected("Amount mismatch: expected %d cents, got %d cents",
				req.ExpectedAmountCents, payment.AmountCents)
		}
	}

	if req.ExpectedBeneficiaryIBAN != "" {
		if payment.BeneficiaryIBAN == "" {
			return attesterr.MissingField("beneficiary_iban")
		}
		expected, actual := NormalizeIBAN(req.ExpectedBeneficiaryIBAN), NormalizeIBAN(payment.BeneficiaryIBAN)
		if expected != actual {
			return attesterr.Rejected("IBAN mismatch: expected %s, got %s", expected, actual)
		}
	}

	return nil
}

// NormalizeIBAN strips whitespace and uppercases an IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, iban))
}
