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

package server

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sage-x-project/sage-attest/pkg/attestation"
	"github.com/sage-x-project/sage-attest/pkg/attesterr"
	"github.com/sage-x-project/sage-attest/pkg/audit"
	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/protocol"
	"github.com/sage-x-project/sage-attest/pkg/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, protocol.HealthResponse{
		Status:                 "ok",
		WitnessAddress:         s.service.Witness().Hex(),
		ChainID:                s.service.Domain().ChainID,
		AuthEnabled:            s.auth.Enabled(),
		ChainValidationEnabled: s.service.ChainValidationEnabled(),
		Version:                version.Version,
	})
}

func (s *Server) handleAttest(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	ctx := r.Context()

	solver, ok := GetSolverFromContext(ctx)
	if !ok {
		solver = common.HexToAddress(auth.AnonymousIdentity)
	}

	entry := audit.Entry{
		ClientRequestID: middleware.GetReqID(ctx),
		SolverAddress:   solver.Hex(),
		RequestIP:       r.RemoteAddr,
	}
	finish := func(result audit.Result) {
		entry.Result = result
		entry.DurationMs = s.now().Sub(start).Milliseconds()
		s.recorder.Record(ctx, entry)
	}
	fail := func(err error) {
		kind := attesterr.KindOf(err)
		status := attesterr.HTTPStatus(kind)
		if attesterr.IsClientError(kind) {
			finish(audit.Rejected(err.Error()))
		} else {
			s.log.Errorf("Attestation for intent %s failed: %v", entry.IntentHash, err)
			finish(audit.Failed(err.Error()))
		}
		writeError(w, status, err.Error())
	}

	var body protocol.AttestRequest
	if err := readJSON(w, r, &body); err != nil {
		fail(attesterr.InvalidInput("Invalid request body: %v", err))
		return
	}
	entry.IntentHash = body.IntentHash
	entry.AmountCents = body.ExpectedAmountCents

	intentHash, err := protocol.ParseIntentHash(body.IntentHash)
	if err != nil {
		fail(attesterr.InvalidInput("Invalid intent hash: %v", err))
		return
	}
	presentation, err := protocol.DecodePresentation(body.Presentation)
	if err != nil {
		fail(attesterr.InvalidInput("Deserialization error: %v", err))
		return
	}

	res, err := s.service.Attest(ctx, &attestation.Request{
		Presentation:            presentation,
		IntentHash:              intentHash,
		ExpectedAmountCents:     body.ExpectedAmountCents,
		ExpectedBeneficiaryIBAN: body.ExpectedBeneficiaryIBAN,
	}, solver)
	if err != nil {
		fail(err)
		return
	}

	entry.PaymentID = res.Payment.TransactionID
	entry.AmountCents = res.Payment.AmountCents
	finish(audit.Success())

	writeJSON(w, http.StatusOK, attestResponse(res))
}

func attestResponse(res *attestation.Result) protocol.AttestResponse {
	var txID *string
	if res.Payment.TransactionID != "" {
		id := res.Payment.TransactionID
		txID = &id
	}
	return protocol.AttestResponse{
		Success:   true,
		Signature: res.Signature.Hex(),
		Digest:    res.Digest.Hex(),
		DataHash:  res.DataHash.Hex(),
		Payment: protocol.PaymentDetails{
			TransactionID:   txID,
			AmountCents:     res.Payment.AmountCents,
			BeneficiaryIBAN: res.Payment.BeneficiaryIBAN,
			Status:          res.Payment.Status,
			Timestamp:       res.Payment.Timestamp,
			Server:          res.Payment.Server,
		},
	}
}
