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

// Package attesterr defines the error taxonomy shared by the attestation
// pipeline. Every failure surfaced to a solver carries a Kind, which decides
// the HTTP status and how the outcome is audited.
package attesterr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindInternal is used for errors that do not carry a Kind.
	KindInternal Kind = iota
	// KindInputValidation covers malformed hex, lengths and encodings.
	KindInputValidation
	// KindVerification means the presentation is invalid or from the wrong server.
	KindVerification
	// KindExtraction means a required field was absent after verification.
	KindExtraction
	// KindChainTransport means the RPC endpoint was unreachable or answered garbage.
	KindChainTransport
	// KindBusinessRejection covers status, authorization and amount mismatches.
	KindBusinessRejection
	// KindSigning means the witness key could not produce a signature.
	KindSigning
)

func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "input_validation"
	case KindVerification:
		return "verification_failure"
	case KindExtraction:
		return "extraction_failure"
	case KindChainTransport:
		return "chain_transport"
	case KindBusinessRejection:
		return "business_rejection"
	case KindSigning:
		return "signing_failure"
	default:
		return "internal"
	}
}

// Error is a classified pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Newf creates a classified error without a cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput creates a KindInputValidation error.
func InvalidInput(format string, args ...any) *Error {
	return Newf(KindInputValidation, format, args...)
}

// Rejected creates a KindBusinessRejection error.
func Rejected(format string, args ...any) *Error {
	return Newf(KindBusinessRejection, format, args...)
}

// MissingField reports a payment field that business validation required but
// the presentation did not disclose.
func MissingField(field string) *Error {
	return &Error{Kind: KindExtraction, Message: fmt.Sprintf("Missing field: %s", field)}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to the status code returned to solvers.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInputValidation, KindVerification, KindExtraction, KindBusinessRejection:
		return http.StatusBadRequest
	case KindChainTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the failure was caused by the request rather
// than by the service.
func IsClientError(kind Kind) bool {
	return HTTPStatus(kind) == http.StatusBadRequest
}
