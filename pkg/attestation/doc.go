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

// Package attestation composes intent validation, presentation verification
// and signing into a single attestation operation.
//
// Service.Attest runs, in order:
//
//  1. an intent hash length check
//  2. on-chain intent validation, when an IntentValidator is configured
//  3. presentation verification and field extraction
//  4. cross-checks of the solver's declared amount and IBAN
//  5. EIP-712 signing of the verified payment
//
// A Result is returned only when every step succeeds. Failures carry an
// attesterr.Kind that the HTTP layer maps to a status code.
package attestation
