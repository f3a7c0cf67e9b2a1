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

// Package verifier authenticates notarized TLS presentations and extracts the
// payment they disclose.
//
// # Presentation Format
//
// A presentation is a protobuf-wire message:
//
//	1 version    varint  (must be 1)
//	2 server     bytes   TLS server name
//	3 time       varint  session time, unix seconds
//	4 sent       bytes   request bytes
//	5 received   bytes   response bytes
//	6 disclosed  message {1 start, 2 end}, repeated, ranges over received
//	7 signature  bytes   notary r || s || v over the commitment
//
// Received bytes outside the disclosed ranges are not committed by the
// notary and are replaced with the sentinel 'X' before anything reads them.
//
// # Verification
//
//	roots, _ := verifier.ParseTrustRoots([]string{"0xNotary..."})
//	v := verifier.NewDefaultPresentationVerifier(roots)
//
//	payment, err := v.Verify(ctx, artifact, []string{"thirdparty.qonto.com"})
//	if err != nil {
//	    // forged, malformed, untrusted or wrong server
//	}
//
// The TranscriptVerifier interface isolates the cryptographic check; the
// default NotarySignatureVerifier recovers the notary address from its
// secp256k1 signature and asks the TrustRootProvider about it.
//
// # Field Extraction
//
// The response body starts after the first blank line. When the body holds
// a JSON object, fields are read from "transaction", "transactions[0]" or
// "transfer":
//
//   - id                      transaction id
//   - amount_cents            preferred, then local_amount_cents, then amount x 100
//   - IBAN                    transfer.counterparty_account_number, counterparty.iban,
//     counterparty.account_number, beneficiary.iban, beneficiary_iban
//   - status                  status, then operation_type
//
// Heavily redacted bodies that are not valid JSON go through a regular
// expression fallback over the visible runs (UUID, IBAN, amount). Missing
// fields never fail verification; the caller decides which ones it needs.
package verifier
