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

package verifier

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// RedactionSentinel replaces every undisclosed transcript byte.
const RedactionSentinel = 'X'

// minVisibleRun is the shortest disclosed run considered meaningful.
const minVisibleRun = 3

var (
	uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	ibanPattern = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z0-9]{10,28}`)

	keyedCentsPattern    = regexp.MustCompile(`amount_cents"?\s*[:=]\s*"?(\d{1,15})`)
	keyedAmountPattern   = regexp.MustCompile(`amount"?\s*[:=]\s*"?(\d{1,13}(?:\.\d{1,2})?)`)
	decimalAmountPattern = regexp.MustCompile(`(?:^|[^0-9.])(\d{1,13}\.\d{2})(?:$|[^0-9])`)
)

// VisibleRuns splits a masked body on the sentinel and keeps runs of at
// least three bytes that contain a letter or digit.
func VisibleRuns(body []byte) []string {
	var runs []string
	for _, part := range bytes.Split(body, []byte{RedactionSentinel}) {
		if len(part) < minVisibleRun {
			continue
		}
		s := string(part)
		if strings.IndexFunc(s, isAlphanumeric) < 0 {
			continue
		}
		runs = append(runs, s)
	}
	return runs
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseRedacted recovers what it can from a masked body that is not valid
// JSON. Results are lower confidence than parseStructured and no status is
// extracted.
func parseRedacted(body []byte) paymentFields {
	var f paymentFields
	for _, run := range VisibleRuns(body) {
		if f.TransactionID == "" {
			f.TransactionID = findUUID(run)
		}
		if f.BeneficiaryIBAN == "" {
			f.BeneficiaryIBAN = ibanPattern.FindString(run)
		}
		if f.AmountCents == 0 {
			f.AmountCents = findAmount(run)
		}
	}
	return f
}

func findUUID(s string) string {
	for _, m := range uuidPattern.FindAllString(s, -1) {
		if _, err := uuid.Parse(m); err == nil {
			return m
		}
	}
	return ""
}

// findAmount looks for an amount keyed by name first, then for any decimal
// with exactly two fractional digits.
func findAmount(s string) int64 {
	if m := keyedCentsPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil && v != 0 {
			return v
		}
	}
	if m := keyedAmountPattern.FindStringSubmatch(s); m != nil {
		if v := decimalToCents(m[1]); v != 0 {
			return v
		}
	}
	if m := decimalAmountPattern.FindStringSubmatch(s); m != nil {
		return decimalToCents(m[1])
	}
	return 0
}
