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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleRuns(t *testing.T) {
	body := []byte(`XXXXXXX019b2249-50b2-7778-8b9eXXXXXXEI - MALYEN MalekXXXXXabXXXX---XXXX`)

	runs := VisibleRuns(body)

	assert.Equal(t, []string{"019b2249-50b2-7778-8b9e", "EI - MALYEN Malek"}, runs)
}

func TestVisibleRuns_Empty(t *testing.T) {
	assert.Empty(t, VisibleRuns(nil))
	assert.Empty(t, VisibleRuns([]byte("XXXXXXXX")))
	assert.Empty(t, VisibleRuns([]byte("a.X,,,X12")))
}

func TestParseRedacted(t *testing.T) {
	body := []byte(`XXXXXXX"id":"019b2249-50b2-7778-8b9e-1234567890ab"XXXXXXXX"iban":"FR7630006000011234567890189"XXXXXX"amount":"150.00"XXXXXXX`)

	f := parseRedacted(body)

	assert.Equal(t, "019b2249-50b2-7778-8b9e-1234567890ab", f.TransactionID)
	assert.Equal(t, "FR7630006000011234567890189", f.BeneficiaryIBAN)
	assert.Equal(t, int64(15000), f.AmountCents)
	assert.Empty(t, f.Status)
}

func TestParseRedacted_AmountForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{"keyed cents", `XX"amount_cents":12345XX`, 12345},
		{"keyed integer amount", `XX"amount": 42XX`, 4200},
		{"keyed decimal amount", `XXamount=99.5XX`, 9950},
		{"bare two-place decimal", `XXtotal EUR 1250.75 paidXX`, 125075},
		{"three places is not an amount", `XXrate 1.234 appliedXX`, 0},
		{"bare integer is not an amount", `XXref 987654XX`, 0},
		{"cents preferred over amount", `XX"amount":"1.00","amount_cents":100XX`, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRedacted([]byte(tt.body)).AmountCents)
		})
	}
}

func TestParseRedacted_Rejects(t *testing.T) {
	// Test Case 1: uppercase hex is not UUID-shaped for the pattern
	f := parseRedacted([]byte(`XX019B2249-50B2-7778-8B9E-1234567890ABXX`))
	assert.Empty(t, f.TransactionID)

	// Test Case 2: IBAN too short
	f = parseRedacted([]byte(`XXDE8937040044XX`))
	assert.Empty(t, f.BeneficiaryIBAN)

	// Test Case 3: first matching run wins
	f = parseRedacted([]byte(`XXDE89370400440532013000XXGB29NWBK60161331926819XX`))
	assert.Equal(t, "DE89370400440532013000", f.BeneficiaryIBAN)
}
