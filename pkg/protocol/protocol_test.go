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

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentHash(t *testing.T) {
	want := make([]byte, 32)
	want[31] = 1

	for _, in := range []string{
		"0x0000000000000000000000000000000000000000000000000000000000000001",
		"0000000000000000000000000000000000000000000000000000000000000001",
		" 0X0000000000000000000000000000000000000000000000000000000000000001 ",
	} {
		got, err := ParseIntentHash(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	short, err := ParseIntentHash("0xabcd")
	require.NoError(t, err)
	assert.Len(t, short, 2)

	_, err = ParseIntentHash("0xzz")
	assert.ErrorContains(t, err, "invalid hex")
}

func TestPresentationEncoding(t *testing.T) {
	raw := []byte{0x08, 0x01, 0x12, 0x03, 'a', 'b', 'c'}
	got, err := DecodePresentation(EncodePresentation(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodePresentation("not base64!")
	assert.ErrorContains(t, err, "invalid base64")
}

func TestPaymentDetailsJSON(t *testing.T) {
	t.Run("absent transaction id is null", func(t *testing.T) {
		b, err := json.Marshal(PaymentDetails{AmountCents: 5, Server: "bank"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"transaction_id":null,"amount_cents":5,"beneficiary_iban":"","timestamp":0,"server":"bank"}`, string(b))
		assert.Equal(t, "", PaymentDetails{}.PaymentID())
	})

	t.Run("present transaction id", func(t *testing.T) {
		id := "tx-123"
		p := PaymentDetails{TransactionID: &id}
		assert.Equal(t, "tx-123", p.PaymentID())
	})

	t.Run("retry after omitted when zero", func(t *testing.T) {
		b, err := json.Marshal(AuthErrorResponse{Error: "Invalid API key"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":"Invalid API key"}`, string(b))
	})
}
