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
	"encoding/json"
	"math/big"
	"strings"
)

// lookupPath is a sequence of object keys.
type lookupPath []string

// Beneficiary IBAN locations, highest priority first.
var ibanPaths = []lookupPath{
	{"transfer", "counterparty_account_number"},
	{"counterparty", "iban"},
	{"counterparty", "account_number"},
	{"beneficiary", "iban"},
	{"beneficiary_iban"},
}

var (
	centsKeys  = []string{"amount_cents", "local_amount_cents"}
	statusKeys = []string{"status", "operation_type"}
)

// ExtractBody returns the HTTP response body: everything after the first
// "\r\n\r\n", or after the first "\n\n". ok is false when neither exists.
func ExtractBody(response []byte) (body []byte, ok bool) {
	if i := bytes.Index(response, []byte("\r\n\r\n")); i >= 0 {
		return response[i+4:], true
	}
	if i := bytes.Index(response, []byte("\n\n")); i >= 0 {
		return response[i+2:], true
	}
	return nil, false
}

// jsonSpan returns body from the first '{' to the last '}' inclusive.
func jsonSpan(body []byte) ([]byte, bool) {
	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, false
	}
	end := bytes.LastIndexByte(body, '}')
	if end < start {
		return nil, false
	}
	return body[start : end+1], true
}

// parseStructured decodes a JSON payment document. ok is false when span is
// not valid JSON.
func parseStructured(span []byte) (paymentFields, bool) {
	dec := json.NewDecoder(bytes.NewReader(span))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return paymentFields{}, false
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return paymentFields{}, false
	}

	tx := transactionObject(obj)

	var f paymentFields
	f.TransactionID, _ = tx["id"].(string)
	f.AmountCents = amountCents(tx)
	for _, p := range ibanPaths {
		if s, ok := lookupString(tx, p); ok {
			f.BeneficiaryIBAN = s
			break
		}
	}
	for _, k := range statusKeys {
		if s, ok := tx[k].(string); ok {
			f.Status = s
			break
		}
	}
	return f, true
}

// transactionObject picks the object that describes the payment.
func transactionObject(root map[string]any) map[string]any {
	if tx, ok := root["transaction"].(map[string]any); ok {
		return tx
	}
	if list, ok := root["transactions"].([]any); ok && len(list) > 0 {
		if tx, ok := list[0].(map[string]any); ok {
			return tx
		}
	}
	if tx, ok := root["transfer"].(map[string]any); ok {
		return tx
	}
	return root
}

func lookupString(obj map[string]any, path lookupPath) (string, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[key]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

// amountCents prefers integer cent fields, then a decimal "amount" scaled
// by 100 and truncated. Zero means absent.
func amountCents(tx map[string]any) int64 {
	for _, k := range centsKeys {
		if n, ok := tx[k].(json.Number); ok {
			if v, err := n.Int64(); err == nil && v != 0 {
				return v
			}
		}
	}

	var raw string
	switch v := tx["amount"].(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0
	}
	return decimalToCents(raw)
}

// decimalToCents converts a decimal string to cents, truncating toward
// zero. It returns 0 for unparsable or out-of-range input.
func decimalToCents(s string) int64 {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0
	}
	r.Mul(r, big.NewRat(100, 1))
	cents := new(big.Int).Quo(r.Num(), r.Denom())
	if !cents.IsInt64() {
		return 0
	}
	return cents.Int64()
}
