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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const qontoJSON = `{"transaction":{"id":"tx-123","amount_cents":10000,"status":"completed","counterparty":{"iban":"DE89370400440532013000"}}}`

func httpResponse(body string) string {
	return "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n" + body
}

// newTestPresentation builds a presentation disclosing the given substrings
// of received; with no substrings everything is disclosed
func newTestPresentation(t testing.TB, server, received string, disclose ...string) *Presentation {
	t.Helper()

	p := &Presentation{
		Version:    PresentationVersion,
		ServerName: server,
		Time:       1700000000,
		Sent:       []byte("GET /v2/transactions/tx-123 HTTP/1.1\r\nHost: " + server + "\r\n\r\n"),
		Received:   []byte(received),
	}
	if len(disclose) == 0 {
		p.Disclosed = []Range{{Start: 0, End: uint64(len(received))}}
		return p
	}

	from := 0
	for _, d := range disclose {
		i := strings.Index(received[from:], d)
		require.GreaterOrEqual(t, i, 0, "substring %q not found", d)
		start := from + i
		p.Disclosed = append(p.Disclosed, Range{Start: uint64(start), End: uint64(start + len(d))})
		from = start + len(d)
	}
	return p
}

// newTestArtifact notarizes a presentation and returns its encoding
func newTestArtifact(t testing.TB, n *Notary, p *Presentation) []byte {
	t.Helper()
	require.NoError(t, n.Notarize(p))
	return p.Marshal()
}

func newTestNotary(t testing.TB) *Notary {
	t.Helper()
	n, err := GenerateNotary()
	require.NoError(t, err)
	return n
}
