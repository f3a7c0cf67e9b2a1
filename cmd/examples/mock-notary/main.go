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

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sage-x-project/sage-attest/pkg/protocol"
	"github.com/sage-x-project/sage-attest/pkg/verifier"
)

const defaultBody = `{"transaction":{"id":"tx-123","amount_cents":10000,"status":"completed","counterparty":{"iban":"DE89370400440532013000"}}}`

// This example produces a notarized presentation artifact that the
// attestation service accepts when the printed notary address is listed in
// NOTARY_TRUST_ROOTS.
func main() {
	keyHex := flag.String("key", "", "notary private key (hex); a fresh key is generated when empty")
	server := flag.String("server", "thirdparty.qonto.com", "TLS server name recorded in the presentation")
	bodyFile := flag.String("body", "", "file holding the HTTP response body; a sample transfer is used when empty")
	redact := flag.String("redact", "", "comma-separated substrings of the body to mask")
	out := flag.String("out", "presentation.b64", "output file for the base64 artifact")
	flag.Parse()

	fmt.Println("=== Mock Notary ===")

	// Step 1: Load or generate the notary key
	notary, err := loadNotary(*keyHex)
	if err != nil {
		log.Fatalf("Failed to load notary key: %v", err)
	}
	fmt.Printf("Step 1: Notary address %s\n", notary.Address().Hex())
	if *keyHex == "" {
		fmt.Printf("  Generated key: 0x%s\n", hex.EncodeToString(notary.PrivateKey()))
	}

	// Step 2: Build the transcript
	body := defaultBody
	if *bodyFile != "" {
		data, err := os.ReadFile(*bodyFile)
		if err != nil {
			log.Fatalf("Failed to read body: %v", err)
		}
		body = string(data)
	}
	received := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n" + body
	p := &verifier.Presentation{
		Version:    verifier.PresentationVersion,
		ServerName: *server,
		Time:       uint64(time.Now().Unix()),
		Sent:       []byte("GET /v2/transactions HTTP/1.1\r\nHost: " + *server + "\r\n\r\n"),
		Received:   []byte(received),
		Disclosed:  discloseAllBut(received, *redact),
	}
	fmt.Printf("Step 2: Transcript for %s, %d bytes received, %d disclosed ranges\n",
		p.ServerName, len(p.Received), len(p.Disclosed))

	// Step 3: Notarize
	if err := notary.Notarize(p); err != nil {
		log.Fatalf("Failed to notarize: %v", err)
	}
	fmt.Println("Step 3: Presentation notarized")
	fmt.Printf("  Verifier sees: %s\n", p.Masked())

	// Step 4: Write the artifact
	encoded := protocol.EncodePresentation(p.Marshal())
	if err := os.WriteFile(*out, []byte(encoded), 0o644); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}
	fmt.Printf("Step 4: Wrote %s (%d bytes)\n", *out, len(encoded))

	fmt.Println("\nStart attestd with:")
	fmt.Printf("  NOTARY_TRUST_ROOTS=%s ALLOWED_SERVERS=%s\n", notary.Address().Hex(), *server)
}

func loadNotary(keyHex string) (*verifier.Notary, error) {
	if keyHex == "" {
		return verifier.GenerateNotary()
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, err
	}
	return verifier.NewNotary(raw)
}

// discloseAllBut returns ranges covering received except every occurrence
// of the comma-separated substrings in redact
func discloseAllBut(received, redact string) []verifier.Range {
	masked := make([]bool, len(received))
	for _, s := range strings.Split(redact, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(received[from:], s)
			if i < 0 {
				break
			}
			for j := from + i; j < from+i+len(s); j++ {
				masked[j] = true
			}
			from += i + len(s)
		}
	}

	var ranges []verifier.Range
	start := -1
	for i := 0; i <= len(received); i++ {
		visible := i < len(received) && !masked[i]
		switch {
		case visible && start < 0:
			start = i
		case !visible && start >= 0:
			ranges = append(ranges, verifier.Range{Start: uint64(start), End: uint64(i)})
			start = -1
		}
	}
	return ranges
}
