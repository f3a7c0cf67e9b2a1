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
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sage-x-project/sage-attest/pkg/client"
	"github.com/sage-x-project/sage-attest/pkg/protocol"
	"github.com/sage-x-project/sage-attest/pkg/signer"
)

// This example submits a presentation artifact produced by mock-notary and
// verifies the returned attestation.
func main() {
	url := flag.String("url", "http://localhost:4001", "attestation service URL")
	apiKey := flag.String("api-key", os.Getenv("SOLVER_API_KEY"), "solver API key")
	artifact := flag.String("artifact", "presentation.b64", "base64 presentation artifact")
	intent := flag.String("intent", "0x1111111111111111111111111111111111111111111111111111111111111111", "intent hash")
	amount := flag.Int64("amount", 0, "expected amount in cents (0 skips the check)")
	iban := flag.String("iban", "", "expected beneficiary IBAN (empty skips the check)")
	verifierContract := flag.String("verifier", common.Address{}.Hex(), "EIP-712 verifying contract")
	flag.Parse()

	fmt.Println("=== sage-attest Simple Client ===")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.NewAttestClient(*url, *apiKey, nil)

	// Step 1: Check the service
	fmt.Println("\n1. Checking service health...")
	health, err := c.Health(ctx)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("   Witness: %s\n", health.WitnessAddress)
	fmt.Printf("   Chain ID: %d\n", health.ChainID)
	fmt.Printf("   Auth enabled: %v, chain validation: %v\n", health.AuthEnabled, health.ChainValidationEnabled)

	// Step 2: Submit the presentation
	fmt.Println("\n2. Requesting attestation...")
	data, err := os.ReadFile(*artifact)
	if err != nil {
		log.Fatalf("Failed to read artifact: %v", err)
	}
	resp, err := c.Attest(ctx, &protocol.AttestRequest{
		Presentation:            strings.TrimSpace(string(data)),
		IntentHash:              *intent,
		ExpectedAmountCents:     *amount,
		ExpectedBeneficiaryIBAN: *iban,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			log.Fatalf("Rate limited, retry in %d seconds", apiErr.RetryAfter)
		}
		log.Fatalf("Attestation failed: %v", err)
	}
	fmt.Printf("   Payment: %s, %d cents to %s\n", resp.Payment.PaymentID(), resp.Payment.AmountCents, resp.Payment.BeneficiaryIBAN)
	fmt.Printf("   Signature: %s\n", resp.Signature)

	// Step 3: Verify the signature locally
	fmt.Println("\n3. Verifying attestation...")
	domain := signer.NewDomain(health.ChainID, common.HexToAddress(*verifierContract))
	if err := client.VerifyResponse(domain, common.HexToHash(*intent), resp, common.HexToAddress(health.WitnessAddress)); err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	fmt.Println("   Signature recovers to the witness")

	fmt.Println("\nExample completed!")
}
