// Package client provides a Go client for the attestation API.
//
// The client attaches the solver API key to every request and decodes the
// service's JSON responses. Error responses are returned as *APIError,
// which carries the HTTP status and, for rate limited requests, the number
// of seconds to wait.
//
// # Basic Usage
//
//	c := client.NewAttestClient("https://attest.example.com", apiKey, nil)
//
//	resp, err := c.Attest(ctx, &protocol.AttestRequest{
//	    Presentation:            protocol.EncodePresentation(artifact),
//	    IntentHash:              intentHash.Hex(),
//	    ExpectedAmountCents:     10000,
//	    ExpectedBeneficiaryIBAN: "DE89370400440532013000",
//	})
//	if err != nil {
//	    var apiErr *client.APIError
//	    if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
//	        // back off
//	    }
//	    return err
//	}
//
// # Verifying Attestations
//
// VerifyResponse recomputes the EIP-712 digest from the response fields and
// checks that the signature recovers to the witness address the on-chain
// verifier trusts. The witness address is published by GET /health but
// should be pinned by the caller.
//
//	health, _ := c.Health(ctx)
//	domain := signer.NewDomain(health.ChainID, verifierContract)
//	err = client.VerifyResponse(domain, intentHash, resp, pinnedWitness)
//
// # Custom HTTP Client
//
//	httpClient := &http.Client{Timeout: 30 * time.Second}
//	c := client.NewAttestClient(baseURL, apiKey, httpClient)
package client
