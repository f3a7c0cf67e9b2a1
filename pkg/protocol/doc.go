// Package protocol defines the JSON wire format of the attestation API.
//
// The service exposes two routes, each also served under the /api/v1
// prefix:
//
//	POST /attest   AttestRequest  -> AttestResponse
//	GET  /health                  -> HealthResponse
//
// # Requests
//
// An AttestRequest carries the presentation artifact as standard base64 and
// the intent hash as 0x-prefixed hex:
//
//	req := protocol.AttestRequest{
//	    Presentation:            protocol.EncodePresentation(artifact),
//	    IntentHash:              "0x" + hex.EncodeToString(intent[:]),
//	    ExpectedAmountCents:     10000,
//	    ExpectedBeneficiaryIBAN: "DE89370400440532013000",
//	}
//
// Solvers authenticate with the X-Solver-API-Key header when the service
// has API keys configured.
//
// # Errors
//
// Attestation failures return ErrorResponse with the HTTP status repeated in
// Code. Authentication and rate limiting failures return AuthErrorResponse;
// 429 responses carry RetryAfter in seconds.
package protocol
