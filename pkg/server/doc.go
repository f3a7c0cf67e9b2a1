// Package server exposes the attestation service over HTTP.
//
// Routes are served both at the root and under /api/v1:
//
//	GET  /health   service status, witness address and chain id
//	POST /attest   verify a presentation and return a signed attestation
//
// POST /attest is wrapped by SolverAuthMiddleware, which resolves the
// X-Solver-API-Key header to a solver address and applies the per-solver
// rate limit. When no API keys are configured every request is attributed
// to the zero address and still rate limited.
//
// # Basic Usage
//
//	svc := attestation.NewService(v, sig, domain, allowed)
//	srv := server.New(svc, solverAuth, auth.NewRateLimiter(100),
//	    server.WithRecorder(recorder),
//	    server.WithLogger(log),
//	)
//	err := srv.Run(ctx, ":4001")
//
// # Errors
//
// Attestation failures are returned as {"error": message, "code": status}
// where the status follows attesterr.HTTPStatus. Authentication failures
// return 401 and rate limiting 429, both as
// {"success": false, "error": message} with retry_after on 429.
//
// Every POST /attest outcome that reaches the handler is recorded through
// the audit.Recorder. The chi request id, which honours an incoming
// X-Request-Id header, is kept as the entry's client request id; the
// entry's own request id is always generated by the Recorder.
package server
