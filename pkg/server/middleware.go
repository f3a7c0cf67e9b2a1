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

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/protocol"
)

type contextKey string

const solverKey contextKey = "solver_address"

// AuthErrorHandler writes the response for a request rejected by
// authentication or rate limiting. err is ErrMissingAPIKey,
// ErrInvalidAPIKey or a *auth.RateLimitError.
type AuthErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// SolverAuthMiddleware resolves the X-Solver-API-Key header to a solver
// address and enforces the per-solver request quota
type SolverAuthMiddleware struct {
	auth         *auth.SolverAuth
	limiter      *auth.RateLimiter
	errorHandler AuthErrorHandler
	log          slog.Logger
}

// NewSolverAuthMiddleware creates the authentication middleware. A nil
// limiter disables rate limiting.
func NewSolverAuthMiddleware(a *auth.SolverAuth, limiter *auth.RateLimiter, log slog.Logger) *SolverAuthMiddleware {
	if log == nil {
		log = slog.Disabled
	}
	return &SolverAuthMiddleware{
		auth:         a,
		limiter:      limiter,
		errorHandler: defaultAuthErrorHandler,
		log:          log,
	}
}

// SetErrorHandler sets a custom error handler
func (m *SolverAuthMiddleware) SetErrorHandler(handler AuthErrorHandler) {
	m.errorHandler = handler
}

// Wrap wraps an HTTP handler with solver authentication
func (m *SolverAuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight carries no credentials
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.auth.Identify(r.Header.Get(protocol.APIKeyHeader))
		if err != nil {
			m.log.Warnf("Rejected request from %s: %v", r.RemoteAddr, err)
			m.errorHandler(w, r, http.StatusUnauthorized, err)
			return
		}

		if m.limiter != nil {
			if err := m.limiter.CheckAndIncrement(identity); err != nil {
				m.log.Warnf("Rate limit exceeded for solver %s: %v", identity, err)
				m.errorHandler(w, r, http.StatusTooManyRequests, err)
				return
			}
		}

		ctx := context.WithValue(r.Context(), solverKey, common.HexToAddress(identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSolverFromContext returns the authenticated solver address
func GetSolverFromContext(ctx context.Context) (common.Address, bool) {
	solver, ok := ctx.Value(solverKey).(common.Address)
	return solver, ok
}

func defaultAuthErrorHandler(w http.ResponseWriter, _ *http.Request, status int, err error) {
	resp := protocol.AuthErrorResponse{Success: false}

	var rl *auth.RateLimitError
	switch {
	case errors.As(err, &rl):
		resp.Error = "Rate limit exceeded"
		resp.RetryAfter = rl.RetryAfter
		w.Header().Set("Retry-After", strconv.FormatInt(rl.RetryAfter, 10))
	case errors.Is(err, auth.ErrMissingAPIKey):
		resp.Error = "Missing " + protocol.APIKeyHeader + " header"
	case errors.Is(err, auth.ErrInvalidAPIKey):
		resp.Error = "Invalid API key"
	default:
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}
