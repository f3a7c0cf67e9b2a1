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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/protocol"
)

const (
	testAPIKey = "solver-key"
	testSolver = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func newTestAuth() *auth.SolverAuth {
	return auth.NewSolverAuth(map[string]string{testAPIKey: testSolver}, nil)
}

// Test NewSolverAuthMiddleware creates middleware
func TestNewSolverAuthMiddleware(t *testing.T) {
	middleware := NewSolverAuthMiddleware(newTestAuth(), auth.NewRateLimiter(10), nil)

	assert.NotNil(t, middleware)
	assert.NotNil(t, middleware.auth)
	assert.NotNil(t, middleware.errorHandler)
}

// Test valid API key puts the solver in the context
func TestSolverAuthMiddleware_ValidKey(t *testing.T) {
	middleware := NewSolverAuthMiddleware(newTestAuth(), auth.NewRateLimiter(10), nil)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		solver, ok := GetSolverFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, testSolver, solver.Hex())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/attest", nil)
	req.Header.Set(protocol.APIKeyHeader, testAPIKey)
	rr := httptest.NewRecorder()

	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Test missing and invalid keys are rejected with 401
func TestSolverAuthMiddleware_Unauthorized(t *testing.T) {
	tests := map[string]struct {
		key  string
		want string
	}{
		"missing key": {key: "", want: "Missing X-Solver-API-Key header"},
		"invalid key": {key: "nope", want: "Invalid API key"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			middleware := NewSolverAuthMiddleware(newTestAuth(), auth.NewRateLimiter(10), nil)

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			req := httptest.NewRequest(http.MethodPost, "/attest", nil)
			if tt.key != "" {
				req.Header.Set(protocol.APIKeyHeader, tt.key)
			}
			rr := httptest.NewRecorder()
			middleware.Wrap(handler).ServeHTTP(rr, req)

			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var resp protocol.AuthErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.want, resp.Error)
			assert.Zero(t, resp.RetryAfter)
		})
	}
}

// Test the sixth request within a window is rate limited
func TestSolverAuthMiddleware_RateLimited(t *testing.T) {
	middleware := NewSolverAuthMiddleware(newTestAuth(), auth.NewRateLimiter(5), nil)
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/attest", nil)
		req.Header.Set(protocol.APIKeyHeader, testAPIKey)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, send().Code, "request %d", i+1)
	}

	rr := send()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	var resp protocol.AuthErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Rate limit exceeded", resp.Error)
	assert.Greater(t, resp.RetryAfter, int64(0))
}

// Test disabled auth attributes requests to the zero address
func TestSolverAuthMiddleware_AuthDisabled(t *testing.T) {
	middleware := NewSolverAuthMiddleware(auth.NewSolverAuth(nil, nil), nil, nil)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		solver, ok := GetSolverFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, auth.AnonymousIdentity, solver.Hex())
	})

	req := httptest.NewRequest(http.MethodPost, "/attest", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, handlerCalled)
}

// Test custom error handler
func TestSolverAuthMiddleware_CustomErrorHandler(t *testing.T) {
	middleware := NewSolverAuthMiddleware(newTestAuth(), nil, nil)

	customErrorCalled := false
	middleware.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, status int, err error) {
		customErrorCalled = true
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.ErrorIs(t, err, auth.ErrInvalidAPIKey)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("custom error"))
	})

	req := httptest.NewRequest(http.MethodPost, "/attest", nil)
	req.Header.Set(protocol.APIKeyHeader, "wrong")
	rr := httptest.NewRecorder()
	middleware.Wrap(http.NotFoundHandler()).ServeHTTP(rr, req)

	assert.True(t, customErrorCalled)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "custom error", rr.Body.String())
}

// Test GetSolverFromContext with no solver
func TestGetSolverFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetSolverFromContext(req.Context())
	assert.False(t, ok)
}

// Test OPTIONS requests bypass authentication
func TestSolverAuthMiddleware_OptionsRequest(t *testing.T) {
	middleware := NewSolverAuthMiddleware(newTestAuth(), nil, nil)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/attest", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, rr.Code)
}
