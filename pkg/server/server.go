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
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/decred/slog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sage-x-project/sage-attest/pkg/attestation"
	"github.com/sage-x-project/sage-attest/pkg/audit"
	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/protocol"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 10 * time.Second
	WriteTimeout      = 60 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 15 * time.Second
)

// Server serves the attestation HTTP API.
type Server struct {
	service  *attestation.Service
	auth     *auth.SolverAuth
	authMW   *SolverAuthMiddleware
	recorder *audit.Recorder
	log      slog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder sets the audit recorder. Without one, outcomes are not audited.
func WithRecorder(r *audit.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger sets the server logger.
func WithLogger(log slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New creates the API server. A nil limiter disables rate limiting.
func New(svc *attestation.Service, a *auth.SolverAuth, limiter *auth.RateLimiter, opts ...Option) *Server {
	s := &Server{
		service: svc,
		auth:    a,
		log:     slog.Disabled,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder == nil {
		s.recorder = audit.NewRecorder(s.log)
	}
	s.authMW = NewSolverAuthMiddleware(a, limiter, s.log)
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	routes := func(r chi.Router) {
		r.Get(protocol.HealthPath, s.handleHealth)
		r.With(s.authMW.Wrap).Post(protocol.AttestPath, s.handleAttest)
	}
	routes(r)
	r.Route(protocol.APIPrefix, routes)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Attestation API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Infof("Shutting down attestation API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
