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

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/decred/slog"
)

const (
	// DefaultTimeout bounds a single RPC attempt.
	DefaultTimeout = 10 * time.Second

	defaultRetryMin = 50 * time.Millisecond
	defaultRetryMax = 150 * time.Millisecond

	maxResponseSize = 4 << 20
)

// ErrMalformedResponse is returned when the endpoint answers with something
// that is not a JSON-RPC 2.0 response.
var ErrMalformedResponse = errors.New("malformed JSON-RPC response")

// Transport issues JSON-RPC calls.
type Transport interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// StatusError is returned for non-200 HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// jsonRPCRequest represents a JSON-RPC 2.0 request
type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint64 `json:"id"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// HTTPTransport implements Transport over HTTP POST.
type HTTPTransport struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	retryMin   time.Duration
	retryMax   time.Duration
	nextID     atomic.Uint64
	log        slog.Logger
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// WithTimeout bounds each attempt. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithRetryDelay sets the jitter interval waited before the single retry.
func WithRetryDelay(min, max time.Duration) Option {
	return func(t *HTTPTransport) {
		if min >= 0 && max >= min {
			t.retryMin, t.retryMax = min, max
		}
	}
}

// WithLogger sets the transport logger.
func WithLogger(log slog.Logger) Option {
	return func(t *HTTPTransport) {
		t.log = log
	}
}

// NewHTTPTransport creates a transport posting to url.
func NewHTTPTransport(url string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		url:        url,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		retryMin:   defaultRetryMin,
		retryMax:   defaultRetryMax,
		log:        slog.Disabled,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Call makes a JSON-RPC 2.0 call and returns the raw result.
func (t *HTTPTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      t.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON-RPC request: %w", err)
	}

	result, err := t.attempt(ctx, body)
	if err == nil || !retryable(ctx, err) {
		return result, err
	}

	delay := t.retryMin
	if span := t.retryMax - t.retryMin; span > 0 {
		delay += rand.N(span)
	}
	t.log.Debugf("%s failed (%v), retrying in %v", method, err, delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w (retry abandoned: %v)", err, ctx.Err())
	case <-timer.C:
	}

	return t.attempt(ctx, body)
}

func (t *HTTPTransport) attempt(ctx context.Context, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rpcResp.JSONRPC != "2.0" {
		return nil, fmt.Errorf("%w: jsonrpc version %q", ErrMalformedResponse, rpcResp.JSONRPC)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil, fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}

	return rpcResp.Result, nil
}

// retryable reports whether err is a transport failure worth one more try.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return true
}
