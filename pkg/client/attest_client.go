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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sage-x-project/sage-attest/pkg/protocol"
	"github.com/sage-x-project/sage-attest/pkg/signer"
)

// maxResponseBody bounds responses read from the service
const maxResponseBody = 1 << 20

// APIError is a non-200 response from the attestation service
type APIError struct {
	StatusCode int
	Message    string
	// RetryAfter is set for 429 responses, in seconds
	RetryAfter int64
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("attestation service returned %d: %s (retry after %ds)", e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("attestation service returned %d: %s", e.StatusCode, e.Message)
}

// AttestClient is an HTTP client for the attestation API that attaches the
// solver API key to every request
type AttestClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAttestClient creates a client for the service at baseURL.
// If httpClient is nil, http.DefaultClient is used. An empty apiKey sends
// no key header.
func NewAttestClient(baseURL, apiKey string, httpClient *http.Client) *AttestClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AttestClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Do executes an HTTP request with the API key attached
func (c *AttestClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Check context first
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set(protocol.APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return resp, nil
}

// Post sends a POST request with a JSON body
func (c *AttestClient) Post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Get sends a GET request
func (c *AttestClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(ctx, req)
}

// Attest submits an attestation request. Non-200 responses are returned
// as *APIError.
func (c *AttestClient) Attest(ctx context.Context, req *protocol.AttestRequest) (*protocol.AttestResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.Post(ctx, protocol.APIPrefix+protocol.AttestPath, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out protocol.AttestResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the service status
func (c *AttestClient) Health(ctx context.Context) (*protocol.HealthResponse, error) {
	resp, err := c.Get(ctx, protocol.APIPrefix+protocol.HealthPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out protocol.HealthResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBaseURL returns the service base URL
func (c *AttestClient) GetBaseURL() string {
	return c.baseURL
}

func decodeResponse(resp *http.Response, dst any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error      string `json:"error"`
			RetryAfter int64  `json:"retry_after"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.RetryAfter = e.RetryAfter
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// VerifyResponse recomputes the digest of resp for intentHash under domain
// and checks that the signature recovers to expectedWitness
func VerifyResponse(domain signer.Domain, intentHash common.Hash, resp *protocol.AttestResponse, expectedWitness common.Address) error {
	if resp == nil || !resp.Success {
		return fmt.Errorf("response is not a successful attestation")
	}
	if resp.Payment.AmountCents < 0 {
		return fmt.Errorf("negative attested amount %d", resp.Payment.AmountCents)
	}

	sig, err := signer.ParseSignature(resp.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	payload := signer.HashedPayload{
		IntentHash: intentHash,
		Amount:     uint64(resp.Payment.AmountCents),
		Timestamp:  resp.Payment.Timestamp,
		PaymentID:  resp.Payment.PaymentID(),
		DataHash:   common.HexToHash(resp.DataHash),
	}
	digest := payload.Digest(domain)
	if !strings.EqualFold(digest.Hex(), resp.Digest) {
		return fmt.Errorf("digest mismatch: computed %s, response has %s", digest.Hex(), resp.Digest)
	}

	recovered, err := signer.RecoverAddress(digest, sig)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}
	if recovered != expectedWitness {
		return fmt.Errorf("%w: recovered %s, expected %s", signer.ErrSignerMismatch, recovered.Hex(), expectedWitness.Hex())
	}
	return nil
}
