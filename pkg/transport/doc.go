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

// Package transport provides the JSON-RPC 2.0 over HTTP transport used to
// query the settlement chain.
//
// # Key Features
//
//   - JSON-RPC 2.0 envelopes with per-transport atomic request ids
//   - An explicit per-attempt timeout
//   - A single retry with jitter, for transport failures only
//   - Distinct error types for HTTP status, RPC error objects and
//     malformed envelopes
//
// # Usage
//
//	t := transport.NewHTTPTransport(rpcURL,
//	    transport.WithTimeout(10*time.Second),
//	    transport.WithLogger(log),
//	)
//	raw, err := t.Call(ctx, "eth_call", params)
//
// JSON-RPC error objects and malformed envelopes are returned immediately.
// Network failures and 429/5xx statuses are retried once after a short
// randomized delay.
package transport
