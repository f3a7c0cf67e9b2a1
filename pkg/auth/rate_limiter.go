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

package auth

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultRateLimit is the default number of requests per window.
	DefaultRateLimit = 100

	// RateWindow is the length of a rate-limit window.
	RateWindow = time.Minute

	pruneThreshold = 4096
)

// RateLimitError is returned when an identity exhausted its quota.
type RateLimitError struct {
	// RetryAfter is the number of whole seconds until the window resets,
	// always at least 1.
	RetryAfter int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", e.RetryAfter)
}

type rateCounter struct {
	count       int
	windowStart time.Time
}

// RateLimiter counts requests per identity in fixed windows that restart
// once RateWindow has elapsed since the first request of the window
type RateLimiter struct {
	limit int
	now   func() time.Time

	mu       sync.Mutex
	counters map[string]*rateCounter
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// A non-positive limit falls back to DefaultRateLimit.
func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	return &RateLimiter{
		limit:    limit,
		now:      time.Now,
		counters: make(map[string]*rateCounter),
	}
}

// Limit returns the per-window request ceiling
func (l *RateLimiter) Limit() int {
	return l.limit
}

// CheckAndIncrement records a request for identity, or returns a
// *RateLimitError when the quota for the current window is spent
func (l *RateLimiter) CheckAndIncrement(identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.counters) >= pruneThreshold {
		l.pruneLocked(now)
	}

	c, ok := l.counters[identity]
	if !ok {
		c = &rateCounter{windowStart: now}
		l.counters[identity] = c
	}
	if now.Sub(c.windowStart) >= RateWindow {
		c.count = 0
		c.windowStart = now
	}

	if c.count >= l.limit {
		remaining := RateWindow - now.Sub(c.windowStart)
		if remaining < 0 {
			remaining = 0
		}
		return &RateLimitError{RetryAfter: int64(remaining/time.Second) + 1}
	}

	c.count++
	return nil
}

// pruneLocked drops counters whose window has elapsed
func (l *RateLimiter) pruneLocked(now time.Time) {
	for id, c := range l.counters {
		if now.Sub(c.windowStart) >= RateWindow {
			delete(l.counters, id)
		}
	}
}
