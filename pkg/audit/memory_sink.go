package audit

import (
	"context"
	"sync"
)

// MemorySink stores audit entries in memory (tests and development)
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates a new in-memory audit sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Ingest appends the entry
func (s *MemorySink) Ingest(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of all stored entries
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of stored entries
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
