// Package memory is the in-process audit log used in development and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "contracheques/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	entries []ports.AuditEntry
}

var _ ports.AuditWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendAudit(_ context.Context, e ports.AuditEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("row-%d", len(s.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []ports.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
