package session

import (
	"context"
	"time"

	"contracheques/internal/cache"
	"contracheques/internal/core"
)

const janitorInterval = time.Minute

// MemoryStore keeps sessions in a TTL-bounded LRU. The default backend:
// nothing survives a restart, which matches the non-goal of long-term
// persistence.
type MemoryStore struct {
	lru *cache.LRU[Session]
}

func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = 100
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	lru := cache.New[Session](maxSessions, ttl)
	lru.StartJanitor(janitorInterval)
	return &MemoryStore{lru: lru}
}

func (m *MemoryStore) Put(_ context.Context, s Session) error {
	m.lru.Set(s.ID, s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s, ok := m.lru.Get(id)
	if !ok {
		return Session{}, core.ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.lru.Delete(id)
	return nil
}

func (m *MemoryStore) Close() error {
	m.lru.StopJanitor()
	return nil
}
