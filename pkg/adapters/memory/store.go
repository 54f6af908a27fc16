// Package memory implements ports.StateStore in process memory. It is the
// default store for tests and single-process hosts; nothing survives a
// restart.
package memory

import (
	"context"
	"sync"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Store implements ports.StateStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.Session)}
}

// Save persists a deep copy of the session, so later mutations of the
// caller's session do not leak into the store.
func (s *Store) Save(_ context.Context, key string, sess *domain.Session) error {
	snapshot := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = snapshot
	return nil
}

// Load returns a deep copy of the stored session.
func (s *Store) Load(_ context.Context, key string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the session for a key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys with a stored session.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys, nil
}
