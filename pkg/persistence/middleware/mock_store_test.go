package middleware_test

import (
	"context"

	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/ports"
)

// mockStore is a bare map store for observing what middlewares persist.
type mockStore struct {
	data map[string]*domain.Session
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]*domain.Session)}
}

func (s *mockStore) Save(_ context.Context, key string, sess *domain.Session) error {
	s.data[key] = sess
	return nil
}

func (s *mockStore) Load(_ context.Context, key string) (*domain.Session, error) {
	sess, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *mockStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *mockStore) List(context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.StateStore = (*mockStore)(nil)
