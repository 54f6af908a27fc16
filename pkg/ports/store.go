package ports

import (
	"context"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// StateStore persists session state per conversation key. Implementations
// must return snapshots decoupled from their internal storage: mutating a
// loaded session, or a session after saving it, must not affect what a
// later Load returns.
type StateStore interface {
	// Save persists the session for a key, replacing any previous state.
	Save(ctx context.Context, key string, sess *domain.Session) error

	// Load retrieves the session for a key.
	// Returns domain.ErrSessionNotFound when the key has no session.
	Load(ctx context.Context, key string) (*domain.Session, error)

	// Delete removes the session for a key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys that currently have a session.
	List(ctx context.Context) ([]string, error)
}
