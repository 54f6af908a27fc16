package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/ports"
)

// lockEntry holds the per-key mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes session access per conversation key. Lock entries are
// reference counted and garbage collected once the last holder releases.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker extends per-key serialization across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL bounds how long a crashed replica can hold a distributed
// lock. Ignored without a locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager over the given store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		ttl:    30 * time.Second,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates the lock entry for a key and increments its
// reference count. The caller locks entry.mu and calls release afterwards.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock runs fn while holding the lock for a key, the distributed lock
// included when one is configured.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return fmt.Errorf("acquire distributed lock for %q: %w", key, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, it expires via TTL",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves the session for a key.
func (m *Manager) Load(ctx context.Context, key string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, key)
		return err
	})
	return sess, err
}

// LoadOrStart loads the session for a key, creating and persisting a fresh
// one when none exists yet.
func (m *Manager) LoadOrStart(ctx context.Context, key string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("check session %q: %w", key, err)
		}

		sess = domain.NewSession()
		if err := m.store.Save(ctx, key, sess); err != nil {
			return fmt.Errorf("initialize session %q: %w", key, err)
		}
		return nil
	})
	return sess, err
}

// Save persists the session for a key.
func (m *Manager) Save(ctx context.Context, key string, sess *domain.Session) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, sess)
	})
}

// Delete removes the session for a key.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}
