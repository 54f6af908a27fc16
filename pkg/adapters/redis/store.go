// Package redis implements ports.StateStore and ports.DistributedLocker
// on Redis, for hosts that need sessions to survive restarts or to be
// shared across replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Sessions without a TTL get this index score, far enough in the future
// that lazy pruning never touches them.
const noExpiryScore = 4102444800 // 2100-01-01

// Store implements ports.StateStore on Redis. Sessions are stored as JSON
// values plus a ZSET index keyed by expiry, so List stays cheap without
// scanning the keyspace.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the session expiration. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a store with its own Redis client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store over an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "grammy:session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(key string) string { return s.prefix + key }

func (s *Store) indexKey() string { return s.prefix + "index" }

// Save persists the session as JSON and registers it in the index.
func (s *Store) Save(ctx context.Context, key string, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session to redis: %w", err)
	}
	return nil
}

// Load retrieves and unmarshals the session.
func (s *Store) Load(ctx context.Context, key string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session from redis: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	return &sess, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the indexed keys, lazily pruning entries whose TTL passed.
// The data keys expire on their own; the index catches up here.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("prune expired sessions: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return keys, nil
}

// Client exposes the underlying client, so a Locker can share the
// connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
