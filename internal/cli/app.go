// Package cli assembles bots from configuration for the grammy binary:
// logger, store backend with its persistence middleware, locker, and the
// demo scene set the commands operate on.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/config"
	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/pkg/adapters/memory"
	"github.com/gabelluardo/grammY/pkg/adapters/redis"
	"github.com/gabelluardo/grammY/pkg/adapters/sqlite"
	"github.com/gabelluardo/grammY/pkg/persistence/middleware"
	"github.com/gabelluardo/grammY/pkg/ports"
)

// BuildLogger creates the application logger from config.
func BuildLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.LogFormat), nil
}

// Storage is the assembled persistence side of a bot.
type Storage struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker

	closer func() error
}

// Close releases the backend connection, if the backend holds one.
func (s *Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// BuildStorage creates the configured store backend and wraps it with the
// encryption and PII middleware when configured. The caller owns Close.
func BuildStorage(cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	st := &Storage{}

	switch cfg.Store.Backend {
	case config.StoreMemory:
		st.Store = memory.NewStore()

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		st.Store = store
		st.closer = store.Close

	case config.StoreRedis:
		r := cfg.Store.Redis
		opts := []redis.Option{}
		if r.Prefix != "" {
			opts = append(opts, redis.WithPrefix(r.Prefix))
		}
		if r.TTL.Std() > 0 {
			opts = append(opts, redis.WithTTL(r.TTL.Std()))
		}
		store := redis.New(r.Address, r.Password, r.DB, opts...)
		st.Store = store
		st.closer = store.Close
		if r.Lock {
			st.Locker = redis.NewLocker(store.Client(), r.Prefix)
		}

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Encryption.Enabled() {
		active, err := cfg.Encryption.ActiveKey()
		if err != nil {
			return nil, err
		}
		fallbacks, err := cfg.Encryption.FallbackKeys()
		if err != nil {
			return nil, err
		}
		st.Store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})(st.Store)
		logger.Debug("session encryption enabled", "fallback_keys", len(fallbacks))
	}

	if len(cfg.PIIPatterns) > 0 {
		st.Store = middleware.NewPIIMiddleware(cfg.PIIPatterns)(st.Store)
		logger.Debug("pii scrubbing enabled", "patterns", len(cfg.PIIPatterns))
	}

	return st, nil
}

// BuildBot assembles a bot over the given storage, with the demo scenes
// registered and the demo command surface mounted. Extra options append
// after the config-derived ones, so callers can attach sinks, middleware
// and hooks.
func BuildBot(cfg *config.Config, logger *slog.Logger, st *Storage, extra ...grammy.Option) (*grammy.Bot, error) {
	opts := []grammy.Option{
		grammy.WithName(cfg.Name),
		grammy.WithLogger(logger),
		grammy.WithStore(st.Store),
		grammy.WithScenes(DemoScenes()...),
	}
	if st.Locker != nil {
		opts = append(opts, grammy.WithLocker(st.Locker))
		if cfg.LockTTL.Std() > 0 {
			opts = append(opts, grammy.WithLockTTL(cfg.LockTTL.Std()))
		}
	}
	if cfg.HandlerTimeout.Std() > 0 {
		opts = append(opts, grammy.WithHandlerTimeout(cfg.HandlerTimeout.Std()))
	}
	opts = append(opts, extra...)

	bot, err := grammy.New(opts...)
	if err != nil {
		return nil, err
	}
	RegisterDemoHandlers(bot)
	return bot, nil
}

// ApplyStoreFlag overrides the configured backend from a --store flag
// value: "memory", "sqlite:PATH" or "redis:ADDR".
func ApplyStoreFlag(cfg *config.Config, flag string) error {
	if flag == "" {
		return nil
	}
	backend, arg := flag, ""
	if i := strings.IndexByte(flag, ':'); i >= 0 {
		backend, arg = flag[:i], flag[i+1:]
	}
	switch backend {
	case config.StoreMemory:
		cfg.Store.Backend = config.StoreMemory
	case config.StoreSQLite:
		if arg == "" {
			return fmt.Errorf("sqlite store needs a path, use sqlite:PATH")
		}
		cfg.Store.Backend = config.StoreSQLite
		cfg.Store.SQLite.Path = arg
	case config.StoreRedis:
		if arg == "" {
			return fmt.Errorf("redis store needs an address, use redis:ADDR")
		}
		cfg.Store.Backend = config.StoreRedis
		cfg.Store.Redis.Address = arg
	default:
		return fmt.Errorf("unknown store %q", backend)
	}
	return nil
}
