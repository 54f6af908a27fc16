// Package config loads host configuration from a YAML file overlaid by
// environment variables. Defaults apply first, then the file, then the
// environment, so a container can override a checked-in config without
// editing it.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/gabelluardo/grammY/internal/logging"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Duration wraps time.Duration so YAML accepts "30s" style values, which
// plain yaml.v3 decodes only as integer nanoseconds.
type Duration time.Duration

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("parse duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	return fmt.Errorf("invalid duration value at line %d", value.Line)
}

// Redis configures the Redis session store and locker.
type Redis struct {
	Address  string   `yaml:"address" env:"ADDRESS"`
	Password string   `yaml:"password" env:"PASSWORD"`
	DB       int      `yaml:"db" env:"DB"`
	Prefix   string   `yaml:"prefix" env:"PREFIX"`
	TTL      Duration `yaml:"ttl" env:"TTL"`

	// Lock enables the Redis distributed locker alongside the store, for
	// deployments running more than one replica.
	Lock bool `yaml:"lock" env:"LOCK"`
}

// SQLite configures the SQLite session store.
type SQLite struct {
	Path string `yaml:"path" env:"PATH"`
}

// Store selects and configures the session store backend.
type Store struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Redis   Redis  `yaml:"redis" envPrefix:"REDIS_"`
	SQLite  SQLite `yaml:"sqlite" envPrefix:"SQLITE_"`
}

// HTTP configures the admin and ingestion HTTP server.
type HTTP struct {
	Addr string `yaml:"addr" env:"ADDR"`

	// Metrics mounts the Prometheus endpoint on the same server.
	Metrics bool `yaml:"metrics" env:"METRICS"`
}

// Encryption configures at-rest session encryption. Keys are base64
// encoded 32-byte AES-256 keys; fallbacks allow reading sessions written
// under rotated-out keys.
type Encryption struct {
	Key       string   `yaml:"key" env:"KEY"`
	Fallbacks []string `yaml:"fallbacks" env:"FALLBACKS" envSeparator:","`
}

// Enabled reports whether an active key is configured.
func (e Encryption) Enabled() bool { return e.Key != "" }

// ActiveKey decodes the active key.
func (e Encryption) ActiveKey() ([]byte, error) {
	return decodeKey(e.Key)
}

// FallbackKeys decodes the fallback keys.
func (e Encryption) FallbackKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(e.Fallbacks))
	for _, enc := range e.Fallbacks {
		k, err := decodeKey(enc)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func decodeKey(enc string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Config is the root host configuration.
type Config struct {
	Name           string   `yaml:"name" env:"GRAMMY_NAME"`
	LogLevel       string   `yaml:"log_level" env:"GRAMMY_LOG_LEVEL"`
	LogFormat      string   `yaml:"log_format" env:"GRAMMY_LOG_FORMAT"`
	HandlerTimeout Duration `yaml:"handler_timeout" env:"GRAMMY_HANDLER_TIMEOUT"`
	LockTTL        Duration `yaml:"lock_ttl" env:"GRAMMY_LOCK_TTL"`

	Store      Store      `yaml:"store" envPrefix:"GRAMMY_STORE_"`
	HTTP       HTTP       `yaml:"http" envPrefix:"GRAMMY_HTTP_"`
	Encryption Encryption `yaml:"encryption" envPrefix:"GRAMMY_ENCRYPTION_"`

	// PIIPatterns are regular expressions matched against session data
	// keys; matching values are masked before they reach the store.
	PIIPatterns []string `yaml:"pii_patterns" env:"GRAMMY_PII_PATTERNS" envSeparator:","`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Name:      "grammy",
		LogLevel:  "info",
		LogFormat: logging.FormatText,
		Store:     Store{Backend: StoreMemory},
		HTTP:      HTTP{Addr: ":8080", Metrics: true},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseEnv overlays environment variables onto cfg.
func parseEnv(cfg *Config) error {
	err := env.ParseWithOptions(cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(Duration(0)): func(v string) (any, error) {
				d, err := time.ParseDuration(v)
				if err != nil {
					return nil, fmt.Errorf("parse duration %q: %w", v, err)
				}
				return Duration(d), nil
			},
		},
	})
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("store backend %q requires store.redis.address", StoreRedis)
		}
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store backend %q requires store.sqlite.path", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Encryption.Enabled() {
		if _, err := c.Encryption.ActiveKey(); err != nil {
			return err
		}
		if _, err := c.Encryption.FallbackKeys(); err != nil {
			return err
		}
	}

	for _, pattern := range c.PIIPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pii pattern %q: %w", pattern, err)
		}
	}
	return nil
}
