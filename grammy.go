package grammy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/internal/runtime"
	"github.com/gabelluardo/grammY/internal/validator"
	"github.com/gabelluardo/grammY/pkg/adapters/memory"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/ports"
	"github.com/gabelluardo/grammY/pkg/scene"
	"github.com/gabelluardo/grammY/pkg/session"
)

// Version is the library version. Release builds override it via
// -ldflags "-X github.com/gabelluardo/grammY.Version=...".
var Version = "0.1.0-dev"

// Bot assembles the full update pipeline: per-key session persistence,
// the scene engine, and the application's own handlers, dispatched through
// a validating runtime with panic recovery.
//
// Registration methods (Use, On, Command, Callback) append to the tail of
// the pipeline, after the scene engine. A handler registered there sees an
// update only when no suspended scene consumed it.
type Bot struct {
	name    string
	logger  *slog.Logger
	sink    composer.Sink
	timeout time.Duration

	store   ports.StateStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	trees   []*scene.Scene
	outer   []composer.Middleware

	scenes   *scene.Registry
	engine   *scene.Engine
	sessions *session.Manager
	handlers *composer.Composer
	dispatch *runtime.Dispatcher
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithName sets the bot name used in logs and surfaces.
func WithName(name string) Option {
	return func(b *Bot) { b.name = name }
}

// WithStore configures the session store. Defaults to the in-memory store,
// which does not survive restarts.
func WithStore(store ports.StateStore) Option {
	return func(b *Bot) { b.store = store }
}

// WithLocker extends per-key serialization across replicas sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) { b.locker = locker }
}

// WithLockTTL bounds how long a crashed replica can hold a distributed
// lock. Ignored without a locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(b *Bot) { b.lockTTL = ttl }
}

// WithScenes registers scene trees with the bot's engine.
func WithScenes(scenes ...*scene.Scene) Option {
	return func(b *Bot) { b.trees = append(b.trees, scenes...) }
}

// WithMiddleware prepends middleware ahead of the session layer, so it
// observes every update with its session not yet loaded. Timing and
// metrics middleware belong here.
func WithMiddleware(mws ...composer.Middleware) Option {
	return func(b *Bot) { b.outer = append(b.outer, mws...) }
}

// WithHooks configures lifecycle callbacks for observability.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) { b.hooks = hooks }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// WithSink configures where handler replies are delivered.
func WithSink(sink composer.Sink) Option {
	return func(b *Bot) { b.sink = sink }
}

// WithHandlerTimeout bounds the wall time of a single update's handling.
func WithHandlerTimeout(timeout time.Duration) Option {
	return func(b *Bot) { b.timeout = timeout }
}

// New creates a Bot and validates its scene trees. Structural problems,
// such as an empty scene or a branch that completes without doing anything,
// are rejected here rather than at the first update that trips over them.
func New(opts ...Option) (*Bot, error) {
	b := &Bot{
		name:   "grammy",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.store == nil {
		b.store = memory.NewStore()
	}

	b.scenes = scene.NewRegistry(b.trees...)
	if err := validator.ValidateScenes(b.scenes); err != nil {
		return nil, fmt.Errorf("scene validation: %w", err)
	}

	sessOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(b.locker))
	}
	if b.lockTTL > 0 {
		sessOpts = append(sessOpts, session.WithLockTTL(b.lockTTL))
	}
	b.sessions = session.NewManager(b.store, sessOpts...)

	b.engine = scene.NewEngine(b.scenes,
		scene.WithHooks(b.hooks),
		scene.WithLogger(b.logger),
	)

	b.handlers = composer.New()
	chain := append([]composer.Middleware{}, b.outer...)
	chain = append(chain,
		b.sessions.Middleware(),
		b.engine.Middleware(),
		b.handlers.Handle,
	)
	pipeline := composer.New(chain...)

	dispOpts := []runtime.Option{runtime.WithLogger(b.logger)}
	if b.sink != nil {
		dispOpts = append(dispOpts, runtime.WithSink(b.sink))
	}
	if b.timeout > 0 {
		dispOpts = append(dispOpts, runtime.WithTimeout(b.timeout))
	}
	b.dispatch = runtime.NewDispatcher(pipeline, dispOpts...)

	return b, nil
}

// Use appends handlers that run for every update not consumed by a scene.
func (b *Bot) Use(mws ...composer.Middleware) *Bot {
	b.handlers.Use(mws...)
	return b
}

// Filter appends handlers gated by pred.
func (b *Bot) Filter(pred composer.Filter, mws ...composer.Middleware) *Bot {
	b.handlers.Filter(pred, mws...)
	return b
}

// On appends handlers for updates of one kind.
func (b *Bot) On(kind domain.UpdateKind, mws ...composer.Middleware) *Bot {
	b.handlers.On(kind, mws...)
	return b
}

// Command appends handlers for the named command.
func (b *Bot) Command(name string, mws ...composer.Middleware) *Bot {
	b.handlers.Command(name, mws...)
	return b
}

// Callback appends handlers for callback updates carrying the given data.
func (b *Bot) Callback(data string, mws ...composer.Middleware) *Bot {
	b.handlers.Callback(data, mws...)
	return b
}

// HandleUpdate processes one inbound update through the full pipeline.
// It validates the update, locks its conversation key, loads the session,
// runs the scene engine and handlers, and persists the session back.
//
// Callers must deliver updates for one key strictly one at a time; updates
// for distinct keys may be handled concurrently.
func (b *Bot) HandleUpdate(ctx context.Context, u *domain.Update) error {
	return b.dispatch.Dispatch(ctx, u)
}

// Enter starts a scene for a conversation from outside an update handler,
// for example from a scheduler or an admin surface. The scene runs until
// its first wait and the resulting trace is persisted under the key.
//
// Bookkeeping recorded before a step failure is persisted even when the
// returned error is non-nil, so the next update retries the failing step.
func (b *Bot) Enter(ctx context.Context, key, id string) error {
	return b.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		sess, err := b.store.Load(ctx, key)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("load session %q: %w", key, err)
			}
			sess = domain.NewSession()
		}

		u := &domain.Update{Key: key, Kind: domain.KindEvent, Payload: map[string]any{"event": "enter"}}
		c := composer.NewContext(ctx, u, sess)
		if b.sink != nil {
			c = c.WithSink(b.sink)
		}

		enterErr := b.engine.Enter(c, id)

		if err := b.store.Save(ctx, key, sess); err != nil {
			if enterErr != nil {
				b.logger.Warn("failed to save session after enter error",
					"key", key,
					"err", err,
				)
				return enterErr
			}
			return fmt.Errorf("save session %q: %w", key, err)
		}
		return enterErr
	})
}

// Describe renders a readable outline of a registered scene tree.
func (b *Bot) Describe(id string) (string, error) {
	sc, ok := b.scenes.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownScene, id)
	}
	return scene.Describe(sc), nil
}

// Name returns the configured bot name.
func (b *Bot) Name() string { return b.name }

// Scenes returns the scene registry.
func (b *Bot) Scenes() *scene.Registry { return b.scenes }

// Sessions returns the session manager guarding the configured store.
func (b *Bot) Sessions() *session.Manager { return b.sessions }

// Engine returns the scene engine.
func (b *Bot) Engine() *scene.Engine { return b.engine }
