package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/logging"
)

// Runner drives a Bot from an IOHandler: read one update, dispatch it,
// loop. Replies do not pass through the Runner at all; they stream out of
// the bot's sink as handlers produce them, which is why the bot must be
// built with the same handler as its sink.
type Runner struct {
	bot     *grammy.Bot
	handler IOHandler
	logger  *slog.Logger

	key   string
	scene string
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithKey sets the conversation key stamped on updates that carry none.
// Defaults to "local".
func WithKey(key string) Option {
	return func(r *Runner) { r.key = key }
}

// WithScene names a scene to enter before the first read, so the session
// greets the user instead of waiting silently.
func WithScene(id string) Option {
	return func(r *Runner) { r.scene = id }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// New creates a Runner over the given bot and IO strategy.
func New(bot *grammy.Bot, handler IOHandler, opts ...Option) *Runner {
	r := &Runner{
		bot:     bot,
		handler: handler,
		key:     "local",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the input stream ends, the user leaves, or
// an interrupt arrives. Dispatch errors are reported to the user and the
// loop carries on; scene bookkeeping persisted before a failing step means
// the next input retries that step.
func (r *Runner) Run(ctx context.Context) error {
	if r.bot == nil || r.handler == nil {
		return errors.New("runner: bot and handler must be configured")
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if r.scene != "" {
		if err := r.bot.Enter(signals.Context(), r.key, r.scene); err != nil {
			return fmt.Errorf("enter scene %q: %w", r.scene, err)
		}
	}

	var seq int64
	for {
		sctx := signals.Context()

		u, err := r.handler.Input(sctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			signals.CheckRace()
			if signals.Context().Err() != nil {
				_ = r.handler.SystemOutput(context.Background(), "interrupted")
				return nil
			}
			return fmt.Errorf("input: %w", err)
		}

		seq++
		u.ID = seq
		if u.Key == "" {
			u.Key = r.key
		}

		if err := r.bot.HandleUpdate(sctx, u); err != nil {
			r.logger.Warn("update dispatch failed",
				"key", u.Key,
				"kind", u.Kind,
				"err", err,
			)
			if serr := r.handler.SystemOutput(sctx, "error: "+err.Error()); serr != nil {
				return serr
			}
		}
	}
}
