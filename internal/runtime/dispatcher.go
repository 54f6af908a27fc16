// Package runtime runs the per-update dispatch: it validates inbound
// updates and surrounds the handler pipeline with the guard rails a host
// expects, panic recovery and an optional handling deadline.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// Dispatcher feeds updates through a composer pipeline.
type Dispatcher struct {
	pipeline *composer.Composer
	sink     composer.Sink
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithSink attaches the reply surface handlers see as Context.Reply.
func WithSink(sink composer.Sink) Option {
	return func(d *Dispatcher) { d.sink = sink }
}

// WithLogger sets the dispatch logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithTimeout bounds how long one update may be handled. Zero disables
// the deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher creates a dispatcher over the given pipeline.
func NewDispatcher(pipeline *composer.Composer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pipeline: pipeline,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the update and runs it through the pipeline. A
// panicking handler is recovered into an error, so one poisoned update
// cannot take down the host loop.
func (d *Dispatcher) Dispatch(ctx context.Context, u *domain.Update) (err error) {
	if verr := ValidateUpdate(u); verr != nil {
		return verr
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic recovered",
				"key", u.Key,
				"kind", u.Kind,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	c := composer.NewContext(ctx, u, nil)
	if d.sink != nil {
		c = c.WithSink(d.sink)
	}

	start := time.Now()
	err = d.pipeline.Run(c)
	d.logger.Debug("update dispatched",
		"key", u.Key,
		"kind", u.Kind,
		"duration", time.Since(start),
		"err", err,
	)
	return err
}
