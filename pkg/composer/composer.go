package composer

import "github.com/gabelluardo/grammY/pkg/domain"

// Next continues the chain past the current handler. Not calling it stops
// the chain for this update.
type Next func() error

// Middleware handles one update and may call next to pass control on.
type Middleware func(ctx *Context, next Next) error

// Compose folds middlewares into a single one that runs them in order.
// The result of composing nothing passes straight through to next.
func Compose(mws ...Middleware) Middleware {
	if len(mws) == 0 {
		return func(_ *Context, next Next) error { return next() }
	}
	mw := mws[len(mws)-1]
	for i := len(mws) - 2; i >= 0; i-- {
		outer, inner := mws[i], mw
		mw = func(ctx *Context, next Next) error {
			return outer(ctx, func() error { return inner(ctx, next) })
		}
	}
	return mw
}

// Composer is an ordered, append-only chain of middleware. The zero value
// is usable; registration methods mutate the receiver and return it so
// calls read top to bottom like the dispatch order.
type Composer struct {
	chain []Middleware
}

// New creates a composer seeded with the given middleware.
func New(mws ...Middleware) *Composer {
	return &Composer{chain: mws}
}

// Use appends handlers that run for every update reaching this composer.
func (c *Composer) Use(mws ...Middleware) *Composer {
	c.chain = append(c.chain, mws...)
	return c
}

// Filter appends handlers gated by pred. Updates that do not match skip
// them and continue down the chain.
func (c *Composer) Filter(pred Filter, mws ...Middleware) *Composer {
	sub := Compose(mws...)
	c.chain = append(c.chain, func(ctx *Context, next Next) error {
		if !pred(ctx.Update) {
			return next()
		}
		return sub(ctx, next)
	})
	return c
}

// On appends handlers for updates of one kind.
func (c *Composer) On(kind domain.UpdateKind, mws ...Middleware) *Composer {
	return c.Filter(OnKind(kind), mws...)
}

// Command appends handlers for the named command.
func (c *Composer) Command(name string, mws ...Middleware) *Composer {
	return c.Filter(OnCommand(name), mws...)
}

// Callback appends handlers for callback updates carrying the given data.
func (c *Composer) Callback(data string, mws ...Middleware) *Composer {
	return c.Filter(OnCallback(data), mws...)
}

// Handle runs the registered chain, falling through to next when every
// handler passed control on. A Composer is itself a Middleware via this
// method.
func (c *Composer) Handle(ctx *Context, next Next) error {
	return Compose(c.chain...)(ctx, next)
}

// Run executes the chain with a terminal no-op continuation.
func (c *Composer) Run(ctx *Context) error {
	return c.Handle(ctx, func() error { return nil })
}

// Len reports how many entries are registered on this composer.
func (c *Composer) Len() int {
	return len(c.chain)
}
