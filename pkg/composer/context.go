package composer

import (
	"context"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Sink receives outbound replies produced by handlers.
type Sink interface {
	Send(ctx context.Context, key, text string) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, key, text string) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, key, text string) error {
	return f(ctx, key, text)
}

// Context carries one update through a handler chain. It lives for exactly
// one invocation; nothing stored on it survives to the next update.
type Context struct {
	std    context.Context
	values map[any]any
	sink   Sink

	// Update is the inbound event being handled. Never nil.
	Update *domain.Update

	// Session is the persisted record for Update.Key. The engine mutates it
	// in place; the transport writes it back after the chain returns.
	Session *domain.Session
}

// NewContext wraps one update for a pass through a handler chain.
func NewContext(std context.Context, upd *domain.Update, sess *domain.Session) *Context {
	if std == nil {
		std = context.Background()
	}
	return &Context{std: std, Update: upd, Session: sess}
}

// WithSink sets the outbound reply sink and returns the context.
func (c *Context) WithSink(s Sink) *Context {
	c.sink = s
	return c
}

// Context returns the standard library context for this invocation.
func (c *Context) Context() context.Context {
	return c.std
}

// Reply sends text back to the conversation through the configured sink.
// It is a no-op when no sink is set.
func (c *Context) Reply(text string) error {
	if c.sink == nil {
		return nil
	}
	return c.sink.Send(c.std, c.Update.Key, text)
}

// Set stores an invocation-scoped value on the context. Use an unexported
// key type to avoid collisions, as with context.WithValue.
func (c *Context) Set(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Value returns a value stored with Set, or nil when absent.
func (c *Context) Value(key any) any {
	if c.values == nil {
		return nil
	}
	return c.values[key]
}
