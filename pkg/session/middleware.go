package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// Middleware returns a pipeline middleware that surrounds the handler
// chain with session persistence: it locks the update's key, loads the
// session (a fresh one when the key is new), runs the chain, and saves.
//
// The save happens even when a handler fails. Scene bookkeeping recorded
// before the failure must survive, so a retry with the next update resumes
// at the failing step instead of re-running everything before it.
func (m *Manager) Middleware() composer.Middleware {
	return func(ctx *composer.Context, next composer.Next) error {
		key := ctx.Update.Key
		return m.WithLock(ctx.Context(), key, func(c context.Context) error {
			sess, err := m.store.Load(c, key)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					return fmt.Errorf("load session %q: %w", key, err)
				}
				sess = domain.NewSession()
			}
			ctx.Session = sess

			handlerErr := next()

			if err := m.store.Save(c, key, sess); err != nil {
				if handlerErr != nil {
					m.logger.Warn("failed to save session after handler error",
						"key", key,
						"err", err,
					)
					return handlerErr
				}
				return fmt.Errorf("save session %q: %w", key, err)
			}
			return handlerErr
		})
	}
}
