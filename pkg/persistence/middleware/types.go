// Package middleware wraps a StateStore with cross-cutting persistence
// behavior: encryption at rest and PII masking. Middlewares compose, the
// outermost runs first on Save and last on Load.
package middleware

import "github.com/gabelluardo/grammY/pkg/ports"

// Middleware wraps a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore
