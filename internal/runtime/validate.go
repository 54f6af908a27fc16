package runtime

import (
	"fmt"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// InvalidUpdateError reports an update the pipeline must not see.
type InvalidUpdateError struct {
	Reason string
}

func (e *InvalidUpdateError) Error() string {
	return fmt.Sprintf("invalid update: %s", e.Reason)
}

// ValidateUpdate checks the shape of an inbound update before it reaches
// any handler. The conversation key is what sessions and locks hang off,
// so an update without one is rejected outright.
func ValidateUpdate(u *domain.Update) error {
	if u == nil {
		return &InvalidUpdateError{Reason: "nil update"}
	}
	if u.Key == "" {
		return &InvalidUpdateError{Reason: "missing conversation key"}
	}
	switch u.Kind {
	case domain.KindMessage, domain.KindCommand, domain.KindCallback, domain.KindEvent:
	default:
		return &InvalidUpdateError{Reason: fmt.Sprintf("unknown kind %q", u.Kind)}
	}
	return nil
}
