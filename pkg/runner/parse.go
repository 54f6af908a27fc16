package runner

import (
	"strings"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// ParseLine turns one line of terminal input into an update. The key is
// left empty; the runner fills in its configured conversation key.
//
//	/checkout extra   -> command "checkout" with arguments
//	@pay-card         -> callback carrying data "pay-card"
//	anything else     -> plain message
//
// Empty lines parse to nil, meaning there is nothing to dispatch.
func ParseLine(line string) *domain.Update {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch {
	case strings.HasPrefix(line, "/"):
		return &domain.Update{Kind: domain.KindCommand, Text: line}
	case strings.HasPrefix(line, "@"):
		data := strings.TrimPrefix(line, "@")
		return &domain.Update{
			Kind:    domain.KindCallback,
			Payload: map[string]any{"data": data},
		}
	default:
		return &domain.Update{Kind: domain.KindMessage, Text: line}
	}
}
