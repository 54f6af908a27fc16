package runner

import (
	"context"

	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user. It embeds
// composer.Sink so that bot replies stream through the same surface the
// updates come in on; pass the handler to grammy.WithSink when building
// the bot.
type IOHandler interface {
	composer.Sink

	// Input blocks until the next update is available. It returns io.EOF
	// when the input stream is exhausted or the user asked to leave.
	Input(ctx context.Context) (*domain.Update, error)

	// SystemOutput presents a meta-message to the user: status lines,
	// dispatch errors, shutdown notices. Distinct from bot replies.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms reply text before it is written out. It
// decouples terminal rendering (markdown to ANSI) from the loop itself.
type ContentRenderer func(string) (string, error)
