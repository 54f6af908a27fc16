package cli

import (
	"context"
	"os"

	"github.com/google/uuid"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/config"
	"github.com/gabelluardo/grammY/internal/presentation/tui"
	"github.com/gabelluardo/grammY/pkg/runner"
)

// ChatOptions carries the flags of the chat command.
type ChatOptions struct {
	Key   string // conversation key, a fresh UUID when empty
	Scene string // scene entered before the first prompt
	JSON  bool   // JSON-Lines protocol instead of the text UI
	Store string // backend override, see ApplyStoreFlag
}

// RunChat wires a bot to stdin/stdout and drives the conversation loop
// until EOF or interruption. With the default memory store every run
// starts clean; pass a sqlite or redis store plus --key to resume a
// conversation across invocations.
func RunChat(ctx context.Context, cfg *config.Config, opts ChatOptions) error {
	if err := ApplyStoreFlag(cfg, opts.Store); err != nil {
		return err
	}
	logger, err := BuildLogger(cfg)
	if err != nil {
		return err
	}
	storage, err := BuildStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
	} else {
		var textOpts []runner.TextOption
		interactive := tui.Interactive(os.Stdout)
		if interactive {
			textOpts = append(textOpts, runner.WithTextRenderer(tui.NewRenderer()))
		}
		handler = runner.NewTextHandler(os.Stdin, os.Stdout, textOpts...)
		if interactive && tui.Interactive(os.Stdin) {
			tui.PrintBanner(os.Stdout, grammy.Version)
		}
	}

	bot, err := BuildBot(cfg, logger, storage, grammy.WithSink(handler))
	if err != nil {
		return err
	}

	key := opts.Key
	if key == "" {
		key = uuid.NewString()
	}

	runnerOpts := []runner.Option{
		runner.WithKey(key),
		runner.WithLogger(logger),
	}
	if opts.Scene != "" {
		runnerOpts = append(runnerOpts, runner.WithScene(opts.Scene))
	}

	return runner.New(bot, handler, runnerOpts...).Run(ctx)
}
