/*
Package runner implements the host loop that connects a Bot to an
interactive transport: a terminal, a pipe, or a structured JSON-Lines
stream.

It reads updates through a pluggable IOHandler, dispatches them one at a
time, and streams replies back out as handlers produce them. The handler
doubles as the bot's reply sink, so the same value is wired into both
sides:

	h := runner.NewTextHandler(os.Stdin, os.Stdout)

	bot, err := grammy.New(
		grammy.WithScenes(checkout),
		grammy.WithSink(h),
	)
	if err != nil {
		log.Fatal(err)
	}

	r := runner.New(bot, h, runner.WithKey("cli"))

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}

# Input Modes

  - TextHandler: line-oriented terminal input. Lines starting with "/" are
    commands, lines starting with "@" simulate a callback press, anything
    else is a plain message.
  - JSONHandler: each input line is one JSON-encoded update, each output
    line one JSON event. Suited for driving the bot from another process.
*/
package runner
