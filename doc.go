/*
Package grammy is a conversation engine for building resumable, multi-step
dialog flows ("scenes") on top of any update-driven transport: chat bots,
CLIs, support consoles, or automation pipelines.

A scene is a tree of steps and waits declared in code. Steps run; waits
suspend the scene until a later update matches one of their resume arms.
Between updates nothing stays in memory: the engine persists a compact
positional trace and replays it against the freshly built tree on the next
update, so a conversation survives restarts, deploys, and failovers as long
as the session store does.

# Concept

The engine treats a conversation as a program counter over a static tree.
Handlers never see the trace; they read and write plain session data while
the engine records which positions ran. Because the trace stores positions
rather than code, redeploying a changed tree either resumes cleanly or is
detected as a structural mismatch and reset, never resumed wrongly.

# Key Features

  - Resumable flows: suspended scenes survive process restarts via
    pluggable session stores (memory, Redis, SQLite).
  - Deterministic replay: the same trace against the same tree always
    lands on the same position.
  - Navigation: handlers can move the cursor backward, forward, out of a
    nested branch, or switch scenes entirely.
  - Per-key serialization: sessions are locked per conversation key, with
    optional distributed locking for multi-replica deployments.

# Usage

	package main

	import (
		"context"
		"log"

		grammy "github.com/gabelluardo/grammY"
		"github.com/gabelluardo/grammY/pkg/composer"
		"github.com/gabelluardo/grammY/pkg/domain"
		"github.com/gabelluardo/grammY/pkg/scene"
	)

	func main() {
		greeter := scene.New("greeter", func(b *scene.Builder) {
			b.Step("ask", func(ctx *composer.Context, next composer.Next) error {
				return ctx.Reply("What is your name?")
			})
			b.Wait("answer").On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
				ctx.Session.Data["name"] = ctx.Update.Text
				return next()
			})
			b.Step("greet", func(ctx *composer.Context, next composer.Next) error {
				name, _ := ctx.Session.Data["name"].(string)
				return ctx.Reply("Hello, " + name + "!")
			})
		})

		bot, err := grammy.New(grammy.WithScenes(greeter))
		if err != nil {
			log.Fatal(err)
		}

		bot.Command("start", func(ctx *composer.Context, next composer.Next) error {
			ctrl, _ := scene.FromContext(ctx)
			return ctrl.Enter("greeter")
		})

		// Feed updates from your transport; one at a time per key.
		ctx := context.Background()
		_ = bot.HandleUpdate(ctx, &domain.Update{Key: "chat-1", Kind: domain.KindCommand, Text: "/start"})
		_ = bot.HandleUpdate(ctx, &domain.Update{Key: "chat-1", Kind: domain.KindMessage, Text: "Ada"})
	}
*/
package grammy
