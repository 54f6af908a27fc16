package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/scene"
)

func greeter() *scene.Scene {
	return scene.New("greeter", func(b *scene.Builder) {
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
}

func TestRunner_DrivesConversation(t *testing.T) {
	in := strings.NewReader("/begin\nAda\n")
	out := &bytes.Buffer{}
	h := NewTextHandler(in, out, WithTextPrompt(""))

	bot, err := grammy.New(grammy.WithScenes(greeter()), grammy.WithSink(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bot.Command("begin", func(ctx *composer.Context, next composer.Next) error {
		ctrl, _ := scene.FromContext(ctx)
		return ctrl.Enter("greeter")
	})

	r := New(bot, h, WithKey("term"))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	printed := out.String()
	if !strings.Contains(printed, "What is your name?") {
		t.Errorf("missing question in output: %s", printed)
	}
	if !strings.Contains(printed, "Hello, Ada!") {
		t.Errorf("missing greeting in output: %s", printed)
	}
}

func TestRunner_EntersSceneOnStart(t *testing.T) {
	in := strings.NewReader("Ada\n")
	out := &bytes.Buffer{}
	h := NewTextHandler(in, out, WithTextPrompt(""))

	bot, err := grammy.New(grammy.WithScenes(greeter()), grammy.WithSink(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := New(bot, h, WithKey("term"), WithScene("greeter"))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	printed := out.String()
	if !strings.Contains(printed, "What is your name?") {
		t.Errorf("scene did not run at startup: %s", printed)
	}
	if !strings.Contains(printed, "Hello, Ada!") {
		t.Errorf("first input did not resume the scene: %s", printed)
	}
}

func TestRunner_EnterFailureIsFatal(t *testing.T) {
	h := NewTextHandler(strings.NewReader(""), &bytes.Buffer{}, WithTextPrompt(""))

	bot, err := grammy.New(grammy.WithSink(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := New(bot, h, WithScene("ghost"))
	if err := r.Run(context.Background()); !errors.Is(err, domain.ErrUnknownScene) {
		t.Fatalf("error = %v, want ErrUnknownScene", err)
	}
}

func TestRunner_ReportsDispatchErrorsAndContinues(t *testing.T) {
	in := strings.NewReader("/boom\nstill here\n")
	out := &bytes.Buffer{}
	h := NewTextHandler(in, out, WithTextPrompt(""))

	bot, err := grammy.New(grammy.WithSink(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bot.Command("boom", func(ctx *composer.Context, next composer.Next) error {
		return errors.New("kaput")
	})
	bot.On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
		return ctx.Reply("alive")
	})

	r := New(bot, h)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	printed := out.String()
	if !strings.Contains(printed, "[system] error: kaput") {
		t.Errorf("dispatch error not reported: %s", printed)
	}
	if !strings.Contains(printed, "alive") {
		t.Errorf("loop did not continue past the error: %s", printed)
	}
}

func TestRunner_StampsKeyAndSequence(t *testing.T) {
	in := strings.NewReader("one\ntwo\n")
	h := NewTextHandler(in, &bytes.Buffer{}, WithTextPrompt(""))

	bot, err := grammy.New(grammy.WithSink(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var keys []string
	var ids []int64
	bot.Use(func(ctx *composer.Context, next composer.Next) error {
		keys = append(keys, ctx.Update.Key)
		ids = append(ids, ctx.Update.ID)
		return next()
	})

	r := New(bot, h, WithKey("term"))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(keys) != 2 || keys[0] != "term" || keys[1] != "term" {
		t.Errorf("keys = %v, want the configured key on every update", keys)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("ids = %v, want a strictly increasing sequence", ids)
	}
}

func TestRunner_RequiresBotAndHandler(t *testing.T) {
	if err := New(nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected configuration error")
	}
}
