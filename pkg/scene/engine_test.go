package scene_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/scene"
)

// host simulates the transport: it owns one session and pushes updates
// through a root composer with the engine mounted first.
type host struct {
	t           *testing.T
	bot         *composer.Composer
	eng         *scene.Engine
	sess        *domain.Session
	fellThrough int
}

func newHost(t *testing.T, scs ...*scene.Scene) *host {
	return newHostOpts(t, nil, scs...)
}

func newHostOpts(t *testing.T, opts []scene.Option, scs ...*scene.Scene) *host {
	h := &host{t: t, sess: domain.NewSession()}
	h.eng = scene.NewEngine(scene.NewRegistry(scs...), opts...)
	h.bot = composer.New().Use(h.eng.Middleware())
	return h
}

// tail mounts a terminal counter after the outer handlers, so tests can
// see which updates reached the end of the chain unconsumed.
func (h *host) tail() {
	h.bot.Use(func(_ *composer.Context, _ composer.Next) error {
		h.fellThrough++
		return nil
	})
}

func (h *host) push(u *domain.Update) error {
	return h.bot.Run(composer.NewContext(context.Background(), u, h.sess))
}

func (h *host) stack() domain.Stack {
	if h.sess.Scenes == nil {
		return nil
	}
	return h.sess.Scenes.Stack
}

func msgU(text string) *domain.Update {
	return &domain.Update{Key: "chat-1", Kind: domain.KindMessage, Text: text}
}

func cmdU(line string) *domain.Update {
	return &domain.Update{Key: "chat-1", Kind: domain.KindCommand, Text: line}
}

func cbU(data string) *domain.Update {
	return &domain.Update{Key: "chat-1", Kind: domain.KindCallback, Payload: map[string]any{"data": data}}
}

func step(log *[]string, name string) composer.Middleware {
	return func(_ *composer.Context, _ composer.Next) error {
		*log = append(*log, name)
		return nil
	}
}

func enterMW(id string) composer.Middleware {
	return func(ctx *composer.Context, _ composer.Next) error {
		ctl, ok := scene.FromContext(ctx)
		if !ok {
			return errors.New("control not installed")
		}
		return ctl.Enter(id)
	}
}

func count(log []string, name string) int {
	n := 0
	for _, s := range log {
		if s == name {
			n++
		}
	}
	return n
}

func TestEnter_RunsUntilWaitAndSuspends(t *testing.T) {
	var ran []string
	order := scene.New("order", func(b *scene.Builder) {
		b.Step("ask", step(&ran, "ask"))
		b.Wait("answer").On(domain.KindMessage, step(&ran, "save"))
		b.Step("finish", step(&ran, "finish"))
	})

	h := newHost(t, order)
	h.bot.Command("order", enterMW("order"))
	h.tail()

	// First invocation: enter runs the first step live and suspends at the
	// wait, whose position lands in the single root frame.
	require.NoError(t, h.push(cmdU("/order")))
	assert.Equal(t, []string{"ask"}, ran)
	require.NotNil(t, h.sess.Scenes)
	assert.Equal(t, "order", h.sess.Scenes.Scene)
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack())

	// Second invocation: replay lands on the wait, the matching arm runs
	// against the fresh update, and the remaining steps complete the scene.
	require.NoError(t, h.push(msgU("two pizzas")))
	assert.Equal(t, []string{"ask", "save", "finish"}, ran)
	assert.Nil(t, h.sess.Scenes, "completion clears the persisted trace")
	assert.Zero(t, h.fellThrough)
}

func TestEnter_ImmediateCompletion(t *testing.T) {
	var ran []string
	hello := scene.New("hello", func(b *scene.Builder) {
		b.Step("one", step(&ran, "one"))
		b.Step("two", step(&ran, "two"))
	})

	h := newHost(t, hello)
	h.bot.Command("hello", enterMW("hello"))

	require.NoError(t, h.push(cmdU("/hello")))
	assert.Equal(t, []string{"one", "two"}, ran)
	assert.Nil(t, h.sess.Scenes)
}

func TestResume_SkipsSiblingsOnRecordedPath(t *testing.T) {
	var ran []string
	checkout := scene.New("checkout", func(b *scene.Builder) {
		b.Step("ask", step(&ran, "ask"))
		b.Wait("pay-method")
		b.Branch("card", composer.OnCallback("card"), func(c *scene.Builder) {
			c.Step("card-details", step(&ran, "card-details"))
			c.Wait("card-number").On(domain.KindMessage, step(&ran, "card-save"))
			c.Step("card-done", step(&ran, "card-done"))
		})
		b.Branch("cash", composer.OnCallback("cash"), func(c *scene.Builder) {
			c.Step("cash-note", step(&ran, "cash-note"))
		})
		b.Step("done", step(&ran, "done"))
	})

	h := newHost(t, checkout)
	h.bot.Command("checkout", enterMW("checkout"))

	require.NoError(t, h.push(cmdU("/checkout")))
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack())

	// The bare wait resumes on any update; the callback then selects the
	// card branch, which opens a scope and suspends one level deeper.
	require.NoError(t, h.push(cbU("card")))
	assert.Equal(t, domain.Stack{{PC: 2}, {PC: 1}}, h.stack())
	assert.Equal(t, 1, count(ran, "card-details"))

	// The resuming update is a message, which the card branch's own
	// predicate would not match: recorded positions bypass filters, the
	// descent follows the stack, and the cash branch is skipped live.
	require.NoError(t, h.push(msgU("4242")))
	assert.Nil(t, h.sess.Scenes)
	assert.Equal(t, 1, count(ran, "ask"), "replay must not re-run completed steps")
	assert.Equal(t, 1, count(ran, "card-details"))
	assert.Equal(t, []string{"card-save", "card-done", "done"}, ran[len(ran)-3:])
	assert.Zero(t, count(ran, "cash-note"), "sibling off the recorded path must never run")
}

func TestReplay_IsPureWithoutLiveStep(t *testing.T) {
	var ran []string
	quiz := scene.New("quiz", func(b *scene.Builder) {
		b.Step("ask", step(&ran, "ask"))
		b.Wait("answer").Callback("confirm", step(&ran, "confirm"))
	})

	h := newHost(t, quiz)
	h.bot.Command("quiz", enterMW("quiz"))
	h.tail()

	require.NoError(t, h.push(cmdU("/quiz")))
	suspended := h.stack().Clone()
	calls := len(ran)

	// Two updates that match no resume arm: the replay passes are pure.
	// The stack stays identical and no handler runs; the updates fall
	// through to the rest of the chain instead.
	require.NoError(t, h.push(msgU("not a button")))
	require.NoError(t, h.push(msgU("still not")))

	assert.Equal(t, suspended, h.stack())
	assert.Equal(t, calls, len(ran))
	assert.Equal(t, 2, h.fellThrough)

	// The matching callback still resumes afterwards.
	require.NoError(t, h.push(cbU("confirm")))
	assert.Equal(t, 1, count(ran, "confirm"))
	assert.Nil(t, h.sess.Scenes)
}

func TestResume_UnmatchedFallsThroughToOuter(t *testing.T) {
	var outer []string
	sc := scene.New("form", func(b *scene.Builder) {
		b.Step("ask", func(*composer.Context, composer.Next) error { return nil })
		b.Wait("value").Callback("pick", func(*composer.Context, composer.Next) error { return nil })
	})

	h := newHost(t, sc)
	h.bot.Command("form", enterMW("form"))
	h.bot.Command("help", step(&outer, "help"))

	require.NoError(t, h.push(cmdU("/form")))
	// A global command keeps working while the conversation is suspended.
	require.NoError(t, h.push(cmdU("/help")))
	assert.Equal(t, []string{"help"}, outer)
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack(), "fall-through leaves the trace untouched")
}

func TestEnter_ReentrancyRejected(t *testing.T) {
	var entryErr error
	sc := scene.New("outer", func(b *scene.Builder) {
		b.Step("try-reenter", func(ctx *composer.Context, _ composer.Next) error {
			ctl, _ := scene.FromContext(ctx)
			entryErr = ctl.Enter("outer")
			return nil
		})
		b.Wait("hold")
	})

	h := newHost(t, sc)
	h.bot.Command("go", enterMW("outer"))

	require.NoError(t, h.push(cmdU("/go")))
	assert.ErrorIs(t, entryErr, domain.ErrAlreadyActive)
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack(), "rejected enter must leave the trace untouched")
}

func TestEnter_RejectedWhileSuspended(t *testing.T) {
	var second error
	a := scene.New("a", func(b *scene.Builder) {
		b.Step("s", func(*composer.Context, composer.Next) error { return nil })
		b.Wait("w").Callback("never", func(*composer.Context, composer.Next) error { return nil })
	})
	bScene := scene.New("b", func(b *scene.Builder) {
		b.Step("s", func(*composer.Context, composer.Next) error { return nil })
	})

	h := newHost(t, a, bScene)
	h.bot.Command("a", enterMW("a"))
	h.bot.Command("b", func(ctx *composer.Context, _ composer.Next) error {
		ctl, _ := scene.FromContext(ctx)
		second = ctl.Enter("b")
		return nil
	})

	require.NoError(t, h.push(cmdU("/a")))
	require.NoError(t, h.push(cmdU("/b")))
	assert.ErrorIs(t, second, domain.ErrAlreadyActive)
	assert.Equal(t, "a", h.sess.Scenes.Scene)
}

func TestLeave_ClearsStateAndStopsTraversal(t *testing.T) {
	var ran []string
	var leaveErrs []error
	sc := scene.New("bail", func(b *scene.Builder) {
		b.Step("first", step(&ran, "first"))
		b.Step("quit", func(ctx *composer.Context, _ composer.Next) error {
			ctl, _ := scene.FromContext(ctx)
			leaveErrs = append(leaveErrs, ctl.Leave(), ctl.Leave())
			return nil
		})
		b.Step("never", step(&ran, "never"))
	})

	h := newHost(t, sc)
	h.bot.Command("bail", enterMW("bail"))

	require.NoError(t, h.push(cmdU("/bail")))
	assert.Equal(t, []string{"first"}, ran)
	assert.Nil(t, h.sess.Scenes)
	require.Len(t, leaveErrs, 2)
	assert.NoError(t, leaveErrs[0])
	assert.ErrorIs(t, leaveErrs[1], domain.ErrNotActive, "second leave is a reported no-op")
}

func TestBack_RerunsEarlierStep(t *testing.T) {
	var ran []string
	var navErr error
	sc := scene.New("steps", func(b *scene.Builder) {
		b.Step("ask-name", step(&ran, "ask-name"))
		b.Wait("name").On(domain.KindMessage, step(&ran, "save-name"))
		b.Step("ask-age", step(&ran, "ask-age"))
		b.Wait("age").
			Command("redo", func(ctx *composer.Context, _ composer.Next) error {
				ctl, _ := scene.FromContext(ctx)
				// Point the next replay three entries back, at the wait
				// preceding ask-age's question, re-asking the name.
				navErr = ctl.Back(3)
				return nil
			}).
			On(domain.KindMessage, step(&ran, "save-age"))
	})

	h := newHost(t, sc)
	h.bot.Command("steps", enterMW("steps"))

	require.NoError(t, h.push(cmdU("/steps")))
	require.NoError(t, h.push(msgU("Ada")))
	assert.Equal(t, domain.Stack{{PC: 3}}, h.stack())

	require.NoError(t, h.push(cmdU("/redo")))
	require.NoError(t, navErr)
	assert.Equal(t, domain.Stack{{PC: 0}}, h.stack(), "intent lands after the invocation settles")

	// The steered replay re-runs ask-name against the next update and
	// walks forward to the age wait again.
	require.NoError(t, h.push(msgU("Grace")))
	assert.Equal(t, 2, count(ran, "ask-name"))
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack())
}

func TestForward_SkipsAhead(t *testing.T) {
	var ran []string
	sc := scene.New("skip", func(b *scene.Builder) {
		b.Step("one", step(&ran, "one"))
		b.Wait("hold").Command("jump", func(ctx *composer.Context, _ composer.Next) error {
			ctl, _ := scene.FromContext(ctx)
			return ctl.Forward(2)
		})
		b.Step("two", step(&ran, "two"))
		b.Step("three", step(&ran, "three"))
	})

	h := newHost(t, sc)
	h.bot.Command("skip", enterMW("skip"))

	require.NoError(t, h.push(cmdU("/skip")))
	require.NoError(t, h.push(cmdU("/jump")))
	assert.Equal(t, domain.Stack{{PC: 3}}, h.stack())

	// Replay lands on "three": it re-runs live and the scene completes.
	// "two" was skipped entirely.
	require.NoError(t, h.push(msgU("go")))
	assert.Nil(t, h.sess.Scenes)
	assert.Zero(t, count(ran, "two"))
	assert.Equal(t, 1, count(ran, "three"))
}

func TestDiveOut_ResumesAtAncestor(t *testing.T) {
	var ran []string
	wizard := scene.New("wizard", func(b *scene.Builder) {
		b.Step("intro", step(&ran, "intro"))
		b.Call("outer", func(o *scene.Builder) {
			o.Step("outer-first", step(&ran, "outer-first"))
			o.Call("inner", func(i *scene.Builder) {
				i.Step("inner-first", step(&ran, "inner-first"))
				i.Wait("deep").Command("restart", func(ctx *composer.Context, _ composer.Next) error {
					ctl, _ := scene.FromContext(ctx)
					return ctl.DiveOut(2)
				}).On(domain.KindMessage, step(&ran, "deep-save"))
				i.Step("inner-rest", step(&ran, "inner-rest"))
			})
			o.Step("outer-rest", step(&ran, "outer-rest"))
		})
		b.Step("finale", step(&ran, "finale"))
	})

	h := newHost(t, wizard)
	h.bot.Command("wizard", enterMW("wizard"))

	require.NoError(t, h.push(cmdU("/wizard")))
	assert.Equal(t, domain.Stack{{PC: 1}, {PC: 1}, {PC: 1}}, h.stack())

	// Popping two frames keeps the ancestor's recorded position, so the
	// next invocation lands on the outer call entry, not the leaf.
	require.NoError(t, h.push(cmdU("/restart")))
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack())
	assert.Zero(t, count(ran, "inner-rest"), "steering stops the current traversal")

	require.NoError(t, h.push(msgU("again")))
	assert.Equal(t, 2, count(ran, "outer-first"), "the ancestor sub-tree re-enters from its start")
	assert.Equal(t, 1, count(ran, "intro"), "entries before the ancestor are not replayed live")
	assert.Equal(t, domain.Stack{{PC: 1}, {PC: 1}, {PC: 1}}, h.stack())
}

func TestSwitch_MovesToOtherSceneFresh(t *testing.T) {
	var ran []string
	first := scene.New("first", func(b *scene.Builder) {
		b.Step("f1", step(&ran, "f1"))
		b.Wait("w").Command("other", func(ctx *composer.Context, _ composer.Next) error {
			ctl, _ := scene.FromContext(ctx)
			return ctl.Switch("second")
		})
		b.Step("f2", step(&ran, "f2"))
	})
	second := scene.New("second", func(b *scene.Builder) {
		b.Step("s1", step(&ran, "s1"))
		b.Wait("w").On(domain.KindMessage, step(&ran, "s2"))
	})

	h := newHost(t, first, second)
	h.bot.Command("first", enterMW("first"))

	require.NoError(t, h.push(cmdU("/first")))
	require.NoError(t, h.push(cmdU("/other")))
	require.NotNil(t, h.sess.Scenes)
	assert.Equal(t, "second", h.sess.Scenes.Scene)
	assert.Equal(t, domain.Stack{{PC: domain.PCUnset}}, h.stack())
	assert.Zero(t, count(ran, "f2"), "switching stops the old traversal")

	// The next update drives the new scene from its start.
	require.NoError(t, h.push(msgU("hello")))
	assert.Equal(t, 1, count(ran, "s1"))
	assert.Equal(t, domain.Stack{{PC: 1}}, h.stack())

	require.NoError(t, h.push(msgU("done")))
	assert.Equal(t, 1, count(ran, "s2"))
	assert.Nil(t, h.sess.Scenes)
}

func TestNavigation_Validation(t *testing.T) {
	sc := scene.New("nav", func(b *scene.Builder) {
		b.Step("only", func(*composer.Context, composer.Next) error { return nil })
		b.Wait("w").Callback("never", func(*composer.Context, composer.Next) error { return nil })
	})

	h := newHost(t, sc)

	errs := map[string]error{}
	h.bot.Command("probe", func(ctx *composer.Context, _ composer.Next) error {
		ctl, _ := scene.FromContext(ctx)
		errs["back-idle"] = ctl.Back(1)
		errs["leave-idle"] = ctl.Leave()
		errs["switch-idle"] = ctl.Switch("nav")
		errs["enter-unknown"] = ctl.Enter("ghost")
		return nil
	})
	h.bot.Command("nav", enterMW("nav"))
	h.bot.Command("probe2", func(ctx *composer.Context, _ composer.Next) error {
		ctl, _ := scene.FromContext(ctx)
		errs["back-range"] = ctl.Back(7)
		errs["forward-range"] = ctl.Forward(7)
		errs["dive-range"] = ctl.DiveOut(1)
		errs["switch-unknown"] = ctl.Switch("ghost")
		return nil
	})

	require.NoError(t, h.push(cmdU("/probe")))
	assert.ErrorIs(t, errs["back-idle"], domain.ErrNotActive)
	assert.ErrorIs(t, errs["leave-idle"], domain.ErrNotActive)
	assert.ErrorIs(t, errs["switch-idle"], domain.ErrNotActive)
	assert.ErrorIs(t, errs["enter-unknown"], domain.ErrUnknownScene)

	require.NoError(t, h.push(cmdU("/nav")))
	before := h.stack().Clone()
	require.NoError(t, h.push(cmdU("/probe2")))
	assert.ErrorIs(t, errs["back-range"], domain.ErrInvalidPosition)
	assert.ErrorIs(t, errs["forward-range"], domain.ErrInvalidPosition)
	assert.ErrorIs(t, errs["dive-range"], domain.ErrInvalidPosition)
	assert.ErrorIs(t, errs["switch-unknown"], domain.ErrUnknownScene)
	assert.Equal(t, before, h.stack(), "rejected navigation never corrupts the trace")
}

func TestDesync_EntryRemovedBetweenInvocations(t *testing.T) {
	build := func(extended bool) *scene.Scene {
		return scene.New("evolving", func(b *scene.Builder) {
			b.Step("one", func(*composer.Context, composer.Next) error { return nil })
			if extended {
				b.Step("two", func(*composer.Context, composer.Next) error { return nil })
				b.Wait("hold")
			}
		})
	}

	h := newHost(t, build(true))
	h.bot.Command("go", enterMW("evolving"))
	require.NoError(t, h.push(cmdU("/go")))
	assert.Equal(t, domain.Stack{{PC: 2}}, h.stack())

	// Restart with a shorter tree: the recorded position no longer exists.
	h2 := newHost(t, build(false))
	h2.sess = h.sess
	h2.tail()

	err := h2.push(msgU("resume me"))
	require.Error(t, err)
	var derr *domain.DesyncError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "evolving", derr.Scene)
	assert.Nil(t, h2.sess.Scenes, "a desynchronized trace is discarded")

	// The conversation is gone; later updates pass through cleanly.
	require.NoError(t, h2.push(msgU("hello?")))
	assert.Equal(t, 1, h2.fellThrough)
}

func TestDesync_DescentIntoNonScope(t *testing.T) {
	sc := scene.New("flat", func(b *scene.Builder) {
		b.Step("plain", func(*composer.Context, composer.Next) error { return nil })
		b.Wait("w")
	})

	h := newHost(t, sc)
	// A stack deeper than the tree: depth 2 recorded against a flat scene.
	h.sess.Scenes = &domain.SceneState{Scene: "flat", Stack: domain.Stack{{PC: 0}, {PC: 0}}}

	err := h.push(msgU("resume"))
	var derr *domain.DesyncError
	require.ErrorAs(t, err, &derr)
	assert.Nil(t, h.sess.Scenes)
}

func TestDesync_UnknownScene(t *testing.T) {
	h := newHost(t)
	h.sess.Scenes = &domain.SceneState{Scene: "ghost", Stack: domain.Stack{{PC: 0}}}

	err := h.push(msgU("resume"))
	var derr *domain.DesyncError
	require.ErrorAs(t, err, &derr)
	assert.True(t, domain.IsDesync(err))
	assert.Nil(t, h.sess.Scenes)
}

func TestHandlerError_RetryResumesAtFailingStep(t *testing.T) {
	errFlaky := errors.New("downstream unavailable")
	var ran []string
	attempts := 0
	sc := scene.New("flaky", func(b *scene.Builder) {
		b.Step("ok", step(&ran, "ok"))
		b.Wait("go")
		b.Step("flaky", func(*composer.Context, composer.Next) error {
			attempts++
			if attempts == 1 {
				return errFlaky
			}
			return nil
		})
		b.Step("after", step(&ran, "after"))
	})

	h := newHost(t, sc)
	h.bot.Command("flaky", enterMW("flaky"))

	require.NoError(t, h.push(cmdU("/flaky")))

	err := h.push(msgU("resume"))
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, domain.Stack{{PC: 2}}, h.stack(), "the failing entry's position is recorded before it runs")
	assert.Zero(t, count(ran, "after"))

	// The retry replays straight to the failing step and re-runs it.
	require.NoError(t, h.push(msgU("retry")))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, count(ran, "after"))
	assert.Nil(t, h.sess.Scenes)
}

func TestHooks_FireAcrossLifecycle(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnSceneEnter: func(_ context.Context, ev *domain.SceneEvent) {
			events = append(events, "enter:"+ev.Scene)
		},
		OnSceneLeave: func(_ context.Context, ev *domain.SceneEvent) {
			events = append(events, fmt.Sprintf("leave:%s:%s", ev.Scene, ev.Reason))
		},
		OnStepRun: func(_ context.Context, ev *domain.StepEvent) {
			events = append(events, fmt.Sprintf("step:%d.%d", ev.Depth, ev.PC))
		},
		OnWait: func(_ context.Context, ev *domain.StepEvent) {
			events = append(events, fmt.Sprintf("wait:%d.%d", ev.Depth, ev.PC))
		},
	}

	sc := scene.New("watched", func(b *scene.Builder) {
		b.Step("ask", func(*composer.Context, composer.Next) error { return nil })
		b.Wait("answer").On(domain.KindMessage, func(*composer.Context, composer.Next) error { return nil })
		b.Step("finish", func(*composer.Context, composer.Next) error { return nil })
	})

	h := newHostOpts(t, []scene.Option{scene.WithHooks(hooks)}, sc)
	h.bot.Command("watched", enterMW("watched"))

	require.NoError(t, h.push(cmdU("/watched")))
	require.NoError(t, h.push(msgU("42")))

	assert.Equal(t, []string{
		"enter:watched",
		"step:0.0",
		"wait:0.1",
		"step:0.1",
		"step:0.2",
		"leave:watched:completed",
	}, events)
}

func TestEngine_EnterProgrammatic(t *testing.T) {
	var ran []string
	sc := scene.New("direct", func(b *scene.Builder) {
		b.Step("greet", step(&ran, "greet"))
		b.Wait("w")
	})
	eng := scene.NewEngine(scene.NewRegistry(sc))

	sess := domain.NewSession()
	ctx := composer.NewContext(context.Background(), &domain.Update{Key: "k", Kind: domain.KindEvent}, sess)
	require.NoError(t, eng.Enter(ctx, "direct"))

	assert.Equal(t, []string{"greet"}, ran)
	require.NotNil(t, sess.Scenes)
	assert.Equal(t, domain.Stack{{PC: 1}}, sess.Scenes.Stack)
}

func TestWait_FirstMatchingArmWins(t *testing.T) {
	var ran []string
	sc := scene.New("arms", func(b *scene.Builder) {
		b.Step("ask", step(&ran, "ask"))
		b.Wait("choice").
			Callback("a", step(&ran, "arm-a")).
			Callback("b", step(&ran, "arm-b")).
			Use(step(&ran, "arm-any"))
	})

	h := newHost(t, sc)
	h.bot.Command("arms", enterMW("arms"))

	require.NoError(t, h.push(cmdU("/arms")))
	require.NoError(t, h.push(cbU("b")))
	assert.Equal(t, 1, count(ran, "arm-b"))
	assert.Zero(t, count(ran, "arm-a"))
	assert.Zero(t, count(ran, "arm-any"))
	assert.Nil(t, h.sess.Scenes)
}

func TestPassThrough_WithoutActiveScene(t *testing.T) {
	h := newHost(t)
	h.tail()

	require.NoError(t, h.push(msgU("nothing active")))
	assert.Equal(t, 1, h.fellThrough)
	assert.Nil(t, h.sess.Scenes)
}
