package scene

import (
	"fmt"
	"log/slog"

	"github.com/gabelluardo/grammY/internal/logging"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// walkResult reports how one traversal pass ended.
type walkResult uint8

const (
	walkSuspended   walkResult = iota // a wait recorded its position and stopped
	walkCompleted                     // fell off the end of the scope
	walkFallthrough                   // no resume arm matched; the update was not consumed
	walkLeft                          // a handler called Leave
	walkSteered                       // a handler recorded a navigation intent
)

// runState is the traversal state of one invocation. It lives on the call
// stack of one Handle call and is never shared between updates.
type runState struct {
	st      *domain.SceneState
	cursor  int  // stack index being replayed, -1 in live mode
	driving bool // a tree is being driven; rejects reentrant Enter
	left    bool // Leave was called during traversal
	halt    bool // navigation was recorded; no further entries run
	pending *pendingNav
}

func (rs *runState) replaying() bool { return rs.cursor >= 0 }

var nopNext composer.Next = func() error { return nil }

// Engine drives scene trees. It resumes suspended conversations by
// replaying their persisted stack against the registered tree, then runs
// live execution at the frontier against the current update. Mount it on a
// composer chain with Middleware.
type Engine struct {
	reg    *Registry
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHooks registers lifecycle hooks fired during traversal.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithLogger sets the traversal logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given registry.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the scene registry the engine dispatches over.
func (e *Engine) Registry() *Registry { return e.reg }

// Middleware mounts the engine on a composer chain. For every update it
// installs the navigation Control, resumes the active scene when one is
// suspended, and otherwise passes the update through.
func (e *Engine) Middleware() composer.Middleware {
	return e.Handle
}

// Handle implements composer.Middleware. Updates that resume a scene are
// consumed; updates with no active scene, and updates no resume arm
// matched, continue down the chain.
func (e *Engine) Handle(ctx *composer.Context, next composer.Next) error {
	if ctx.Session == nil {
		// No session middleware in front of the engine. Handlers still get
		// a working Control, but nothing persists past this invocation.
		ctx.Session = domain.NewSession()
	}
	rs := &runState{cursor: -1}
	ctx.Set(controlKey{}, &Control{eng: e, ctx: ctx, rs: rs})

	var err error
	if ctx.Session.Scenes == nil {
		err = next()
	} else {
		var res walkResult
		res, err = e.resume(ctx, rs)
		if err == nil && res == walkFallthrough {
			err = next()
		}
	}
	if err != nil {
		return err
	}
	e.applyPending(ctx, rs)
	return nil
}

// Enter starts a scene programmatically, outside any mounted pipeline, and
// drives it until it suspends or completes. Hosts use this to open a
// conversation without an inbound update triggering it.
func (e *Engine) Enter(ctx *composer.Context, id string) error {
	if ctx.Session == nil {
		ctx.Session = domain.NewSession()
	}
	rs := &runState{cursor: -1}
	ctl := &Control{eng: e, ctx: ctx, rs: rs}
	ctx.Set(controlKey{}, ctl)
	if err := ctl.Enter(id); err != nil {
		return err
	}
	e.applyPending(ctx, rs)
	return nil
}

// resume replays the persisted stack of the active scene and hands off to
// live execution at the suspension point.
func (e *Engine) resume(ctx *composer.Context, rs *runState) (walkResult, error) {
	st := ctx.Session.Scenes
	sc, ok := e.reg.Get(st.Scene)
	if !ok {
		return 0, e.desync(ctx, rs, &domain.DesyncError{Scene: st.Scene, Reason: "scene not registered"})
	}
	if len(st.Stack) == 0 {
		return 0, e.desync(ctx, rs, &domain.DesyncError{Scene: st.Scene, Reason: "empty stack"})
	}

	e.logger.Debug("resuming scene", "scene", st.Scene, "key", ctx.Update.Key, "depth", len(st.Stack))
	rs.st = st
	rs.cursor = 0
	return e.drive(ctx, rs, sc)
}

// drive traverses sc's root scope and settles the trace afterwards:
// completion clears it and fires the leave hook. Handler errors leave the
// bookkeeping recorded up to the failure point, so a retry resumes at the
// failing entry.
func (e *Engine) drive(ctx *composer.Context, rs *runState, sc *Scene) (walkResult, error) {
	rs.driving = true
	res, err := e.traverse(ctx, rs, sc, 0, 0)
	rs.driving = false
	if err != nil {
		return res, err
	}
	if res == walkCompleted {
		ctx.Session.Scenes = nil
		rs.st = nil
		e.hooks.EmitSceneLeave(ctx.Context(), &domain.SceneEvent{
			EventBase: domain.NewEventBase(domain.EventSceneLeave, ctx.Update.Key),
			Scene:     sc.id,
			Reason:    domain.LeaveCompleted,
		})
		e.logger.Debug("scene completed", "scene", sc.id, "key", ctx.Update.Key)
	}
	return res, nil
}

// traverse walks one scope. While a replay cursor is active it follows the
// frame recorded for this depth; once the cursor clears it runs entries in
// order, recording each selected position before running it.
func (e *Engine) traverse(ctx *composer.Context, rs *runState, sc *Scene, scopeIdx, depth int) (walkResult, error) {
	entries := sc.scopes[scopeIdx].entries
	start := 0

	if rs.replaying() {
		target := rs.st.Stack[rs.cursor].PC
		last := rs.cursor == len(rs.st.Stack)-1

		switch {
		case target == domain.PCUnset:
			// The scope was opened but nothing was selected yet. Only the
			// innermost frame can be in that state.
			if !last {
				return 0, e.desync(ctx, rs, &domain.DesyncError{Scene: sc.id, Depth: rs.cursor, PC: target, Reason: "unselected frame below the top"})
			}
			rs.cursor = -1

		case target < 0 || target >= len(entries):
			return 0, e.desync(ctx, rs, &domain.DesyncError{Scene: sc.id, Depth: rs.cursor, PC: target, Reason: "no entry at recorded position"})

		case !last:
			// The recorded path descends here. Siblings before the target
			// are skipped without running; the matched entry must be the
			// one that opened the next scope.
			ent := &entries[target]
			if ent.kind != KindScope {
				return 0, e.desync(ctx, rs, &domain.DesyncError{Scene: sc.id, Depth: rs.cursor, PC: target, Reason: "recorded descent into a non-scope entry"})
			}
			rs.cursor++
			res, err := e.traverse(ctx, rs, sc, ent.child, depth+1)
			if err != nil || res != walkCompleted {
				return res, err
			}
			// The nested scope finished. Close its frame and continue
			// after the opening entry.
			rs.st.Stack = rs.st.Stack[:len(rs.st.Stack)-1]
			start = target + 1

		default:
			// Replay ends at this depth: the recorded entry is the
			// suspension point, and execution switches to live against the
			// current update.
			rs.cursor = -1
			ent := &entries[target]
			switch ent.kind {
			case KindWait:
				matched, err := e.resumeWait(ctx, rs, sc, ent, depth)
				if err != nil {
					return 0, err
				}
				if !matched {
					e.logger.Debug("no resume arm matched", "scene", sc.id, "key", ctx.Update.Key, "pc", target)
					return walkFallthrough, nil
				}
			case KindStep:
				// A step at the top of the stack comes from navigation or
				// from a retry after a failed handler; it runs again in
				// full against the current update.
				if err := e.runStep(ctx, rs, sc, ent, depth, true); err != nil {
					return 0, err
				}
			case KindScope:
				// Navigation landed on the opening entry; its sub-tree
				// re-enters from the start.
				res, err := e.enterScope(ctx, rs, sc, ent, depth)
				if err != nil || res != walkCompleted {
					return res, err
				}
			}
			if rs.left {
				return walkLeft, nil
			}
			if rs.halt {
				return walkSteered, nil
			}
			start = target + 1
		}
	}

	return e.live(ctx, rs, sc, scopeIdx, depth, start)
}

// live runs entries from start in order. Entries whose predicate does not
// match the update are passed over without recording a position.
func (e *Engine) live(ctx *composer.Context, rs *runState, sc *Scene, scopeIdx, depth, start int) (walkResult, error) {
	entries := sc.scopes[scopeIdx].entries
	for i := start; i < len(entries); i++ {
		ent := &entries[i]
		if ent.filter != nil && !ent.filter(ctx.Update) {
			continue
		}
		e.record(rs, i)

		switch ent.kind {
		case KindWait:
			e.hooks.EmitWait(ctx.Context(), &domain.StepEvent{
				EventBase: domain.NewEventBase(domain.EventWait, ctx.Update.Key),
				Scene:     sc.id, Depth: depth, PC: i, Label: ent.label,
			})
			e.logger.Debug("scene suspended", "scene", sc.id, "key", ctx.Update.Key, "pc", i, "depth", depth)
			return walkSuspended, nil
		case KindStep:
			if err := e.runStep(ctx, rs, sc, ent, depth, false); err != nil {
				return 0, err
			}
		case KindScope:
			res, err := e.enterScope(ctx, rs, sc, ent, depth)
			if err != nil || res != walkCompleted {
				return res, err
			}
		}
		if rs.left {
			return walkLeft, nil
		}
		if rs.halt {
			return walkSteered, nil
		}
	}
	return walkCompleted, nil
}

// record writes pc into the innermost frame. Recording happens before the
// handler runs, so the entry a failed handler belongs to is the one a
// retry resumes at.
func (e *Engine) record(rs *runState, pc int) {
	rs.st.Stack[len(rs.st.Stack)-1].PC = pc
}

func (e *Engine) runStep(ctx *composer.Context, rs *runState, sc *Scene, ent *entry, depth int, replayed bool) error {
	e.hooks.EmitStepRun(ctx.Context(), &domain.StepEvent{
		EventBase: domain.NewEventBase(domain.EventStepRun, ctx.Update.Key),
		Scene:     sc.id, Depth: depth, PC: ent.pc, Label: ent.label, Replayed: replayed,
	})
	if err := ent.handler(ctx, nopNext); err != nil {
		return fmt.Errorf("scene %q step %d: %w", sc.id, ent.pc, err)
	}
	return nil
}

// enterScope pushes a fresh frame and runs the nested scope from its
// start. Completion pops the frame again; suspension keeps it, one frame
// per open scope.
func (e *Engine) enterScope(ctx *composer.Context, rs *runState, sc *Scene, ent *entry, depth int) (walkResult, error) {
	e.hooks.EmitStepRun(ctx.Context(), &domain.StepEvent{
		EventBase: domain.NewEventBase(domain.EventStepRun, ctx.Update.Key),
		Scene:     sc.id, Depth: depth, PC: ent.pc, Label: ent.label,
	})
	rs.st.Stack = append(rs.st.Stack, domain.Frame{PC: domain.PCUnset})
	res, err := e.traverse(ctx, rs, sc, ent.child, depth+1)
	if err != nil || res != walkCompleted {
		return res, err
	}
	rs.st.Stack = rs.st.Stack[:len(rs.st.Stack)-1]
	return walkCompleted, nil
}

// resumeWait matches the current update against the wait's resume group.
// The first arm whose filter matches runs; a wait with no arms resumes
// unconditionally without running a handler.
func (e *Engine) resumeWait(ctx *composer.Context, rs *runState, sc *Scene, ent *entry, depth int) (bool, error) {
	if len(ent.resume) == 0 {
		return true, nil
	}
	for i := range ent.resume {
		arm := &ent.resume[i]
		if arm.filter != nil && !arm.filter(ctx.Update) {
			continue
		}
		label := arm.label
		if label == "" {
			label = ent.label
		}
		e.hooks.EmitStepRun(ctx.Context(), &domain.StepEvent{
			EventBase: domain.NewEventBase(domain.EventStepRun, ctx.Update.Key),
			Scene:     sc.id, Depth: depth, PC: ent.pc, Label: label,
		})
		if err := arm.handler(ctx, nopNext); err != nil {
			return true, fmt.Errorf("scene %q resume %d: %w", sc.id, ent.pc, err)
		}
		return true, nil
	}
	return false, nil
}

// desync discards the persisted trace and surfaces the mismatch. Replaying
// against a tree that changed shape cannot be reconciled automatically, so
// the conversation is treated as abandoned.
func (e *Engine) desync(ctx *composer.Context, rs *runState, derr *domain.DesyncError) error {
	ctx.Session.Scenes = nil
	rs.st = nil
	rs.cursor = -1
	e.hooks.EmitSceneLeave(ctx.Context(), &domain.SceneEvent{
		EventBase: domain.NewEventBase(domain.EventSceneLeave, ctx.Update.Key),
		Scene:     derr.Scene,
		Reason:    domain.LeaveDesync,
	})
	e.logger.Error("scene trace discarded", "scene", derr.Scene, "key", ctx.Update.Key, "err", derr)
	return derr
}
