package scene

import (
	"fmt"

	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

type controlKey struct{}

// FromContext returns the Control the engine installed for this
// invocation. ok is false outside an engine-mounted pipeline.
func FromContext(ctx *composer.Context) (*Control, bool) {
	ctl, ok := ctx.Value(controlKey{}).(*Control)
	return ctl, ok
}

// navKind discriminates deferred stack mutations.
type navKind uint8

const (
	navSetPC navKind = iota
	navPop
	navSwitch
)

// pendingNav is a navigation intent recorded during traversal and applied
// once the invocation settles. It steers where the next invocation's
// replay stops; the stack is never rewritten mid-traversal.
type pendingNav struct {
	kind  navKind
	scene string
	depth int // stack depth at record time, re-checked at apply time
	pc    int
	n     int
}

// Control is the navigation surface handlers use during one invocation.
// Enter and Leave act immediately. Back, Forward, DiveOut and Switch are
// validated immediately but applied after the traversal settles; recording
// one also stops the current traversal, so no further entries run once a
// handler has decided where the conversation goes next. The last recorded
// intent wins.
type Control struct {
	eng *Engine
	ctx *composer.Context
	rs  *runState
}

// Active returns the identifier of the active scene, or "" when idle.
func (c *Control) Active() string {
	if c.ctx.Session.Scenes == nil {
		return ""
	}
	return c.ctx.Session.Scenes.Scene
}

// Depth returns the number of open scopes of the active scene, 0 when idle.
func (c *Control) Depth() int {
	if c.ctx.Session.Scenes == nil {
		return 0
	}
	return len(c.ctx.Session.Scenes.Stack)
}

// Enter starts the identified scene for this conversation and drives it
// until it suspends or completes. It is rejected while a scene is already
// active: either a tree is driving the current update, or a suspended
// trace exists. Leave first, or use Switch from inside a scene.
func (c *Control) Enter(id string) error {
	if c.rs.driving {
		return fmt.Errorf("enter %q while handling a scene update: %w", id, domain.ErrAlreadyActive)
	}
	sess := c.ctx.Session
	if sess.Scenes != nil {
		return fmt.Errorf("enter %q over active scene %q: %w", id, sess.Scenes.Scene, domain.ErrAlreadyActive)
	}
	sc, ok := c.eng.reg.Get(id)
	if !ok {
		return fmt.Errorf("enter %q: %w", id, domain.ErrUnknownScene)
	}

	st := &domain.SceneState{Scene: id, Stack: domain.Stack{{PC: domain.PCUnset}}}
	sess.Scenes = st
	c.rs.st = st
	c.rs.cursor = -1
	c.rs.left = false
	c.rs.halt = false
	c.eng.hooks.EmitSceneEnter(c.ctx.Context(), &domain.SceneEvent{
		EventBase: domain.NewEventBase(domain.EventSceneEnter, c.ctx.Update.Key),
		Scene:     id,
	})
	c.eng.logger.Debug("scene entered", "scene", id, "key", c.ctx.Update.Key)

	_, err := c.eng.drive(c.ctx, c.rs, sc)
	return err
}

// Leave abandons the active scene and clears its trace immediately. The
// current traversal unwinds without running further entries, and any
// pending navigation is cancelled. A second call reports ErrNotActive.
func (c *Control) Leave() error {
	sess := c.ctx.Session
	if sess.Scenes == nil {
		return domain.ErrNotActive
	}
	left := sess.Scenes.Scene
	sess.Scenes = nil
	c.rs.st = nil
	c.rs.left = true
	c.rs.pending = nil
	c.eng.hooks.EmitSceneLeave(c.ctx.Context(), &domain.SceneEvent{
		EventBase: domain.NewEventBase(domain.EventSceneLeave, c.ctx.Update.Key),
		Scene:     left,
		Reason:    domain.LeaveExplicit,
	})
	c.eng.logger.Debug("scene left", "scene", left, "key", c.ctx.Update.Key)
	return nil
}

// Back steers the next invocation's replay n entries before the recorded
// position at the current depth, re-running that entry against the next
// update.
func (c *Control) Back(n int) error { return c.shift(-n) }

// Forward steers the next invocation's replay n entries past the recorded
// position, skipping the entries in between.
func (c *Control) Forward(n int) error { return c.shift(n) }

func (c *Control) shift(delta int) error {
	st := c.ctx.Session.Scenes
	if st == nil {
		return domain.ErrNotActive
	}
	if delta == 0 {
		return fmt.Errorf("zero offset: %w", domain.ErrInvalidPosition)
	}
	sc, ok := c.eng.reg.Get(st.Scene)
	if !ok {
		return fmt.Errorf("scene %q: %w", st.Scene, domain.ErrUnknownScene)
	}
	scopeIdx, ok := resolveScope(sc, st.Stack)
	if !ok {
		return domain.ErrInvalidPosition
	}
	top, _ := st.Stack.Top()
	if top.PC == domain.PCUnset {
		return fmt.Errorf("no entry recorded yet: %w", domain.ErrInvalidPosition)
	}
	target := top.PC + delta
	if target < 0 || target >= len(sc.scopes[scopeIdx].entries) {
		return fmt.Errorf("position %d out of range: %w", target, domain.ErrInvalidPosition)
	}
	c.rs.pending = &pendingNav{kind: navSetPC, scene: st.Scene, depth: len(st.Stack), pc: target}
	c.rs.halt = true
	return nil
}

// DiveOut pops n frames, steering the next invocation to the ancestor
// scope n levels up. The ancestor keeps its recorded position, so its
// sub-tree re-enters from the start when the conversation resumes.
func (c *Control) DiveOut(n int) error {
	st := c.ctx.Session.Scenes
	if st == nil {
		return domain.ErrNotActive
	}
	if n < 1 || n >= len(st.Stack) {
		return fmt.Errorf("cannot pop %d of %d frames: %w", n, len(st.Stack), domain.ErrInvalidPosition)
	}
	c.rs.pending = &pendingNav{kind: navPop, scene: st.Scene, depth: len(st.Stack), n: n}
	c.rs.halt = true
	return nil
}

// Switch replaces the active scene with another one starting fresh. The
// change lands after this invocation settles; the current traversal is not
// interrupted.
func (c *Control) Switch(id string) error {
	if c.ctx.Session.Scenes == nil {
		return fmt.Errorf("switch %q: %w", id, domain.ErrNotActive)
	}
	if _, ok := c.eng.reg.Get(id); !ok {
		return fmt.Errorf("switch %q: %w", id, domain.ErrUnknownScene)
	}
	c.rs.pending = &pendingNav{kind: navSwitch, scene: id}
	c.rs.halt = true
	return nil
}

// resolveScope follows the leading frames of stack down the tree and
// returns the arena index of the scope the last frame lives in.
func resolveScope(sc *Scene, stack domain.Stack) (int, bool) {
	idx := 0
	for i := 0; i < len(stack)-1; i++ {
		pc := stack[i].PC
		entries := sc.scopes[idx].entries
		if pc < 0 || pc >= len(entries) || entries[pc].kind != KindScope {
			return 0, false
		}
		idx = entries[pc].child
	}
	return idx, true
}

// applyPending settles the navigation intent recorded during this
// invocation. Intents that no longer fit the trace, because the scene
// changed or the stack moved, are dropped.
func (e *Engine) applyPending(ctx *composer.Context, rs *runState) {
	p := rs.pending
	if p == nil {
		return
	}
	rs.pending = nil
	sess := ctx.Session

	switch p.kind {
	case navSwitch:
		old := ""
		if sess.Scenes != nil {
			old = sess.Scenes.Scene
		}
		sess.Scenes = &domain.SceneState{Scene: p.scene, Stack: domain.Stack{{PC: domain.PCUnset}}}
		if old != "" {
			e.hooks.EmitSceneLeave(ctx.Context(), &domain.SceneEvent{
				EventBase: domain.NewEventBase(domain.EventSceneLeave, ctx.Update.Key),
				Scene:     old,
				Reason:    domain.LeaveSwitched,
			})
		}
		e.hooks.EmitSceneEnter(ctx.Context(), &domain.SceneEvent{
			EventBase: domain.NewEventBase(domain.EventSceneEnter, ctx.Update.Key),
			Scene:     p.scene,
		})
		e.logger.Debug("scene switched", "from", old, "to", p.scene, "key", ctx.Update.Key)

	case navSetPC:
		st := sess.Scenes
		if st == nil || st.Scene != p.scene || len(st.Stack) != p.depth {
			e.logger.Debug("navigation dropped, trace moved on", "scene", p.scene, "key", ctx.Update.Key)
			return
		}
		sc, ok := e.reg.Get(st.Scene)
		if !ok {
			return
		}
		scopeIdx, ok := resolveScope(sc, st.Stack)
		if !ok || p.pc < 0 || p.pc >= len(sc.scopes[scopeIdx].entries) {
			e.logger.Debug("navigation dropped, position invalid", "scene", p.scene, "pc", p.pc)
			return
		}
		st.Stack[len(st.Stack)-1].PC = p.pc
		e.logger.Debug("position moved", "scene", p.scene, "key", ctx.Update.Key, "pc", p.pc)

	case navPop:
		st := sess.Scenes
		if st == nil || st.Scene != p.scene || len(st.Stack) != p.depth || p.n >= len(st.Stack) {
			e.logger.Debug("navigation dropped, trace moved on", "scene", p.scene, "key", ctx.Update.Key)
			return
		}
		st.Stack = st.Stack[:len(st.Stack)-p.n]
		e.logger.Debug("dove out", "scene", p.scene, "key", ctx.Update.Key, "depth", len(st.Stack))
	}
}
