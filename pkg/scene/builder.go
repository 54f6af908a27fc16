package scene

import (
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// Builder appends entries to one scope. Registration methods return the
// builder, so chained calls read top to bottom in dispatch order. Positions
// are assigned as the strictly increasing count of entries registered in
// the scope; they are never reused or reassigned.
type Builder struct {
	scene *Scene
	scope int
}

func (b *Builder) add(e entry) *Builder {
	sc := &b.scene.scopes[b.scope]
	e.pc = len(sc.entries)
	if e.kind != KindScope {
		e.child = -1
	}
	sc.entries = append(sc.entries, e)
	return b
}

// Use appends an unconditional step.
func (b *Builder) Use(mws ...composer.Middleware) *Builder {
	return b.add(entry{kind: KindStep, handler: composer.Compose(mws...)})
}

// Step appends a labeled unconditional step. The label shows up in
// introspection output and lifecycle events.
func (b *Builder) Step(label string, mws ...composer.Middleware) *Builder {
	return b.add(entry{kind: KindStep, label: label, handler: composer.Compose(mws...)})
}

// Filter appends a step gated by pred. Unmatched updates skip the step
// without recording a position.
func (b *Builder) Filter(pred composer.Filter, mws ...composer.Middleware) *Builder {
	return b.add(entry{kind: KindStep, filter: pred, handler: composer.Compose(mws...)})
}

// On appends a step gated on update kind.
func (b *Builder) On(kind domain.UpdateKind, mws ...composer.Middleware) *Builder {
	return b.add(entry{
		kind:    KindStep,
		label:   string(kind),
		filter:  composer.OnKind(kind),
		handler: composer.Compose(mws...),
	})
}

// Command appends a step gated on the named command.
func (b *Builder) Command(name string, mws ...composer.Middleware) *Builder {
	return b.add(entry{
		kind:    KindStep,
		label:   "/" + name,
		filter:  composer.OnCommand(name),
		handler: composer.Compose(mws...),
	})
}

// Call opens an unconditional nested scope populated by build. Selecting
// the entry pushes a frame and runs the scope from its first entry;
// completing the scope pops the frame and continues after the entry.
func (b *Builder) Call(label string, build func(*Builder)) *Builder {
	return b.branch(label, nil, build)
}

// Branch opens a nested scope gated by pred. Unmatched updates skip the
// whole sub-tree.
func (b *Builder) Branch(label string, pred composer.Filter, build func(*Builder)) *Builder {
	return b.branch(label, pred, build)
}

func (b *Builder) branch(label string, pred composer.Filter, build func(*Builder)) *Builder {
	child := b.scene.newScope(b.scope, len(b.scene.scopes[b.scope].entries))
	b.add(entry{kind: KindScope, label: label, filter: pred, child: child})
	if build != nil {
		build(&Builder{scene: b.scene, scope: child})
	}
	return b
}

// Wait appends the suspension marker: live traversal records its position
// and ends the invocation. The returned WaitBuilder registers the gated
// resume group the next update is matched against. A wait with no arms
// resumes unconditionally, continuing with the entries after it.
func (b *Builder) Wait(label string) *WaitBuilder {
	b.add(entry{kind: KindWait, label: label})
	sc := &b.scene.scopes[b.scope]
	return &WaitBuilder{
		parent: b,
		entry:  len(sc.entries) - 1,
	}
}

// WaitBuilder registers resume arms on one wait entry. The first arm whose
// filter matches the resuming update runs; traversal then continues after
// the wait. When no arm matches, the conversation stays suspended and the
// update falls through to the pipeline outside the scenes engine.
type WaitBuilder struct {
	parent *Builder
	entry  int
}

func (w *WaitBuilder) arm(a resumeArm) *WaitBuilder {
	sc := &w.parent.scene.scopes[w.parent.scope]
	e := &sc.entries[w.entry]
	e.resume = append(e.resume, a)
	return w
}

// Use registers an unconditional resume arm. It matches every update, so
// arms registered after it are unreachable.
func (w *WaitBuilder) Use(mws ...composer.Middleware) *WaitBuilder {
	return w.arm(resumeArm{handler: composer.Compose(mws...)})
}

// Filter registers a resume arm gated by pred.
func (w *WaitBuilder) Filter(pred composer.Filter, mws ...composer.Middleware) *WaitBuilder {
	return w.arm(resumeArm{filter: pred, handler: composer.Compose(mws...)})
}

// On registers a resume arm gated on update kind.
func (w *WaitBuilder) On(kind domain.UpdateKind, mws ...composer.Middleware) *WaitBuilder {
	return w.arm(resumeArm{label: string(kind), filter: composer.OnKind(kind), handler: composer.Compose(mws...)})
}

// Command registers a resume arm gated on the named command.
func (w *WaitBuilder) Command(name string, mws ...composer.Middleware) *WaitBuilder {
	return w.arm(resumeArm{label: "/" + name, filter: composer.OnCommand(name), handler: composer.Compose(mws...)})
}

// Callback registers a resume arm gated on callback data.
func (w *WaitBuilder) Callback(data string, mws ...composer.Middleware) *WaitBuilder {
	return w.arm(resumeArm{label: data, filter: composer.OnCallback(data), handler: composer.Compose(mws...)})
}

// Done returns the scope builder, positioned after the wait entry.
func (w *WaitBuilder) Done() *Builder {
	return w.parent
}
