package scene

import (
	"github.com/gabelluardo/grammY/pkg/composer"
)

// EntryKind discriminates what an entry does when selected.
type EntryKind string

const (
	KindStep  EntryKind = "step"  // run a handler chain, then continue
	KindScope EntryKind = "scope" // open a nested scope
	KindWait  EntryKind = "wait"  // suspend until the next update
)

// resumeArm is one gated handler of a wait entry's resume group.
type resumeArm struct {
	label   string
	filter  composer.Filter
	handler composer.Middleware
}

// entry is one registered position in a scope. Immutable once built.
// Its pc equals its index among siblings, assigned at registration.
type entry struct {
	pc      int
	label   string
	kind    EntryKind
	filter  composer.Filter     // nil for unconditional entries
	handler composer.Middleware // KindStep only
	child   int                 // KindScope: arena index of the nested scope, else -1
	resume  []resumeArm         // KindWait: gated resume group, may be empty
}

// scope is an ordered list of sibling entries plus its position in the tree.
type scope struct {
	parent      int // arena index of the enclosing scope, -1 at the root
	parentEntry int // pc of the opening entry inside the parent, -1 at the root
	entries     []entry
}

// Scene is a static tree of scopes assembled once at start-up. Scopes and
// entries live in an index-addressed arena, so the tree holds no cyclic
// references. Replay depends on the tree being rebuilt identically on every
// process start: positions are positional, not named.
type Scene struct {
	id     string
	scopes []scope // index 0 is the root scope
}

// New creates a scene with the given identifier and populates its root
// scope through build.
func New(id string, build func(*Builder)) *Scene {
	s := &Scene{
		id:     id,
		scopes: []scope{{parent: -1, parentEntry: -1}},
	}
	if build != nil {
		build(&Builder{scene: s, scope: 0})
	}
	return s
}

// ID returns the scene identifier.
func (s *Scene) ID() string { return s.id }

// Len returns the number of entries in the root scope.
func (s *Scene) Len() int { return len(s.scopes[0].entries) }

// newScope appends an empty scope to the arena and returns its index.
func (s *Scene) newScope(parent, parentEntry int) int {
	s.scopes = append(s.scopes, scope{parent: parent, parentEntry: parentEntry})
	return len(s.scopes) - 1
}

// EntryInfo describes one entry for introspection and rendering.
type EntryInfo struct {
	// ScopeID is the arena index of the owning scope, 0 for the root.
	ScopeID int
	// PC is the entry's position among its siblings.
	PC int
	// Depth is the nesting depth of the owning scope, 0 for the root.
	Depth int
	// Label is the builder-supplied name, may be empty.
	Label string
	// Kind reports what the entry does when selected.
	Kind EntryKind
	// Filtered reports whether the entry carries a predicate.
	Filtered bool
	// ChildScope is the arena index of the nested scope for KindScope
	// entries, -1 otherwise.
	ChildScope int
	// ResumeArms is the number of gated arms on a KindWait entry.
	ResumeArms int
	// ArmLabels holds the labels of those arms, in registration order.
	// Unlabeled arms contribute an empty string.
	ArmLabels []string
	// ArmFiltered reports, per arm, whether it carries a predicate.
	ArmFiltered []bool
}

// Walk visits every entry depth-first in registration order, descending
// into a nested scope immediately after its opening entry.
func (s *Scene) Walk(fn func(EntryInfo)) {
	s.walkScope(0, 0, fn)
}

func (s *Scene) walkScope(idx, depth int, fn func(EntryInfo)) {
	for _, e := range s.scopes[idx].entries {
		var arms []string
		var gated []bool
		for _, a := range e.resume {
			arms = append(arms, a.label)
			gated = append(gated, a.filter != nil)
		}
		fn(EntryInfo{
			ScopeID:     idx,
			PC:          e.pc,
			Depth:       depth,
			Label:       e.label,
			Kind:        e.kind,
			Filtered:    e.filter != nil,
			ChildScope:  e.child,
			ResumeArms:  len(e.resume),
			ArmLabels:   arms,
			ArmFiltered: gated,
		})
		if e.kind == KindScope {
			s.walkScope(e.child, depth+1, fn)
		}
	}
}
