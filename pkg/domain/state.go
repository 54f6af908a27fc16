package domain

// PCUnset marks a frame whose scope has been entered but where no entry has
// been selected yet. Live execution of that scope starts at its first entry.
const PCUnset = -1

// Frame records which entry was last selected at one nesting depth.
type Frame struct {
	// PC is the 0-based position of the selected entry among its siblings,
	// or PCUnset when the scope is open but no entry has run yet.
	PC int `json:"pc"`
}

// Stack is the ordered list of frames for one suspended scene, index 0 being
// the root scope and the last element the innermost open scope. Its length
// always equals the nesting depth of the suspension point.
type Stack []Frame

// Clone returns an independent copy of the stack.
func (s Stack) Clone() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// Top returns the innermost frame. ok is false when the stack is empty.
func (s Stack) Top() (Frame, bool) {
	if len(s) == 0 {
		return Frame{}, false
	}
	return s[len(s)-1], true
}

// SceneState is the persisted trace of one suspended scene. It is the only
// record the engine needs to resume: the scene identifier selects the tree,
// the stack selects the position inside it.
type SceneState struct {
	// Scene names the scene the stack belongs to.
	Scene string `json:"scene"`

	// Stack holds one frame per open scope, outermost first. Non-empty for
	// the whole lifetime of an active scene.
	Stack Stack `json:"stack"`
}

// Clone returns an independent copy of the scene state.
func (st *SceneState) Clone() *SceneState {
	if st == nil {
		return nil
	}
	return &SceneState{Scene: st.Scene, Stack: st.Stack.Clone()}
}

// Session is the per-key record threaded through the state store. The engine
// never holds the authoritative copy; it mutates the store's copy in place
// for the duration of one invocation.
type Session struct {
	// Data holds arbitrary user state. Handlers read and write it freely;
	// it round-trips through the store as-is.
	Data map[string]any `json:"data,omitempty"`

	// Scenes holds the active scene trace, nil when no scene is active.
	Scenes *SceneState `json:"scenes,omitempty"`
}

// NewSession creates an empty session with no active scene.
func NewSession() *Session {
	return &Session{Data: make(map[string]any)}
}

// Clone returns a deep copy of the session. Nested maps in Data are cloned
// recursively; other values are shared.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	return &Session{
		Data:   cloneMap(s.Data),
		Scenes: s.Scenes.Clone(),
	}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m, ok := v.(map[string]any); ok {
			out[k] = cloneMap(m)
			continue
		}
		out[k] = v
	}
	return out
}
