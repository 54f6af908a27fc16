package scene

import (
	"sort"
	"sync"
)

// Registry holds the scenes known to an engine, keyed by identifier.
type Registry struct {
	mu     sync.RWMutex
	scenes map[string]*Scene
}

// NewRegistry creates a new empty registry.
func NewRegistry(scenes ...*Scene) *Registry {
	r := &Registry{scenes: make(map[string]*Scene)}
	for _, s := range scenes {
		r.Register(s)
	}
	return r
}

// Register adds a scene to the registry. A scene with the same identifier
// is overwritten; resumable traces recorded against the old tree only stay
// valid when the new tree has the same shape.
func (r *Registry) Register(s *Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes[s.ID()] = s
}

// Get looks up a scene by identifier.
func (r *Registry) Get(id string) (*Scene, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenes[id]
	return s, ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.scenes))
	for id := range r.scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
