package mesh

import "sync"

// Resource is anything holding GL object handles that die with their
// context.
type Resource interface {
	// Invalidate drops the dead handles without GL calls. The resource
	// recreates them on next use.
	Invalidate()
}

// Registry tracks the live GPU resources of one GL context so that a
// context loss can invalidate exactly those, nothing else.
type Registry struct {
	mu        sync.Mutex
	resources map[Resource]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[Resource]struct{})}
}

// Add starts tracking r. Adding twice is a no-op.
func (g *Registry) Add(r Resource) {
	g.mu.Lock()
	g.resources[r] = struct{}{}
	g.mu.Unlock()
}

// Remove stops tracking r.
func (g *Registry) Remove(r Resource) {
	g.mu.Lock()
	delete(g.resources, r)
	g.mu.Unlock()
}

// Len returns the number of tracked resources.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resources)
}

// InvalidateAll tells every tracked resource its handles are gone.
// Resources stay registered; they re-upload lazily.
func (g *Registry) InvalidateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for r := range g.resources {
		r.Invalidate()
	}
}
