package sourcing

import "fmt"

// Registry is the ordered collection of configured providers.
// Registration order is significant: it fixes the merge order in
// collect-all mode and therefore which provider owns a duplicate URL.
// A registry is built once at startup and read-only afterwards, so it
// is safe to share across concurrent calls.
type Registry struct {
	order []Provider
	byID  map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Provider)}
}

// Register appends a provider. Duplicate ids are rejected — a second
// registration would silently shadow the first in subset selection.
func (r *Registry) Register(p Provider) error {
	id := p.ID()
	if id == "" {
		return fmt.Errorf("sourcing: provider with empty id")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("sourcing: provider %q already registered", id)
	}
	r.byID[id] = p
	r.order = append(r.order, p)
	return nil
}

// Providers returns all providers in registration order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.order))
	copy(out, r.order)
	return out
}

// IDs returns the registered provider ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.order))
	for _, p := range r.order {
		ids = append(ids, p.ID())
	}
	return ids
}

// Get looks a provider up by id.
func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Select returns the active provider set for a call: every registered
// provider when ids is empty, otherwise the named subset. Order is
// always registration order, never the order of ids, and unknown
// names select nothing.
func (r *Registry) Select(ids []string) []Provider {
	if len(ids) == 0 {
		return r.Providers()
	}
	allow := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allow[id] = struct{}{}
	}
	var out []Provider
	for _, p := range r.order {
		if _, ok := allow[p.ID()]; ok {
			out = append(out, p)
		}
	}
	return out
}
