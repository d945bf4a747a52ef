package block

import (
	"sort"
	"strings"
	"sync"
)

// Registry holds the block definitions available to the toolbar.
type Registry struct {
	mu   sync.RWMutex
	defs map[Kind]*Definition
}

// NewRegistry creates a registry seeded with the built-in block definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[Kind]*Definition)}
	for _, d := range builtins() {
		r.defs[d.Kind] = d
	}
	return r
}

// Register adds or replaces a block definition.
func (r *Registry) Register(d *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[d.Kind] = d
}

// Get returns the definition for a kind, or nil if unregistered.
func (r *Registry) Get(kind Kind) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[kind]
}

// List returns all definitions sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Categories returns the distinct categories in sorted order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, d := range r.defs {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Search filters definitions for the toolbar. A non-empty query matches
// case-insensitively against name and description across all categories,
// ignoring the category filter. An empty query returns the definitions in
// the given category, or everything when the category is also empty.
func (r *Registry) Search(query, category string) []*Definition {
	all := r.List()

	q := strings.ToLower(strings.TrimSpace(query))
	if q != "" {
		var out []*Definition
		for _, d := range all {
			if strings.Contains(strings.ToLower(d.Name), q) ||
				strings.Contains(strings.ToLower(d.Description), q) {
				out = append(out, d)
			}
		}
		return out
	}

	if category == "" {
		return all
	}
	var out []*Definition
	for _, d := range all {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
