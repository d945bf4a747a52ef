// Package tools exposes the static tool descriptors that blocks execute.
// Descriptors are declarative: they name the operation, the parameters a
// block must supply, and where in the response payload each output lives.
package tools

import (
	"sort"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/loomworks/loom/internal/block"
)

// ParamDef describes a single tool parameter.
type ParamDef struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Secret      bool   `json:"secret,omitempty"`
	Description string `json:"description,omitempty"`
}

// Descriptor describes a tool a block can invoke.
type Descriptor struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	BlockKind   block.Kind `json:"block_kind"`
	Method      string     `json:"method"`
	Params      []ParamDef `json:"params"`

	// Outputs maps output names to gjson paths into the raw response body.
	Outputs map[string]string `json:"outputs,omitempty"`
}

// ExtractOutputs pulls the declared outputs from a raw JSON response body.
// Paths that do not resolve are omitted.
func (d *Descriptor) ExtractOutputs(body []byte) map[string]string {
	if len(d.Outputs) == 0 {
		return nil
	}
	out := make(map[string]string, len(d.Outputs))
	for name, path := range d.Outputs {
		if v := gjson.GetBytes(body, path); v.Exists() {
			out[name] = v.String()
		}
	}
	return out
}

// Registry aggregates tool descriptors for discovery by the block system.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Descriptor
}

// NewRegistry creates a registry seeded with the built-in tools.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]*Descriptor)}
	for _, d := range SnowflakeTools() {
		r.tools[d.ID] = d
	}
	return r
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[d.ID] = d
}

// Get returns the descriptor with the given ID, or nil.
func (r *Registry) Get(id string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[id]
}

// List returns all descriptors sorted by ID.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ForBlock returns the descriptors usable by the given block kind.
func (r *Registry) ForBlock(kind block.Kind) []*Descriptor {
	var out []*Descriptor
	for _, d := range r.List() {
		if d.BlockKind == kind {
			out = append(out, d)
		}
	}
	return out
}
