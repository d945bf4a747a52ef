// Package reconcile mediates between the workflow store and the sub-block
// store for a single canvas field. Each binding keeps a local cached value
// so repeated reads of a deep-equal value return the same reference, and
// API-key fields route through the credential storage rules: keys are
// shared per provider (for provider-routed blocks) or per block kind, a
// user-cleared field stays cleared until a new value is entered, and
// switching models swaps or clears the key.
package reconcile

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/loomworks/loom/internal/block"
	"github.com/loomworks/loom/internal/provider"
	"github.com/loomworks/loom/internal/store"
)

// apiKeyParam is the credential parameter name shared by every API-key
// field regardless of its sub-block ID.
const apiKeyParam = "apiKey"

// modelField is the sub-block ID holding the selected model on
// provider-routed blocks.
const modelField = "model"

// Reconciler creates and tracks field bindings for one server instance.
type Reconciler struct {
	workflows *store.WorkflowStore
	subblocks *store.SubBlockStore

	mu       sync.RWMutex
	autoFill bool
	bindings map[bindingKey]*Binding
}

type bindingKey struct {
	workflowID string
	blockID    string
	subBlockID string
}

// New creates a reconciler. autoFill enables credential auto-fill from
// previously stored values.
func New(workflows *store.WorkflowStore, subblocks *store.SubBlockStore, autoFill bool) *Reconciler {
	return &Reconciler{
		workflows: workflows,
		subblocks: subblocks,
		autoFill:  autoFill,
		bindings:  make(map[bindingKey]*Binding),
	}
}

// AutoFill reports whether credential auto-fill is enabled.
func (r *Reconciler) AutoFill() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.autoFill
}

// SetAutoFill toggles credential auto-fill at runtime.
func (r *Reconciler) SetAutoFill(enabled bool) {
	r.mu.Lock()
	r.autoFill = enabled
	r.mu.Unlock()
}

// Bind returns the binding for a field, creating it on first use. Creation
// runs the attach-time auto-fill rules for API-key fields.
func (r *Reconciler) Bind(workflowID, blockID, subBlockID string) *Binding {
	key := bindingKey{workflowID: workflowID, blockID: blockID, subBlockID: subBlockID}

	r.mu.Lock()
	b, ok := r.bindings[key]
	if !ok {
		b = &Binding{
			r:          r,
			workflowID: workflowID,
			blockID:    blockID,
			subBlockID: subBlockID,
		}
		r.bindings[key] = b
	}
	r.mu.Unlock()

	if !ok {
		b.attach()
	}
	return b
}

// Binding reconciles one (workflow, block, sub-block) field.
type Binding struct {
	r          *Reconciler
	workflowID string
	blockID    string
	subBlockID string

	mu           sync.Mutex
	cached       any
	hasCached    bool
	lastProvider provider.Provider
}

// attach seeds the provider observation and applies the auto-fill rules.
func (b *Binding) attach() {
	b.mu.Lock()
	b.lastProvider = provider.FromModel(b.currentModel())
	b.mu.Unlock()

	if !b.isAPIKeyField() || !b.r.AutoFill() {
		return
	}
	if !isBlank(b.resolvedValue()) {
		return
	}

	scope := b.credentialScope()
	if scope == "" {
		return
	}
	// ResolveToolParam returns "" for a user-cleared pair, which keeps the
	// cleared invariant without a separate check here.
	stored := b.r.subblocks.ResolveToolParam(scope, apiKeyParam, b.blockID)
	if stored == "" {
		return
	}
	b.writeDirect(stored)
}

// Value returns the current field value: the sub-block store value, falling
// back to the value saved in the workflow graph. When the resolved value is
// deep-equal to the locally cached one, the cached reference is returned so
// object-valued fields do not churn on every read.
func (b *Binding) Value() any {
	v := b.resolvedValue()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasCached && reflect.DeepEqual(b.cached, v) {
		return b.cached
	}
	b.cached = v
	b.hasCached = true
	return v
}

// Set writes a new field value. Object values are deep-cloned to break
// aliasing with caller-held references. API-key fields route through the
// credential storage rules before the store write. When triggerUpdate is
// set, workflow subscribers are notified.
func (b *Binding) Set(value any, triggerUpdate bool) {
	value = deepClone(value)

	if b.isAPIKeyField() {
		b.applyCredentialRules(value)
	}

	b.mu.Lock()
	b.cached = value
	b.hasCached = true
	b.mu.Unlock()

	b.r.subblocks.SetValue(b.workflowID, b.blockID, b.subBlockID, value)

	if triggerUpdate {
		b.r.workflows.TriggerUpdate(b.workflowID)
	}
}

// applyCredentialRules implements the explicit-set credential behavior:
// clearing a previously non-empty key marks the pair user-cleared and
// stores nothing; entering a non-empty key unmarks the pair and stores the
// value under the resolved scope.
// The previous value resolves through the same workflow-initial fallback as
// Value(), so clearing a key that only lives in the imported graph still
// marks the pair.
func (b *Binding) applyCredentialRules(value any) {
	prev := asString(b.resolvedValue())
	next := asString(value)

	if prev != "" && strings.TrimSpace(next) == "" {
		b.r.subblocks.MarkParamCleared(b.blockID, apiKeyParam)
		return
	}

	if strings.TrimSpace(next) == "" {
		return
	}

	b.r.subblocks.UnmarkParamCleared(b.blockID, apiKeyParam)
	if scope := b.credentialScope(); scope != "" {
		b.r.subblocks.SetToolParam(scope, apiKeyParam, next)
	}
}

// ModelChanged reacts to the block's model selection changing. Only
// provider-routed blocks respond. When the resolved provider differs from
// the previously observed one, the field is either auto-filled with the
// stored key for the new provider or force-cleared. The clear happens for
// every other case (no provider, ollama, no stored key, auto-fill off) and
// is independent of the user-cleared flag.
func (b *Binding) ModelChanged(model string) {
	kind := b.r.workflows.BlockType(b.workflowID, b.blockID)
	if kind.CredentialScope() != block.ScopeProvider || !b.isAPIKeyField() {
		return
	}

	p := provider.FromModel(model)

	b.mu.Lock()
	if p == b.lastProvider {
		b.mu.Unlock()
		return
	}
	b.lastProvider = p
	b.mu.Unlock()

	if p.SupportsCredentialReuse() && b.r.AutoFill() {
		if stored := b.r.subblocks.ResolveToolParam(p.String(), apiKeyParam, b.blockID); stored != "" {
			b.writeDirect(stored)
			return
		}
	}
	b.writeDirect("")
}

// writeDirect writes a value to the cache and store without running the
// credential rules. Used by auto-fill and force-clear, which must not flip
// the user-cleared flag.
func (b *Binding) writeDirect(value any) {
	b.mu.Lock()
	b.cached = value
	b.hasCached = true
	b.mu.Unlock()
	b.r.subblocks.SetValue(b.workflowID, b.blockID, b.subBlockID, value)
}

// storeValue reads the raw sub-block store value.
func (b *Binding) storeValue() any {
	return b.r.subblocks.Value(b.workflowID, b.blockID, b.subBlockID)
}

// resolvedValue reads the field value with the workflow-initial fallback:
// the sub-block store value when present, else the value saved in the
// workflow graph.
func (b *Binding) resolvedValue() any {
	v := b.storeValue()
	if v == nil {
		v = b.r.workflows.InitialValue(b.workflowID, b.blockID, b.subBlockID)
	}
	return v
}

// currentModel reads the block's selected model field, falling back to the
// value saved in the workflow graph.
func (b *Binding) currentModel() string {
	v := b.r.subblocks.Value(b.workflowID, b.blockID, modelField)
	if v == nil {
		v = b.r.workflows.InitialValue(b.workflowID, b.blockID, modelField)
	}
	return asString(v)
}

// isAPIKeyField reports whether this binding's field holds an API key.
func (b *Binding) isAPIKeyField() bool {
	return b.subBlockID == apiKeyParam ||
		strings.Contains(strings.ToLower(b.subBlockID), "apikey")
}

// credentialScope resolves the credential storage scope for this binding's
// block: the provider name for provider-routed kinds (empty when the
// provider is unresolvable or excluded from reuse), the block kind
// otherwise. An unknown block yields no scope.
func (b *Binding) credentialScope() string {
	kind := b.r.workflows.BlockType(b.workflowID, b.blockID)
	if kind == "" {
		return ""
	}
	if kind.CredentialScope() == block.ScopeProvider {
		p := provider.FromModel(b.currentModel())
		if !p.SupportsCredentialReuse() {
			return ""
		}
		return p.String()
	}
	return kind.String()
}

// isBlank reports whether a field value is empty or whitespace.
func isBlank(v any) bool {
	return strings.TrimSpace(asString(v)) == ""
}

// asString coerces a field value to a string; non-strings and nil yield "".
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// deepClone copies maps and slices through a JSON round-trip so the stored
// value does not alias caller-held references. Scalars pass through.
func deepClone(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
