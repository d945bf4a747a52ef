// Package block defines block types for the workflow canvas: what kinds of
// blocks exist, which sub-block fields each kind exposes, and how credential
// fields are scoped.
package block

// Kind is the closed set of block kinds.
type Kind string

const (
	KindStarter   Kind = "starter"
	KindAgent     Kind = "agent"
	KindRouter    Kind = "router"
	KindEvaluator Kind = "evaluator"
	KindAPI       Kind = "api"
	KindCondition Kind = "condition"
	KindFunction  Kind = "function"
	KindSnowflake Kind = "snowflake"
	KindSlack     Kind = "slack"
	KindWebhook   Kind = "webhook"
	KindSchedule  Kind = "schedule"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is a registered kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindStarter, KindAgent, KindRouter, KindEvaluator, KindAPI,
		KindCondition, KindFunction, KindSnowflake, KindSlack,
		KindWebhook, KindSchedule:
		return true
	default:
		return false
	}
}

// CredentialScope identifies how API-key values for a block kind are keyed
// in the credential store.
type CredentialScope string

const (
	// ScopeProvider keys credentials by the LLM provider resolved from the
	// block's selected model. Switching models can switch the stored key.
	ScopeProvider CredentialScope = "provider"
	// ScopeKind keys credentials by the block kind itself.
	ScopeKind CredentialScope = "kind"
)

// CredentialScope returns the credential scope for the kind. Blocks that
// route requests to an LLM provider (agent, router, evaluator) share keys
// per provider; everything else shares keys per kind.
func (k Kind) CredentialScope() CredentialScope {
	switch k {
	case KindAgent, KindRouter, KindEvaluator:
		return ScopeProvider
	default:
		return ScopeKind
	}
}

// FieldType describes how a sub-block field is rendered and validated.
type FieldType string

const (
	FieldShortText FieldType = "short-text"
	FieldLongText  FieldType = "long-text"
	FieldCode      FieldType = "code"
	FieldDropdown  FieldType = "dropdown"
	FieldToggle    FieldType = "toggle"
	FieldSlider    FieldType = "slider"
	FieldTable     FieldType = "table"
)

// FieldDef describes a single configurable sub-block field within a block.
type FieldDef struct {
	ID          string    `json:"id" yaml:"id"`
	Label       string    `json:"label" yaml:"label"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Secret      bool      `json:"secret,omitempty" yaml:"secret,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Definition describes a block type available in the toolbar.
type Definition struct {
	Kind        Kind       `json:"kind" yaml:"kind"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Category    string     `json:"category" yaml:"category"`
	Icon        string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	SubBlocks   []FieldDef `json:"sub_blocks" yaml:"sub_blocks"`
}

// Field returns the field definition with the given ID, or nil.
func (d *Definition) Field(id string) *FieldDef {
	for i := range d.SubBlocks {
		if d.SubBlocks[i].ID == id {
			return &d.SubBlocks[i]
		}
	}
	return nil
}
