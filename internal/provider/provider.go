// Package provider resolves LLM model identifiers to their upstream vendor.
package provider

import "strings"

// Provider identifies an upstream LLM vendor.
type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Google    Provider = "google"
	DeepSeek  Provider = "deepseek"
	Mistral   Provider = "mistral"
	XAI       Provider = "xai"
	Groq      Provider = "groq"
	Cerebras  Provider = "cerebras"
	Ollama    Provider = "ollama"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// SupportsCredentialReuse reports whether stored API keys for this provider
// may be auto-filled into new blocks. Ollama runs locally and never carries
// a reusable credential.
func (p Provider) SupportsCredentialReuse() bool {
	return p != "" && p != Ollama
}

// models maps known model identifiers to their provider.
var models = map[string]Provider{
	// OpenAI
	"gpt-4o":      OpenAI,
	"gpt-4o-mini": OpenAI,
	"gpt-4.1":     OpenAI,
	"gpt-5":       OpenAI,
	"o1":          OpenAI,
	"o3":          OpenAI,
	"o4-mini":     OpenAI,

	// Anthropic
	"claude-3-5-sonnet": Anthropic,
	"claude-3-7-sonnet": Anthropic,
	"claude-sonnet-4":   Anthropic,
	"claude-opus-4":     Anthropic,
	"claude-haiku-3-5":  Anthropic,

	// Google
	"gemini-1.5-pro":   Google,
	"gemini-2.0-flash": Google,
	"gemini-2.5-pro":   Google,

	// DeepSeek
	"deepseek-chat":     DeepSeek,
	"deepseek-reasoner": DeepSeek,

	// Mistral
	"mistral-large":  Mistral,
	"mistral-small":  Mistral,
	"codestral":      Mistral,
	"ministral-8b":   Mistral,

	// xAI
	"grok-2": XAI,
	"grok-3": XAI,

	// Groq
	"llama-3.3-70b-versatile": Groq,
	"llama-3.1-8b-instant":    Groq,

	// Cerebras
	"cerebras-llama-3.3-70b": Cerebras,
}

// prefixes resolves versioned or tagged model IDs that are not in the exact
// table, e.g. "gpt-4o-2024-11-20" or "claude-sonnet-4-20250514".
var prefixes = []struct {
	prefix   string
	provider Provider
}{
	{"gpt-", OpenAI},
	{"o1-", OpenAI},
	{"o3-", OpenAI},
	{"o4-", OpenAI},
	{"claude-", Anthropic},
	{"gemini-", Google},
	{"deepseek-", DeepSeek},
	{"mistral-", Mistral},
	{"codestral-", Mistral},
	{"grok-", XAI},
	{"cerebras-", Cerebras},
	{"ollama/", Ollama},
	{"ollama:", Ollama},
}

// FromModel resolves a model identifier to its provider.
// Returns the empty provider when the model is unknown or blank.
func FromModel(model string) Provider {
	m := strings.ToLower(strings.TrimSpace(model))
	if m == "" {
		return ""
	}
	if p, ok := models[m]; ok {
		return p
	}
	for _, pp := range prefixes {
		if strings.HasPrefix(m, pp.prefix) {
			return pp.provider
		}
	}
	return ""
}

// Known returns true when the model resolves to a provider.
func Known(model string) bool {
	return FromModel(model) != ""
}
