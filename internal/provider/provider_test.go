package provider

import "testing"

func TestFromModel(t *testing.T) {
	tests := []struct {
		model string
		want  Provider
	}{
		{"gpt-4o", OpenAI},
		{"GPT-4O", OpenAI},
		{"gpt-4o-2024-11-20", OpenAI},
		{"o3-mini", OpenAI},
		{"claude-sonnet-4", Anthropic},
		{"claude-sonnet-4-20250514", Anthropic},
		{"gemini-2.5-pro", Google},
		{"deepseek-chat", DeepSeek},
		{"mistral-large", Mistral},
		{"grok-3", XAI},
		{"llama-3.3-70b-versatile", Groq},
		{"ollama/llama3", Ollama},
		{"ollama:qwen2.5", Ollama},
		{"", ""},
		{"   ", ""},
		{"totally-made-up", ""},
	}

	for _, tt := range tests {
		if got := FromModel(tt.model); got != tt.want {
			t.Errorf("FromModel(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestSupportsCredentialReuse(t *testing.T) {
	if Ollama.SupportsCredentialReuse() {
		t.Error("ollama must not support credential reuse")
	}
	if Provider("").SupportsCredentialReuse() {
		t.Error("unresolved provider must not support credential reuse")
	}
	if !OpenAI.SupportsCredentialReuse() {
		t.Error("openai should support credential reuse")
	}
}

func TestKnown(t *testing.T) {
	if !Known("claude-opus-4") {
		t.Error("claude-opus-4 should be known")
	}
	if Known("mystery-model") {
		t.Error("mystery-model should not be known")
	}
}
