package block

import "testing"

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, kind := range []Kind{KindStarter, KindAgent, KindRouter, KindEvaluator, KindSnowflake} {
		if r.Get(kind) == nil {
			t.Errorf("builtin kind %s not registered", kind)
		}
	}
	if r.Get(Kind("bogus")) != nil {
		t.Error("unregistered kind should return nil")
	}
}

func TestCredentialScope(t *testing.T) {
	tests := []struct {
		kind Kind
		want CredentialScope
	}{
		{KindAgent, ScopeProvider},
		{KindRouter, ScopeProvider},
		{KindEvaluator, ScopeProvider},
		{KindSnowflake, ScopeKind},
		{KindAPI, ScopeKind},
		{KindSlack, ScopeKind},
	}
	for _, tt := range tests {
		if got := tt.kind.CredentialScope(); got != tt.want {
			t.Errorf("%s: CredentialScope() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestSearchQueryIgnoresCategory(t *testing.T) {
	r := NewRegistry()

	// "snow" matches the Snowflake block by name even when the active
	// category would exclude it.
	results := r.Search("snow", CategoryCore)
	if len(results) != 1 || results[0].Kind != KindSnowflake {
		t.Fatalf("Search(snow, core) = %v, want only snowflake", kinds(results))
	}

	// Description matches count too.
	results = r.Search("warehouse", CategoryTrigger)
	if len(results) != 1 || results[0].Kind != KindSnowflake {
		t.Fatalf("Search(warehouse, trigger) = %v, want only snowflake", kinds(results))
	}
}

func TestSearchEmptyQueryFiltersByCategory(t *testing.T) {
	r := NewRegistry()

	results := r.Search("", CategoryTrigger)
	if len(results) != 2 {
		t.Fatalf("Search(\"\", trigger) returned %d results, want 2", len(results))
	}
	for _, d := range results {
		if d.Category != CategoryTrigger {
			t.Errorf("result %s has category %s, want %s", d.Kind, d.Category, CategoryTrigger)
		}
	}

	// Empty query and category returns everything.
	if got, want := len(r.Search("", "")), len(r.List()); got != want {
		t.Errorf("Search(\"\", \"\") returned %d results, want %d", got, want)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if len(r.Search("SNOWFLAKE", "")) != 1 {
		t.Error("search should be case-insensitive")
	}
}

func TestSearchNoResults(t *testing.T) {
	r := NewRegistry()
	if got := r.Search("no-such-block", ""); len(got) != 0 {
		t.Errorf("expected empty result list, got %v", kinds(got))
	}
}

func TestDefinitionField(t *testing.T) {
	r := NewRegistry()
	agent := r.Get(KindAgent)

	f := agent.Field("apiKey")
	if f == nil {
		t.Fatal("agent should have an apiKey field")
	}
	if !f.Secret {
		t.Error("apiKey field should be secret")
	}
	if agent.Field("nope") != nil {
		t.Error("unknown field should return nil")
	}
}

func kinds(defs []*Definition) []Kind {
	out := make([]Kind, len(defs))
	for i, d := range defs {
		out[i] = d.Kind
	}
	return out
}
