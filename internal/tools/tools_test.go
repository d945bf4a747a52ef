package tools

import (
	"testing"

	"github.com/loomworks/loom/internal/block"
)

func TestRegistrySeedsSnowflakeTools(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{
		"snowflake_query", "snowflake_execute", "snowflake_insert",
		"snowflake_update", "snowflake_delete",
	} {
		if r.Get(id) == nil {
			t.Errorf("tool %s not registered", id)
		}
	}
	if r.Get("missing") != nil {
		t.Error("unknown tool should return nil")
	}
}

func TestForBlock(t *testing.T) {
	r := NewRegistry()

	snow := r.ForBlock(block.KindSnowflake)
	if len(snow) != 5 {
		t.Errorf("ForBlock(snowflake) returned %d tools, want 5", len(snow))
	}
	if got := r.ForBlock(block.KindSlack); len(got) != 0 {
		t.Errorf("ForBlock(slack) returned %d tools, want 0", len(got))
	}
}

func TestExtractOutputs(t *testing.T) {
	r := NewRegistry()
	q := r.Get("snowflake_query")

	body := []byte(`{
		"statementHandle": "01b2-0000",
		"resultSetMetaData": {"numRows": 2},
		"data": [["a", "1"], ["b", "2"]]
	}`)

	out := q.ExtractOutputs(body)
	if out["handle"] != "01b2-0000" {
		t.Errorf("handle = %q, want 01b2-0000", out["handle"])
	}
	if out["row_count"] != "2" {
		t.Errorf("row_count = %q, want 2", out["row_count"])
	}
	if _, ok := out["rows"]; !ok {
		t.Error("rows output missing")
	}
}

func TestExtractOutputsMissingPaths(t *testing.T) {
	d := &Descriptor{Outputs: map[string]string{"x": "deeply.nested.path"}}
	out := d.ExtractOutputs([]byte(`{}`))
	if len(out) != 0 {
		t.Errorf("unresolvable paths should be omitted, got %v", out)
	}
}

func TestToolParamsIncludeSecretKey(t *testing.T) {
	r := NewRegistry()
	for _, d := range r.ForBlock(block.KindSnowflake) {
		found := false
		for _, p := range d.Params {
			if p.Name == "apiKey" && p.Secret && p.Required {
				found = true
			}
		}
		if !found {
			t.Errorf("tool %s missing required secret apiKey param", d.ID)
		}
	}
}
