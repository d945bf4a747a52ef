package store

import "testing"

func TestSubBlockValues(t *testing.T) {
	s := NewSubBlockStore(nil)

	// Absent entries yield nil.
	if v := s.Value("wf", "blk", "field"); v != nil {
		t.Errorf("absent value = %v, want nil", v)
	}

	s.SetValue("wf", "blk", "field", "hello")
	if v := s.Value("wf", "blk", "field"); v != "hello" {
		t.Errorf("value = %v, want hello", v)
	}

	// Clearing to empty string is a live empty state, distinct from absence.
	s.SetValue("wf", "blk", "field", "")
	if v := s.Value("wf", "blk", "field"); v != "" {
		t.Errorf("cleared value = %v, want empty string", v)
	}
}

func TestBlockValuesCopy(t *testing.T) {
	s := NewSubBlockStore(nil)
	s.SetValue("wf", "blk", "a", 1)
	s.SetValue("wf", "blk", "b", 2)

	vals := s.BlockValues("wf", "blk")
	if len(vals) != 2 {
		t.Fatalf("BlockValues returned %d entries, want 2", len(vals))
	}
	vals["a"] = 99
	if v := s.Value("wf", "blk", "a"); v != 1 {
		t.Error("mutating the returned map must not affect the store")
	}

	if s.BlockValues("wf", "other") != nil {
		t.Error("BlockValues for an unknown block should be nil")
	}
}

func TestToolParams(t *testing.T) {
	s := NewSubBlockStore(nil)

	s.SetToolParam("openai", "apiKey", "sk-test")
	if v := s.ResolveToolParam("openai", "apiKey", "blk-1"); v != "sk-test" {
		t.Errorf("ResolveToolParam = %q, want sk-test", v)
	}
	if v := s.ResolveToolParam("anthropic", "apiKey", "blk-1"); v != "" {
		t.Errorf("unknown scope should resolve to empty, got %q", v)
	}
}

func TestClearedFlagSuppressesResolve(t *testing.T) {
	s := NewSubBlockStore(nil)
	s.SetToolParam("openai", "apiKey", "sk-test")

	s.MarkParamCleared("blk-1", "apiKey")
	if !s.IsParamCleared("blk-1", "apiKey") {
		t.Fatal("IsParamCleared should be true after mark")
	}
	if v := s.ResolveToolParam("openai", "apiKey", "blk-1"); v != "" {
		t.Errorf("cleared block should resolve to empty, got %q", v)
	}

	// Other blocks are unaffected.
	if v := s.ResolveToolParam("openai", "apiKey", "blk-2"); v != "sk-test" {
		t.Errorf("other block should still resolve, got %q", v)
	}

	s.UnmarkParamCleared("blk-1", "apiKey")
	if v := s.ResolveToolParam("openai", "apiKey", "blk-1"); v != "sk-test" {
		t.Errorf("unmarked block should resolve again, got %q", v)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewSubBlockStore(nil)
	s.SetValue("wf", "blk", "field", "v")
	s.SetToolParam("snowflake", "apiKey", "token")
	s.MarkParamCleared("blk-9", "apiKey")

	snap := s.Snapshot()

	restored := NewSubBlockStore(nil)
	restored.Restore(snap)

	if v := restored.Value("wf", "blk", "field"); v != "v" {
		t.Errorf("restored value = %v, want v", v)
	}
	if v := restored.ResolveToolParam("snowflake", "apiKey", "blk-1"); v != "token" {
		t.Errorf("restored tool param = %q, want token", v)
	}
	if !restored.IsParamCleared("blk-9", "apiKey") {
		t.Error("restored store should keep cleared flags")
	}

	// Snapshot is a deep copy: mutating the source afterwards must not
	// leak into the restored store.
	s.SetValue("wf", "blk", "field", "changed")
	if v := restored.Value("wf", "blk", "field"); v != "v" {
		t.Error("snapshot should be isolated from the source store")
	}
}
