package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loomworks/loom/internal/block"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "demo.yaml"), `
id: wf-demo
name: Demo
description: imported from file
blocks:
  - id: b1
    type: agent
    name: Agent
    position: {x: 10, y: 20}
    values:
      model: gpt-4o
`)
	// Nested directories are picked up too.
	writeFile(t, filepath.Join(dir, "team", "etl.yml"), `
name: ETL
blocks:
  - type: snowflake
    name: Load
`)

	s := NewWorkflowStore(nil)
	result, err := s.ImportDir(dir, block.NewRegistry())
	if err != nil {
		t.Fatalf("ImportDir failed: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("Imported = %d, want 2 (errors: %v)", result.Imported, result.Errors)
	}

	wf, err := s.Get("wf-demo")
	if err != nil {
		t.Fatalf("imported workflow missing: %v", err)
	}
	blk := wf.Blocks["b1"]
	if blk == nil {
		t.Fatal("block b1 missing")
	}
	if blk.Type != block.KindAgent {
		t.Errorf("block type = %q, want agent", blk.Type)
	}
	if blk.Position.X != 10 || blk.Position.Y != 20 {
		t.Errorf("position = %+v, want {10 20}", blk.Position)
	}
	if !blk.Enabled {
		t.Error("blocks default to enabled")
	}
	if v := blk.SubBlocks["model"].Value; v != "gpt-4o" {
		t.Errorf("model value = %v, want gpt-4o", v)
	}
}

func TestImportDirRejectsUnknownBlockType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
name: Bad
blocks:
  - type: not-a-block
`)
	writeFile(t, filepath.Join(dir, "nameless.yaml"), `
description: no name
`)

	s := NewWorkflowStore(nil)
	result, err := s.ImportDir(dir, block.NewRegistry())
	if err != nil {
		t.Fatalf("ImportDir failed: %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("Imported = %d, want 0", result.Imported)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want 2 entries", result.Errors)
	}
}

func TestImportDirMissingDirectory(t *testing.T) {
	s := NewWorkflowStore(nil)
	result, err := s.ImportDir(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err != nil {
		t.Fatalf("missing directory should not error: %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("Imported = %d, want 0", result.Imported)
	}
}
