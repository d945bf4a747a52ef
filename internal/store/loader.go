package store

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/internal/block"
)

// workflowFile is the on-disk YAML shape of a workflow definition.
type workflowFile struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Blocks      []blockFile `yaml:"blocks"`
}

type blockFile struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Name     string         `yaml:"name"`
	Position Position       `yaml:"position"`
	Disabled bool           `yaml:"disabled"`
	Values   map[string]any `yaml:"values"`
}

// ImportResult reports what an import pass found.
type ImportResult struct {
	Imported int
	Errors   []string
}

// ImportDir loads workflow YAML definitions from a directory tree into the
// store. Files are matched with a doublestar pattern so definitions can be
// organized into subdirectories. A missing directory is not an error.
func (s *WorkflowStore) ImportDir(dir string, registry *block.Registry) (*ImportResult, error) {
	result := &ImportResult{}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return result, nil
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, "**/*.{yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("glob workflow files: %w", err)
	}

	// Files parse independently so this runs concurrently. Parse failures
	// are collected per file, not returned as errors.
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(8)
	for _, match := range matches {
		g.Go(func() error {
			wf, err := parseWorkflowFile(fsys, match, registry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", match, err))
				return nil
			}
			s.Restore(wf)
			result.Imported++
			return nil
		})
	}
	_ = g.Wait()

	if len(result.Errors) > 0 {
		slog.Warn("workflow import completed with errors",
			"imported", result.Imported,
			"errors", result.Errors)
	} else if result.Imported > 0 {
		slog.Debug("workflow import completed", "imported", result.Imported)
	}

	return result, nil
}

// parseWorkflowFile reads and validates one workflow definition.
func parseWorkflowFile(fsys fs.FS, path string, registry *block.Registry) (*Workflow, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var wff workflowFile
	if err := yaml.Unmarshal(data, &wff); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if wff.Name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}
	if wff.ID == "" {
		wff.ID = uuid.NewString()
	}

	now := time.Now()
	wf := &Workflow{
		ID:          wff.ID,
		Name:        wff.Name,
		Description: wff.Description,
		Blocks:      make(map[string]*Block, len(wff.Blocks)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, bf := range wff.Blocks {
		kind := block.Kind(bf.Type)
		if registry != nil && registry.Get(kind) == nil {
			return nil, fmt.Errorf("block %s: unknown type %q", bf.ID, bf.Type)
		}
		if bf.ID == "" {
			bf.ID = uuid.NewString()
		}

		blk := &Block{
			ID:        bf.ID,
			Type:      kind,
			Name:      bf.Name,
			Position:  bf.Position,
			Enabled:   !bf.Disabled,
			SubBlocks: make(map[string]*SubBlock, len(bf.Values)),
		}
		for field, value := range bf.Values {
			blk.SubBlocks[field] = &SubBlock{Value: value}
		}
		wf.Blocks[blk.ID] = blk
	}

	return wf, nil
}
