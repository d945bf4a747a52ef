// Package db provides database persistence for loom.
//
// The project database (.loom/loom.db) stores the workflow graphs, the
// transient sub-block values, and the credential parameters so the canvas
// survives server restarts. SQLite is the default; PostgreSQL is available
// for shared deployments.
package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/loomworks/loom/internal/block"
	"github.com/loomworks/loom/internal/db/driver"
	"github.com/loomworks/loom/internal/store"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DB wraps a database connection with driver abstraction.
type DB struct {
	drv driver.Driver
}

// Open opens a SQLite database at the given path, creating the parent
// directory if needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return OpenWithDialect(path, driver.DialectSQLite)
}

// OpenInMemory opens an in-memory SQLite database. Each call creates a new
// isolated database; ideal for testing.
func OpenInMemory() (*DB, error) {
	return OpenWithDialect(":memory:", driver.DialectSQLite)
}

// OpenWithDialect opens a database with an explicit dialect and DSN.
func OpenWithDialect(dsn string, dialect driver.Dialect) (*DB, error) {
	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}
	if err := drv.Open(dsn); err != nil {
		return nil, err
	}

	sub, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		return nil, fmt.Errorf("schema fs: %w", err)
	}
	if err := drv.Migrate(context.Background(), sub); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DB{drv: drv}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.drv.Close()
}

// SaveWorkflow upserts a workflow and replaces its blocks.
func (d *DB) SaveWorkflow(ctx context.Context, wf *store.Workflow) error {
	tx, err := d.drv.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, d.drv.Rebind(`
		INSERT INTO workflows (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at`),
		wf.ID, wf.Name, wf.Description, wf.CreatedAt, wf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", wf.ID, err)
	}

	if _, err := tx.ExecContext(ctx, d.drv.Rebind(
		"DELETE FROM blocks WHERE workflow_id = ?"), wf.ID); err != nil {
		return fmt.Errorf("clear blocks for %s: %w", wf.ID, err)
	}

	for _, blk := range wf.Blocks {
		subBlocksJSON, err := marshalSubBlocks(blk.SubBlocks)
		if err != nil {
			return fmt.Errorf("marshal sub-blocks for block %s: %w", blk.ID, err)
		}
		enabled := 0
		if blk.Enabled {
			enabled = 1
		}
		_, err = tx.ExecContext(ctx, d.drv.Rebind(`
			INSERT INTO blocks (id, workflow_id, type, name, position_x, position_y, enabled, sub_blocks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			blk.ID, wf.ID, blk.Type.String(), blk.Name,
			blk.Position.X, blk.Position.Y, enabled, subBlocksJSON)
		if err != nil {
			return fmt.Errorf("save block %s: %w", blk.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteWorkflow removes a workflow and its blocks.
func (d *DB) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := d.drv.Exec(ctx, "DELETE FROM blocks WHERE workflow_id = ?", id); err != nil {
		return fmt.Errorf("delete blocks for %s: %w", id, err)
	}
	if _, err := d.drv.Exec(ctx, "DELETE FROM workflows WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

// LoadWorkflows returns every stored workflow with its blocks.
func (d *DB) LoadWorkflows(ctx context.Context) ([]*store.Workflow, error) {
	rows, err := d.drv.Query(ctx,
		"SELECT id, name, description, created_at, updated_at FROM workflows")
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var workflows []*store.Workflow
	byID := make(map[string]*store.Workflow)
	for rows.Next() {
		wf := &store.Workflow{Blocks: make(map[string]*store.Block)}
		var created, updated time.Time
		if err := rows.Scan(&wf.ID, &wf.Name, &wf.Description, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		wf.CreatedAt = created
		wf.UpdatedAt = updated
		workflows = append(workflows, wf)
		byID[wf.ID] = wf
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}

	blockRows, err := d.drv.Query(ctx,
		"SELECT id, workflow_id, type, name, position_x, position_y, enabled, sub_blocks FROM blocks")
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer func() { _ = blockRows.Close() }()

	for blockRows.Next() {
		var (
			blk           store.Block
			workflowID    string
			blockType     string
			enabled       int
			subBlocksJSON string
		)
		if err := blockRows.Scan(&blk.ID, &workflowID, &blockType, &blk.Name,
			&blk.Position.X, &blk.Position.Y, &enabled, &subBlocksJSON); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blk.Type = block.Kind(blockType)
		blk.Enabled = enabled != 0
		blk.SubBlocks, err = unmarshalSubBlocks(subBlocksJSON)
		if err != nil {
			return nil, fmt.Errorf("parse sub-blocks for block %s: %w", blk.ID, err)
		}

		if wf, ok := byID[workflowID]; ok {
			wf.Blocks[blk.ID] = &blk
		}
	}
	if err := blockRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	return workflows, nil
}

// SaveSubBlockSnapshot replaces the persisted sub-block state.
func (d *DB) SaveSubBlockSnapshot(ctx context.Context, snap store.SubBlockSnapshot) error {
	tx, err := d.drv.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"subblock_values", "tool_params", "cleared_params"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for wfID, blocks := range snap.Values {
		for blockID, fields := range blocks {
			for subBlockID, value := range fields {
				data, err := json.Marshal(value)
				if err != nil {
					return fmt.Errorf("marshal value %s/%s/%s: %w", wfID, blockID, subBlockID, err)
				}
				if _, err := tx.ExecContext(ctx, d.drv.Rebind(`
					INSERT INTO subblock_values (workflow_id, block_id, sub_block_id, value)
					VALUES (?, ?, ?, ?)`),
					wfID, blockID, subBlockID, string(data)); err != nil {
					return fmt.Errorf("save value %s/%s/%s: %w", wfID, blockID, subBlockID, err)
				}
			}
		}
	}

	for scope, params := range snap.ToolParams {
		for param, value := range params {
			if _, err := tx.ExecContext(ctx, d.drv.Rebind(
				"INSERT INTO tool_params (scope, param, value) VALUES (?, ?, ?)"),
				scope, param, value); err != nil {
				return fmt.Errorf("save tool param %s/%s: %w", scope, param, err)
			}
		}
	}

	for _, c := range snap.Cleared {
		if _, err := tx.ExecContext(ctx, d.drv.Rebind(
			"INSERT INTO cleared_params (block_id, param) VALUES (?, ?)"),
			c.BlockID, c.Param); err != nil {
			return fmt.Errorf("save cleared param %s/%s: %w", c.BlockID, c.Param, err)
		}
	}

	return tx.Commit()
}

// LoadSubBlockSnapshot reads the persisted sub-block state.
func (d *DB) LoadSubBlockSnapshot(ctx context.Context) (store.SubBlockSnapshot, error) {
	snap := store.SubBlockSnapshot{
		Values:     make(map[string]map[string]map[string]any),
		ToolParams: make(map[string]map[string]string),
	}

	rows, err := d.drv.Query(ctx,
		"SELECT workflow_id, block_id, sub_block_id, value FROM subblock_values")
	if err != nil {
		return snap, fmt.Errorf("query subblock values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var wfID, blockID, subBlockID, raw string
		if err := rows.Scan(&wfID, &blockID, &subBlockID, &raw); err != nil {
			return snap, fmt.Errorf("scan subblock value: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return snap, fmt.Errorf("parse value %s/%s/%s: %w", wfID, blockID, subBlockID, err)
		}
		if snap.Values[wfID] == nil {
			snap.Values[wfID] = make(map[string]map[string]any)
		}
		if snap.Values[wfID][blockID] == nil {
			snap.Values[wfID][blockID] = make(map[string]any)
		}
		snap.Values[wfID][blockID][subBlockID] = value
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate subblock values: %w", err)
	}

	paramRows, err := d.drv.Query(ctx, "SELECT scope, param, value FROM tool_params")
	if err != nil {
		return snap, fmt.Errorf("query tool params: %w", err)
	}
	defer func() { _ = paramRows.Close() }()

	for paramRows.Next() {
		var scope, param, value string
		if err := paramRows.Scan(&scope, &param, &value); err != nil {
			return snap, fmt.Errorf("scan tool param: %w", err)
		}
		if snap.ToolParams[scope] == nil {
			snap.ToolParams[scope] = make(map[string]string)
		}
		snap.ToolParams[scope][param] = value
	}
	if err := paramRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate tool params: %w", err)
	}

	clearedRows, err := d.drv.Query(ctx, "SELECT block_id, param FROM cleared_params")
	if err != nil {
		return snap, fmt.Errorf("query cleared params: %w", err)
	}
	defer func() { _ = clearedRows.Close() }()

	for clearedRows.Next() {
		var c store.ClearedParam
		if err := clearedRows.Scan(&c.BlockID, &c.Param); err != nil {
			return snap, fmt.Errorf("scan cleared param: %w", err)
		}
		snap.Cleared = append(snap.Cleared, c)
	}
	if err := clearedRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate cleared params: %w", err)
	}

	return snap, nil
}

func marshalSubBlocks(subBlocks map[string]*store.SubBlock) (string, error) {
	if len(subBlocks) == 0 {
		return "{}", nil
	}
	values := make(map[string]any, len(subBlocks))
	for id, sb := range subBlocks {
		if sb != nil {
			values[id] = sb.Value
		}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalSubBlocks(raw string) (map[string]*store.SubBlock, error) {
	out := make(map[string]*store.SubBlock)
	if raw == "" || raw == "{}" {
		return out, nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	for id, v := range values {
		out[id] = &store.SubBlock{Value: v}
	}
	return out, nil
}
