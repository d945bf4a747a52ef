package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/internal/block"
	"github.com/loomworks/loom/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func testWorkflow() *store.Workflow {
	now := time.Now().UTC().Truncate(time.Second)
	return &store.Workflow{
		ID:          "wf-1",
		Name:        "Lead Router",
		Description: "Routes inbound leads",
		CreatedAt:   now,
		UpdatedAt:   now,
		Blocks: map[string]*store.Block{
			"agent-1": {
				ID:       "agent-1",
				Type:     block.KindAgent,
				Name:     "Classifier",
				Position: store.Position{X: 120, Y: 80},
				Enabled:  true,
				SubBlocks: map[string]*store.SubBlock{
					"model":  {Value: "gpt-4o"},
					"apiKey": {Value: "sk-test"},
				},
			},
			"snow-1": {
				ID:       "snow-1",
				Type:     block.KindSnowflake,
				Name:     "Store Lead",
				Position: store.Position{X: 360, Y: 80},
				Enabled:  false,
			},
		},
	}
}

func TestSaveAndLoadWorkflow(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	wf := testWorkflow()
	require.NoError(t, d.SaveWorkflow(ctx, wf))

	loaded, err := d.LoadWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, wf.ID, got.ID)
	assert.Equal(t, wf.Name, got.Name)
	assert.Equal(t, wf.Description, got.Description)
	require.Len(t, got.Blocks, 2)

	agent := got.Blocks["agent-1"]
	require.NotNil(t, agent)
	assert.Equal(t, block.KindAgent, agent.Type)
	assert.Equal(t, "Classifier", agent.Name)
	assert.Equal(t, 120.0, agent.Position.X)
	assert.True(t, agent.Enabled)
	require.NotNil(t, agent.SubBlocks["apiKey"])
	assert.Equal(t, "sk-test", agent.SubBlocks["apiKey"].Value)

	snow := got.Blocks["snow-1"]
	require.NotNil(t, snow)
	assert.False(t, snow.Enabled)
	assert.Empty(t, snow.SubBlocks)
}

func TestSaveWorkflowUpsert(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	wf := testWorkflow()
	require.NoError(t, d.SaveWorkflow(ctx, wf))

	wf.Name = "Renamed"
	delete(wf.Blocks, "snow-1")
	require.NoError(t, d.SaveWorkflow(ctx, wf))

	loaded, err := d.LoadWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Renamed", loaded[0].Name)
	assert.Len(t, loaded[0].Blocks, 1)
}

func TestDeleteWorkflow(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.SaveWorkflow(ctx, testWorkflow()))
	require.NoError(t, d.DeleteWorkflow(ctx, "wf-1"))

	loaded, err := d.LoadWorkflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDeleteWorkflowMissing(t *testing.T) {
	d := openTestDB(t)
	assert.NoError(t, d.DeleteWorkflow(context.Background(), "nope"))
}

func TestSubBlockSnapshotRoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	snap := store.SubBlockSnapshot{
		Values: map[string]map[string]map[string]any{
			"wf-1": {
				"agent-1": {
					"model":       "gpt-4o",
					"temperature": 0.7,
					"tools":       []any{"search", "code"},
				},
			},
		},
		ToolParams: map[string]map[string]string{
			"openai":    {"apiKey": "sk-openai"},
			"snowflake": {"apiKey": "sf-key", "account": "acme-prod"},
		},
		Cleared: []store.ClearedParam{
			{BlockID: "agent-2", Param: "apiKey"},
		},
	}
	require.NoError(t, d.SaveSubBlockSnapshot(ctx, snap))

	got, err := d.LoadSubBlockSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", got.Values["wf-1"]["agent-1"]["model"])
	assert.Equal(t, 0.7, got.Values["wf-1"]["agent-1"]["temperature"])
	assert.Equal(t, []any{"search", "code"}, got.Values["wf-1"]["agent-1"]["tools"])
	assert.Equal(t, snap.ToolParams, got.ToolParams)
	assert.Equal(t, snap.Cleared, got.Cleared)
}

func TestSaveSubBlockSnapshotReplaces(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	first := store.SubBlockSnapshot{
		ToolParams: map[string]map[string]string{"openai": {"apiKey": "old"}},
	}
	require.NoError(t, d.SaveSubBlockSnapshot(ctx, first))

	second := store.SubBlockSnapshot{
		ToolParams: map[string]map[string]string{"anthropic": {"apiKey": "new"}},
	}
	require.NoError(t, d.SaveSubBlockSnapshot(ctx, second))

	got, err := d.LoadSubBlockSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ToolParams, got.ToolParams)
	assert.Empty(t, got.Values)
	assert.Empty(t, got.Cleared)
}

func TestLoadSubBlockSnapshotEmpty(t *testing.T) {
	d := openTestDB(t)

	got, err := d.LoadSubBlockSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Values)
	assert.Empty(t, got.ToolParams)
	assert.Empty(t, got.Cleared)
}
