// Package store holds the client-visible state of the workflow builder: the
// canonical workflow graphs and the transient sub-block field values that
// the canvas edits before a workflow is saved.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/block"
	loomerrors "github.com/loomworks/loom/internal/errors"
	"github.com/loomworks/loom/internal/events"
)

// Position is a block's canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SubBlock is a single configurable field value inside a block.
type SubBlock struct {
	Value any `json:"value" yaml:"value"`
}

// Block is a node on the workflow canvas.
type Block struct {
	ID        string               `json:"id" yaml:"id"`
	Type      block.Kind           `json:"type" yaml:"type"`
	Name      string               `json:"name" yaml:"name"`
	Position  Position             `json:"position" yaml:"position"`
	Enabled   bool                 `json:"enabled" yaml:"enabled"`
	SubBlocks map[string]*SubBlock `json:"sub_blocks" yaml:"sub_blocks"`
}

// Workflow is the canonical workflow graph.
type Workflow struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Blocks      map[string]*Block `json:"blocks" yaml:"blocks"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" yaml:"updated_at"`
}

// WorkflowStore owns the canonical workflow graphs.
type WorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
	publisher events.Publisher
}

// NewWorkflowStore creates an empty workflow store. A nil publisher disables
// event notifications.
func NewWorkflowStore(pub events.Publisher) *WorkflowStore {
	if pub == nil {
		pub = &events.NopPublisher{}
	}
	return &WorkflowStore{
		workflows: make(map[string]*Workflow),
		publisher: pub,
	}
}

// Create adds a new empty workflow and returns a copy of it.
func (s *WorkflowStore) Create(name, description string) *Workflow {
	now := time.Now()
	wf := &Workflow{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Blocks:      make(map[string]*Block),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.workflows[wf.ID] = wf
	s.mu.Unlock()

	s.publisher.Publish(events.NewEvent(events.EventWorkflowCreated, wf.ID, wf.Name))
	return cloneWorkflow(wf)
}

// Restore inserts a workflow as-is, keeping its ID and timestamps. Used by
// persistence and file import. An existing workflow with the same ID is
// replaced.
func (s *WorkflowStore) Restore(wf *Workflow) {
	if wf.Blocks == nil {
		wf.Blocks = make(map[string]*Block)
	}
	s.mu.Lock()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	s.mu.Unlock()
}

// Get returns a copy of the workflow, or an error when it does not exist.
func (s *WorkflowStore) Get(id string) (*Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[id]
	if !ok {
		return nil, loomerrors.ErrWorkflowNotFound(id)
	}
	return cloneWorkflow(wf), nil
}

// List returns copies of all workflows sorted by name.
func (s *WorkflowStore) List() []*Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, cloneWorkflow(wf))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Delete removes a workflow.
func (s *WorkflowStore) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.workflows[id]
	delete(s.workflows, id)
	s.mu.Unlock()

	if !ok {
		return loomerrors.ErrWorkflowNotFound(id)
	}
	s.publisher.Publish(events.NewEvent(events.EventWorkflowDeleted, id, nil))
	return nil
}

// AddBlock places a block on a workflow's canvas.
func (s *WorkflowStore) AddBlock(workflowID string, blk *Block) error {
	if blk.ID == "" {
		blk.ID = uuid.NewString()
	}
	if blk.SubBlocks == nil {
		blk.SubBlocks = make(map[string]*SubBlock)
	}

	s.mu.Lock()
	wf, ok := s.workflows[workflowID]
	if ok {
		wf.Blocks[blk.ID] = cloneBlock(blk)
		wf.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return loomerrors.ErrWorkflowNotFound(workflowID)
	}
	s.publisher.Publish(events.NewEvent(events.EventBlockAdded, workflowID, blk.ID))
	return nil
}

// RemoveBlock removes a block from a workflow's canvas.
func (s *WorkflowStore) RemoveBlock(workflowID, blockID string) error {
	s.mu.Lock()
	wf, ok := s.workflows[workflowID]
	var found bool
	if ok {
		_, found = wf.Blocks[blockID]
		delete(wf.Blocks, blockID)
		wf.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return loomerrors.ErrWorkflowNotFound(workflowID)
	}
	if !found {
		return loomerrors.ErrBlockNotFound(workflowID, blockID)
	}
	s.publisher.Publish(events.NewEvent(events.EventBlockRemoved, workflowID, blockID))
	return nil
}

// SaveLayout records canvas positions for the given blocks. Unknown block
// IDs are ignored.
func (s *WorkflowStore) SaveLayout(workflowID string, positions map[string]Position) error {
	s.mu.Lock()
	wf, ok := s.workflows[workflowID]
	if ok {
		for blockID, pos := range positions {
			if blk, exists := wf.Blocks[blockID]; exists {
				blk.Position = pos
			}
		}
		wf.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return loomerrors.ErrWorkflowNotFound(workflowID)
	}
	s.publisher.Publish(events.NewEvent(events.EventLayoutSaved, workflowID, nil))
	return nil
}

// BlockType returns the kind of a block, or the empty kind when the
// workflow or block does not exist.
func (s *WorkflowStore) BlockType(workflowID, blockID string) block.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return ""
	}
	blk, ok := wf.Blocks[blockID]
	if !ok {
		return ""
	}
	return blk.Type
}

// InitialValue returns the value a sub-block field carries in the saved
// workflow graph. Missing workflow, block or field yields nil.
func (s *WorkflowStore) InitialValue(workflowID, blockID, subBlockID string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return nil
	}
	blk, ok := wf.Blocks[blockID]
	if !ok {
		return nil
	}
	sb, ok := blk.SubBlocks[subBlockID]
	if !ok || sb == nil {
		return nil
	}
	return sb.Value
}

// SetBlockValue writes a sub-block value into the workflow graph itself.
// Used when a workflow is saved. Missing workflow or block is a no-op.
func (s *WorkflowStore) SetBlockValue(workflowID, blockID, subBlockID string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return
	}
	blk, ok := wf.Blocks[blockID]
	if !ok {
		return
	}
	if blk.SubBlocks == nil {
		blk.SubBlocks = make(map[string]*SubBlock)
	}
	blk.SubBlocks[subBlockID] = &SubBlock{Value: value}
	wf.UpdatedAt = time.Now()
}

// TriggerUpdate notifies subscribers that the workflow graph changed.
func (s *WorkflowStore) TriggerUpdate(workflowID string) {
	s.publisher.Publish(events.NewEvent(events.EventWorkflowUpdated, workflowID, nil))
}

// Snapshot returns copies of every workflow, for persistence.
func (s *WorkflowStore) Snapshot() []*Workflow {
	return s.List()
}

func cloneWorkflow(wf *Workflow) *Workflow {
	out := *wf
	out.Blocks = make(map[string]*Block, len(wf.Blocks))
	for id, blk := range wf.Blocks {
		out.Blocks[id] = cloneBlock(blk)
	}
	return &out
}

func cloneBlock(blk *Block) *Block {
	out := *blk
	out.SubBlocks = make(map[string]*SubBlock, len(blk.SubBlocks))
	for id, sb := range blk.SubBlocks {
		if sb == nil {
			out.SubBlocks[id] = nil
			continue
		}
		v := *sb
		out.SubBlocks[id] = &v
	}
	return &out
}
