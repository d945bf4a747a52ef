package store

import (
	"sync"

	"github.com/loomworks/loom/internal/events"
)

// SubBlockStore holds transient sub-block field values keyed by
// (workflowID, blockID, subBlockID), plus the credential parameters shared
// across block instances.
//
// Credential parameters are stored per scope (an LLM provider name or a
// block kind) so a key entered once can be offered to every block that uses
// the same scope. A user who explicitly clears a field marks the
// (blockID, param) pair cleared; a cleared pair is never auto-filled again
// until a non-empty user value unmarks it.
type SubBlockStore struct {
	mu         sync.RWMutex
	values     map[string]map[string]map[string]any // workflowID -> blockID -> subBlockID
	toolParams map[string]map[string]string         // scope -> param -> value
	cleared    map[clearedKey]bool
	publisher  events.Publisher
}

type clearedKey struct {
	blockID string
	param   string
}

// NewSubBlockStore creates an empty sub-block store. A nil publisher
// disables event notifications.
func NewSubBlockStore(pub events.Publisher) *SubBlockStore {
	if pub == nil {
		pub = &events.NopPublisher{}
	}
	return &SubBlockStore{
		values:     make(map[string]map[string]map[string]any),
		toolParams: make(map[string]map[string]string),
		cleared:    make(map[clearedKey]bool),
		publisher:  pub,
	}
}

// Value returns the current value for a field. Absent entries yield nil.
func (s *SubBlockStore) Value(workflowID, blockID, subBlockID string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks, ok := s.values[workflowID]
	if !ok {
		return nil
	}
	fields, ok := blocks[blockID]
	if !ok {
		return nil
	}
	return fields[subBlockID]
}

// SetValue writes the current value for a field, creating intermediate
// entries on first access.
func (s *SubBlockStore) SetValue(workflowID, blockID, subBlockID string, value any) {
	s.mu.Lock()
	blocks, ok := s.values[workflowID]
	if !ok {
		blocks = make(map[string]map[string]any)
		s.values[workflowID] = blocks
	}
	fields, ok := blocks[blockID]
	if !ok {
		fields = make(map[string]any)
		blocks[blockID] = fields
	}
	fields[subBlockID] = value
	s.mu.Unlock()

	s.publisher.Publish(events.NewEvent(events.EventBlockValue, workflowID, events.BlockValueUpdate{
		BlockID:    blockID,
		SubBlockID: subBlockID,
		Value:      value,
	}))
}

// BlockValues returns a copy of all field values for a block.
func (s *SubBlockStore) BlockValues(workflowID, blockID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := s.values[workflowID][blockID]
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// SetToolParam stores a credential parameter value under a scope.
func (s *SubBlockStore) SetToolParam(scope, param, value string) {
	s.mu.Lock()
	params, ok := s.toolParams[scope]
	if !ok {
		params = make(map[string]string)
		s.toolParams[scope] = params
	}
	params[param] = value
	s.mu.Unlock()

	s.publisher.Publish(events.NewEvent(events.EventCredentialStored, events.GlobalWorkflowID, events.CredentialStored{
		Scope: scope,
		Param: param,
	}))
}

// ResolveToolParam returns the stored credential value for a scope, or ""
// when nothing is stored or the (blockID, param) pair was user-cleared.
func (s *SubBlockStore) ResolveToolParam(scope, param, blockID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cleared[clearedKey{blockID: blockID, param: param}] {
		return ""
	}
	return s.toolParams[scope][param]
}

// MarkParamCleared records that the user explicitly cleared a credential
// field on a block.
func (s *SubBlockStore) MarkParamCleared(blockID, param string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared[clearedKey{blockID: blockID, param: param}] = true
}

// UnmarkParamCleared removes the cleared flag after a user-entered value.
func (s *SubBlockStore) UnmarkParamCleared(blockID, param string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cleared, clearedKey{blockID: blockID, param: param})
}

// IsParamCleared reports whether the user cleared the credential field.
func (s *SubBlockStore) IsParamCleared(blockID, param string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cleared[clearedKey{blockID: blockID, param: param}]
}

// SubBlockSnapshot is the persistable state of a SubBlockStore.
type SubBlockSnapshot struct {
	Values     map[string]map[string]map[string]any
	ToolParams map[string]map[string]string
	Cleared    []ClearedParam
}

// ClearedParam identifies a user-cleared (blockID, param) pair.
type ClearedParam struct {
	BlockID string
	Param   string
}

// Snapshot returns a deep copy of the store state, for persistence.
func (s *SubBlockStore) Snapshot() SubBlockSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SubBlockSnapshot{
		Values:     make(map[string]map[string]map[string]any, len(s.values)),
		ToolParams: make(map[string]map[string]string, len(s.toolParams)),
	}
	for wfID, blocks := range s.values {
		snap.Values[wfID] = make(map[string]map[string]any, len(blocks))
		for blockID, fields := range blocks {
			copied := make(map[string]any, len(fields))
			for k, v := range fields {
				copied[k] = v
			}
			snap.Values[wfID][blockID] = copied
		}
	}
	for scope, params := range s.toolParams {
		copied := make(map[string]string, len(params))
		for k, v := range params {
			copied[k] = v
		}
		snap.ToolParams[scope] = copied
	}
	for key := range s.cleared {
		snap.Cleared = append(snap.Cleared, ClearedParam{BlockID: key.blockID, Param: key.param})
	}
	return snap
}

// Restore replaces the store state with a snapshot.
func (s *SubBlockStore) Restore(snap SubBlockSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]map[string]map[string]any)
	for wfID, blocks := range snap.Values {
		s.values[wfID] = make(map[string]map[string]any)
		for blockID, fields := range blocks {
			copied := make(map[string]any, len(fields))
			for k, v := range fields {
				copied[k] = v
			}
			s.values[wfID][blockID] = copied
		}
	}
	s.toolParams = make(map[string]map[string]string)
	for scope, params := range snap.ToolParams {
		copied := make(map[string]string, len(params))
		for k, v := range params {
			copied[k] = v
		}
		s.toolParams[scope] = copied
	}
	s.cleared = make(map[clearedKey]bool)
	for _, c := range snap.Cleared {
		s.cleared[clearedKey{blockID: c.BlockID, param: c.Param}] = true
	}
}
