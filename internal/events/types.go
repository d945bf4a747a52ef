// Package events provides event types and publishing infrastructure for loom.
package events

import (
	"time"
)

// EventType defines the type of event.
type EventType string

const (
	// EventWorkflowCreated indicates a workflow was created.
	EventWorkflowCreated EventType = "workflow_created"
	// EventWorkflowUpdated indicates the workflow graph changed.
	EventWorkflowUpdated EventType = "workflow_updated"
	// EventWorkflowDeleted indicates a workflow was removed.
	EventWorkflowDeleted EventType = "workflow_deleted"
	// EventBlockAdded indicates a block was placed on the canvas.
	EventBlockAdded EventType = "block_added"
	// EventBlockRemoved indicates a block was removed from the canvas.
	EventBlockRemoved EventType = "block_removed"
	// EventBlockValue indicates a sub-block field value changed.
	EventBlockValue EventType = "block_value"
	// EventLayoutSaved indicates block canvas positions were saved.
	EventLayoutSaved EventType = "layout_saved"
	// EventCredentialStored indicates an API key was stored for a scope.
	EventCredentialStored EventType = "credential_stored"
)

// Event represents a published event.
type Event struct {
	Type       EventType `json:"type"`
	WorkflowID string    `json:"workflow_id"`
	Data       any       `json:"data"`
	Time       time.Time `json:"time"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, workflowID string, data any) Event {
	return Event{
		Type:       eventType,
		WorkflowID: workflowID,
		Data:       data,
		Time:       time.Now(),
	}
}

// BlockValueUpdate describes a sub-block value change.
type BlockValueUpdate struct {
	BlockID    string `json:"block_id"`
	SubBlockID string `json:"sub_block_id"`
	Value      any    `json:"value"`
}

// CredentialStored describes a credential write. The value itself is never
// carried on the event.
type CredentialStored struct {
	Scope string `json:"scope"`
	Param string `json:"param"`
}
