// Package errors provides structured error types for loom.
package errors

import (
	"encoding/json"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for loom.
const (
	// Initialization errors
	CodeNotInitialized     Code = "LOOM_NOT_INITIALIZED"
	CodeAlreadyInitialized Code = "LOOM_ALREADY_INITIALIZED"

	// Workflow errors
	CodeWorkflowNotFound Code = "WORKFLOW_NOT_FOUND"
	CodeWorkflowExists   Code = "WORKFLOW_EXISTS"
	CodeBlockNotFound    Code = "BLOCK_NOT_FOUND"
	CodeBlockTypeUnknown Code = "BLOCK_TYPE_UNKNOWN"

	// Tool errors
	CodeToolNotFound Code = "TOOL_NOT_FOUND"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
	CodeConfigMissing Code = "CONFIG_MISSING"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
	CategoryUnavailable
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeNotInitialized:     CategoryBadRequest,
	CodeAlreadyInitialized: CategoryConflict,
	CodeWorkflowNotFound:   CategoryNotFound,
	CodeWorkflowExists:     CategoryConflict,
	CodeBlockNotFound:      CategoryNotFound,
	CodeBlockTypeUnknown:   CategoryBadRequest,
	CodeToolNotFound:       CategoryNotFound,
	CodeConfigInvalid:      CategoryBadRequest,
	CodeConfigMissing:      CategoryBadRequest,
	CodeStorageUnavailable: CategoryUnavailable,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	case CategoryUnavailable:
		return 503
	default:
		return 500
	}
}

// LoomError is the structured error type for loom.
type LoomError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *LoomError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *LoomError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *LoomError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *LoomError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *LoomError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *LoomError) MarshalJSON() ([]byte, error) {
	type alias LoomError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a LoomError with the same code.
func (e *LoomError) Is(target error) bool {
	t, ok := target.(*LoomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *LoomError) WithCause(err error) *LoomError {
	return &LoomError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrNotInitialized returns an error for an uninitialized loom directory.
func ErrNotInitialized() *LoomError {
	return &LoomError{
		Code: CodeNotInitialized,
		What: "loom is not initialized in this directory",
		Why:  "No .loom/ directory found in the current path",
		Fix:  "Run 'loom init' to initialize loom in this directory",
	}
}

// ErrAlreadyInitialized returns an error when loom is already initialized.
func ErrAlreadyInitialized(path string) *LoomError {
	return &LoomError{
		Code: CodeAlreadyInitialized,
		What: "loom is already initialized",
		Why:  "A .loom/ directory already exists at " + path,
		Fix:  "Remove the existing .loom/ directory to reinitialize",
	}
}

// ErrWorkflowNotFound returns an error for a missing workflow.
func ErrWorkflowNotFound(id string) *LoomError {
	return &LoomError{
		Code: CodeWorkflowNotFound,
		What: "workflow " + id + " not found",
		Fix:  "Run 'loom workflows' to list available workflows",
	}
}

// ErrWorkflowExists returns an error for a duplicate workflow ID.
func ErrWorkflowExists(id string) *LoomError {
	return &LoomError{
		Code: CodeWorkflowExists,
		What: "workflow " + id + " already exists",
	}
}

// ErrBlockNotFound returns an error for a missing block.
func ErrBlockNotFound(workflowID, blockID string) *LoomError {
	return &LoomError{
		Code: CodeBlockNotFound,
		What: "block " + blockID + " not found in workflow " + workflowID,
	}
}

// ErrBlockTypeUnknown returns an error for an unregistered block type.
func ErrBlockTypeUnknown(blockType string) *LoomError {
	return &LoomError{
		Code: CodeBlockTypeUnknown,
		What: "unknown block type " + blockType,
		Fix:  "Run 'loom blocks' to list registered block types",
	}
}

// ErrToolNotFound returns an error for a missing tool descriptor.
func ErrToolNotFound(id string) *LoomError {
	return &LoomError{
		Code: CodeToolNotFound,
		What: "tool " + id + " not found",
		Fix:  "Run 'loom tools' to list registered tools",
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(why string) *LoomError {
	return &LoomError{
		Code: CodeConfigInvalid,
		What: "invalid configuration",
		Why:  why,
		Fix:  "Check .loom/config.yaml for errors",
	}
}

// ErrStorageUnavailable returns an error when the database cannot be reached.
func ErrStorageUnavailable(err error) *LoomError {
	return &LoomError{
		Code:  CodeStorageUnavailable,
		What:  "storage backend is unavailable",
		Cause: err,
	}
}
