package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/block"
	loomerrors "github.com/loomworks/loom/internal/errors"
	"github.com/loomworks/loom/internal/store"
)

// handleListWorkflows returns all workflows.
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]any{"workflows": s.workflows.List()})
}

// handleCreateWorkflow creates a new workflow.
func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		JSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	wf := s.workflows.Create(req.Name, req.Description)
	s.persist(r.Context())
	JSONResponseStatus(w, wf, http.StatusCreated)
}

// handleGetWorkflow returns a single workflow.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.workflows.Get(r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, wf)
}

// handleDeleteWorkflow deletes a workflow and its persisted blocks.
func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.workflows.Delete(id); err != nil {
		HandleError(w, err)
		return
	}
	if err := s.database.DeleteWorkflow(r.Context(), id); err != nil {
		s.logger.Error("failed to delete persisted workflow", "workflow", id, "error", err)
	}
	NoContent(w)
}

// handleAddBlock adds a block to the workflow canvas. Sub-block values are
// seeded from the registry definition's defaults, then each field is bound
// through the reconciler so API keys auto-fill on attach.
func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")

	var req struct {
		Type     string         `json:"type"`
		Name     string         `json:"name"`
		Position store.Position `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	kind := block.Kind(req.Type)
	def := s.blocks.Get(kind)
	if def == nil {
		HandleError(w, loomerrors.ErrBlockTypeUnknown(req.Type))
		return
	}

	name := req.Name
	if name == "" {
		name = def.Name
	}

	blk := &store.Block{
		ID:        uuid.New().String(),
		Type:      kind,
		Name:      name,
		Position:  req.Position,
		Enabled:   true,
		SubBlocks: make(map[string]*store.SubBlock),
	}
	for _, field := range def.SubBlocks {
		blk.SubBlocks[field.ID] = &store.SubBlock{Value: field.Default}
	}

	if err := s.workflows.AddBlock(workflowID, blk); err != nil {
		HandleError(w, err)
		return
	}

	for _, field := range def.SubBlocks {
		s.reconciler.Bind(workflowID, blk.ID, field.ID)
	}

	s.persist(r.Context())
	JSONResponseStatus(w, blk, http.StatusCreated)
}

// handleRemoveBlock removes a block from the canvas.
func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	blockID := r.PathValue("blockId")

	if err := s.workflows.RemoveBlock(workflowID, blockID); err != nil {
		HandleError(w, err)
		return
	}
	s.persist(r.Context())
	NoContent(w)
}

// handleSaveLayout saves block positions after a canvas drag.
func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")

	var req struct {
		Positions map[string]store.Position `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.workflows.SaveLayout(workflowID, req.Positions); err != nil {
		HandleError(w, err)
		return
	}
	s.persist(r.Context())
	JSONResponse(w, map[string]any{"saved": len(req.Positions)})
}
