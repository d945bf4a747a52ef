package api

import (
	"encoding/json"
	"net/http"

	loomerrors "github.com/loomworks/loom/internal/errors"
)

// handleGetValue returns the reconciled value of a sub-block field.
func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	blockID := r.PathValue("blockId")
	subBlockID := r.PathValue("subBlockId")

	if err := s.checkBlock(workflowID, blockID); err != nil {
		HandleError(w, err)
		return
	}

	binding := s.reconciler.Bind(workflowID, blockID, subBlockID)
	JSONResponse(w, map[string]any{"value": binding.Value()})
}

// handleSetValue writes a sub-block field value through the reconciler,
// applying the credential rules for API-key fields.
func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	blockID := r.PathValue("blockId")
	subBlockID := r.PathValue("subBlockId")

	if err := s.checkBlock(workflowID, blockID); err != nil {
		HandleError(w, err)
		return
	}

	var req struct {
		Value         any  `json:"value"`
		TriggerUpdate bool `json:"trigger_update"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	binding := s.reconciler.Bind(workflowID, blockID, subBlockID)
	binding.Set(req.Value, req.TriggerUpdate)

	s.persist(r.Context())
	JSONResponse(w, map[string]any{"value": binding.Value()})
}

// handleModelChanged notifies the reconciler that a block's model selection
// changed, so the API-key field can follow the new provider.
func (s *Server) handleModelChanged(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	blockID := r.PathValue("blockId")

	if err := s.checkBlock(workflowID, blockID); err != nil {
		HandleError(w, err)
		return
	}

	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Bind the key field before writing the new model so a lazily-created
	// binding observes the outgoing model's provider, not the new one.
	keyBinding := s.reconciler.Bind(workflowID, blockID, "apiKey")

	modelBinding := s.reconciler.Bind(workflowID, blockID, "model")
	modelBinding.Set(req.Model, false)
	keyBinding.ModelChanged(req.Model)

	s.persist(r.Context())
	JSONResponse(w, map[string]any{
		"model":  modelBinding.Value(),
		"apiKey": keyBinding.Value(),
	})
}

// checkBlock verifies the workflow and block exist.
func (s *Server) checkBlock(workflowID, blockID string) error {
	wf, err := s.workflows.Get(workflowID)
	if err != nil {
		return err
	}
	if _, ok := wf.Blocks[blockID]; !ok {
		return loomerrors.ErrBlockNotFound(workflowID, blockID)
	}
	return nil
}
