package api

import (
	"net/http"

	"github.com/loomworks/loom/internal/block"
	loomerrors "github.com/loomworks/loom/internal/errors"
)

// handleListBlocks returns block definitions for the toolbar. A non-empty
// "q" searches name and description across every category; without a query
// the "category" parameter filters the list.
func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	JSONResponse(w, map[string]any{
		"blocks": s.blocks.Search(query, category),
	})
}

// handleListCategories returns the distinct toolbar categories.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]any{"categories": s.blocks.Categories()})
}

// handleListTools returns tool descriptors, optionally filtered by block kind.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if kind := r.URL.Query().Get("block"); kind != "" {
		JSONResponse(w, map[string]any{"tools": s.tools.ForBlock(block.Kind(kind))})
		return
	}
	JSONResponse(w, map[string]any{"tools": s.tools.List()})
}

// handleGetTool returns a single tool descriptor.
func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tool := s.tools.Get(id)
	if tool == nil {
		HandleError(w, loomerrors.ErrToolNotFound(id))
		return
	}
	JSONResponse(w, tool)
}
