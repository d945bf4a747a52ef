package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/loomworks/loom/internal/config"
)

// handleGetSettings returns the mutable runtime settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]any{
		"auto_fill_env_vars": s.reconciler.AutoFill(),
	})
}

// handleUpdateSettings updates runtime settings and writes them back to the
// project config file.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AutoFillEnvVars *bool `json:"auto_fill_env_vars"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.AutoFillEnvVars != nil {
		s.reconciler.SetAutoFill(*req.AutoFillEnvVars)
		s.loomConfig.AutoFillEnvVars = *req.AutoFillEnvVars

		configPath := filepath.Join(s.workDir, config.LoomDir, config.ConfigFileName)
		if err := s.loomConfig.Save(configPath); err != nil {
			s.logger.Warn("failed to save config", "path", configPath, "error", err)
		}
	}

	JSONResponse(w, map[string]any{
		"auto_fill_env_vars": s.reconciler.AutoFill(),
	})
}
