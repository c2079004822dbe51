package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akulov/finbook/internal/common"
)

type importRequest struct {
	APIKey string `json:"api_key"`
}

// handleImport runs one on-demand sync cycle for the logged-in user,
// persisting the submitted API key. Failures come back as advisory
// messages rather than being logged away.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.APIKey == "" {
		writeError(w, fmt.Errorf("%w: api_key is required", common.ErrValidation))
		return
	}

	inserted, err := s.importer.ImportNow(r.Context(), req.APIKey, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"inserted": inserted})
}
