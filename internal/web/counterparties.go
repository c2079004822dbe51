package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

type counterpartyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type counterpartyResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ID          int64  `json:"id"`
}

func (s *Server) handleListCounterparties(w http.ResponseWriter, r *http.Request) {
	counterparties, err := s.store.ListCounterparties(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]counterpartyResponse, 0, len(counterparties))
	for _, cp := range counterparties {
		resp = append(resp, counterpartyResponse{ID: cp.ID, Name: cp.Name, Description: cp.Description})
	}

	writeJSON(w, http.StatusOK, map[string]any{"counterparties": resp})
}

func (s *Server) handleCreateCounterparty(w http.ResponseWriter, r *http.Request) {
	var req counterpartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: counterparty name is required", common.ErrValidation))
		return
	}

	cp, err := s.store.CreateCounterparty(r.Context(), req.Name, req.Description, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, counterpartyResponse{ID: cp.ID, Name: cp.Name, Description: cp.Description})
}

func (s *Server) handleUpdateCounterparty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req counterpartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: counterparty name is required", common.ErrValidation))
		return
	}

	cp := &model.Counterparty{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		UserID:      userID(r),
	}
	if err := s.store.UpdateCounterparty(r.Context(), cp); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counterpartyResponse{ID: cp.ID, Name: cp.Name, Description: cp.Description})
}

func (s *Server) handleDeleteCounterparty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteCounterparty(r.Context(), id, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
