package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

type groupRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type groupResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		resp = append(resp, groupResponse{ID: group.ID, Name: group.Name, Type: string(group.Type)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"groups": resp})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		writeError(w, fmt.Errorf("%w: group name and type are required", common.ErrValidation))
		return
	}

	group, err := s.store.CreateGroup(r.Context(), req.Name, model.EntryType(req.Type), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, groupResponse{ID: group.ID, Name: group.Name, Type: string(group.Type)})
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		writeError(w, fmt.Errorf("%w: group name and type are required", common.ErrValidation))
		return
	}

	group := &model.Group{
		ID:     id,
		Name:   req.Name,
		Type:   model.EntryType(req.Type),
		UserID: userID(r),
	}
	if err := s.store.UpdateGroup(r.Context(), group); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groupResponse{ID: group.ID, Name: group.Name, Type: string(group.Type)})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteGroup(r.Context(), id, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
