package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", common.ErrValidation)
	}
	return id, nil
}

type accountRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type accountResponse struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance,omitempty"`
	ID      int64  `json:"id"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		balance, err := s.store.AccountBalance(r.Context(), account.ID, userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		resp = append(resp, accountResponse{
			ID:      account.ID,
			Name:    account.Name,
			Type:    string(account.Type),
			Balance: balance.String(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"accounts": resp})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		writeError(w, fmt.Errorf("%w: account name and type are required", common.ErrValidation))
		return
	}

	account, err := s.store.CreateAccount(r.Context(), req.Name, model.EntryType(req.Type), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{
		ID:   account.ID,
		Name: account.Name,
		Type: string(account.Type),
	})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		writeError(w, fmt.Errorf("%w: account name and type are required", common.ErrValidation))
		return
	}

	account := &model.Account{
		ID:     id,
		Name:   req.Name,
		Type:   model.EntryType(req.Type),
		UserID: userID(r),
	}
	if err := s.store.UpdateAccount(r.Context(), account); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		ID:   account.ID,
		Name: account.Name,
		Type: string(account.Type),
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteAccount(r.Context(), id, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
