package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: email and password are required", common.ErrValidation))
		return
	}

	var user model.User
	if err := user.SetPassword(req.Password); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.store.CreateUser(r.Context(), req.Email, user.PasswordHash)
	if err != nil {
		writeError(w, err)
		return
	}

	// Every new user starts with a default bucket of each type
	if _, err := s.store.CreateAccount(r.Context(), "Main Income", model.EntryTypeIncome, created.ID); err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.store.CreateAccount(r.Context(), "Main Expense", model.EntryTypeExpense, created.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    created.ID,
		"email": created.Email,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, err)
		return
	}

	if !user.CheckPassword(req.Password) {
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token := s.sessions.Create(user.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}
