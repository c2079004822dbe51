// Package web exposes the ledger over an HTTP JSON API. The sync engine
// treats this layer as an external collaborator: handlers validate,
// delegate to storage or the importer, and translate errors into
// advisory messages.
package web

import (
	"net/http"

	"github.com/akulov/finbook/internal/service"
	"github.com/akulov/finbook/internal/sync"
)

// Server wires the HTTP handlers to storage and the importer.
type Server struct {
	store    service.Storage
	importer *sync.Importer
	sessions *SessionStore
}

// NewServer creates the web server. The importer must be the same
// instance the scheduler uses so per-credential locks cover both the
// timer path and on-demand imports.
func NewServer(store service.Storage, importer *sync.Importer) *Server {
	return &Server{
		store:    store,
		importer: importer,
		sessions: NewSessionStore(),
	}
}

// Handler builds the route table with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.requireAuth(s.handleLogout))

	mux.HandleFunc("GET /api/accounts", s.requireAuth(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.requireAuth(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.requireAuth(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.requireAuth(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/counterparties", s.requireAuth(s.handleListCounterparties))
	mux.HandleFunc("POST /api/counterparties", s.requireAuth(s.handleCreateCounterparty))
	mux.HandleFunc("PUT /api/counterparties/{id}", s.requireAuth(s.handleUpdateCounterparty))
	mux.HandleFunc("DELETE /api/counterparties/{id}", s.requireAuth(s.handleDeleteCounterparty))

	mux.HandleFunc("GET /api/groups", s.requireAuth(s.handleListGroups))
	mux.HandleFunc("POST /api/groups", s.requireAuth(s.handleCreateGroup))
	mux.HandleFunc("PUT /api/groups/{id}", s.requireAuth(s.handleUpdateGroup))
	mux.HandleFunc("DELETE /api/groups/{id}", s.requireAuth(s.handleDeleteGroup))

	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/import", s.requireAuth(s.handleImport))

	return logRequests(recoverPanics(mux))
}
