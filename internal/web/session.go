package web

import (
	stdsync "sync"

	"github.com/google/uuid"
)

// sessionCookie is the name of the session cookie.
const sessionCookie = "finbook_session"

// SessionStore holds active login sessions in memory. Sessions do not
// survive a process restart; users log in again.
type SessionStore struct {
	sessions map[string]int64
	mu       stdsync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]int64{}}
}

// Create registers a new session for the user and returns its token.
func (s *SessionStore) Create(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID

	return token
}

// Get returns the user id for a session token.
func (s *SessionStore) Get(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	return userID, ok
}

// Delete removes a session.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
