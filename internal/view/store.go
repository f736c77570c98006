package view

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds one Session per user
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Session)}
}

// Update runs fn against the user's session while holding the store lock,
// creating the session on first use
func (s *Store) Update(userID uuid.UUID, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.session(userID))
}

// Render returns a copy of the session for display and consumes its alert
func (s *Store) Render(userID uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(userID)
	snap := sess.snapshot()
	sess.alert = ""
	return snap
}

// Delete drops the user's session, used on sign-out
func (s *Store) Delete(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *Store) session(userID uuid.UUID) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = NewSession()
		s.sessions[userID] = sess
	}
	return sess
}
