// Package session provides the per-user conversation session store.
//
// Sessions are ephemeral: they live for the process lifetime only and carry
// no TTL. A leaked session survives until flow completion clears it.
package session

import (
	"log/slog"
	"sync"

	"github.com/medpet/chatbot/internal/models"
)

// Store defines the session store contract. Implementations must allow
// different users to proceed fully in parallel while Lock serializes
// read-modify-write sequences for a single user.
type Store interface {
	// Get retrieves the current session state for a user. A user without a
	// session yields the zero SessionState.
	Get(userID string) models.SessionState

	// Set replaces the session state for a user.
	Set(userID string, state models.SessionState)

	// Clear removes the session state for a user.
	Clear(userID string)

	// Lock acquires the per-user lock and returns the release function.
	// Events for the same user must not interleave between Lock and release.
	Lock(userID string) func()
}

// InMemoryStore implements Store with a concurrent map keyed by user id.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SessionState

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]models.SessionState),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns the session for a user, or the zero state if none exists.
func (s *InMemoryStore) Get(userID string) models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Set replaces the session state for a user.
func (s *InMemoryStore) Set(userID string, state models.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = state
	slog.Debug("SessionStore Set", "userID", userID, "kind", state.Kind, "step", state.Step)
}

// Clear removes the session for a user.
func (s *InMemoryStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	slog.Debug("SessionStore Clear", "userID", userID)
}

// Lock serializes processing per user. The mutex for a user id is created on
// first use and kept for the process lifetime, matching the no-TTL session
// model.
func (s *InMemoryStore) Lock(userID string) func() {
	s.lockMu.Lock()
	m, ok := s.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[userID] = m
	}
	s.lockMu.Unlock()

	m.Lock()
	return m.Unlock
}
