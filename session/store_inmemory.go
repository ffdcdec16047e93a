package session

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]Session),
	}
}

// Put creates or updates a session
func (s *InMemoryStore) Put(_ context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = session
	return nil
}

// Get retrieves a session by its ID
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

// Clear removes a session. Clearing a session that does not exist is not an error.
func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
