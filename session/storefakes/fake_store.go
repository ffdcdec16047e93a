package fakesessionstore

import (
	"context"
	"sync"

	"github.com/tablemate/tablemate-web/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore records every write so tests can assert on the exact sequence of
// token-store mutations.
type FakeStore struct {
	sessions map[string]session.Session
	Puts     []string // session ids in write order
	Clears   []string
	lock     sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		sessions: make(map[string]session.Session),
	}
}

func (fs *FakeStore) Put(_ context.Context, sessionID string, s session.Session) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.sessions[sessionID] = s
	fs.Puts = append(fs.Puts, sessionID)
	return nil
}

func (fs *FakeStore) Get(_ context.Context, sessionID string) (session.Session, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	s, ok := fs.sessions[sessionID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (fs *FakeStore) Clear(_ context.Context, sessionID string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.sessions, sessionID)
	fs.Clears = append(fs.Clears, sessionID)
	return nil
}

// PutCount returns the number of writes recorded for sessionID.
func (fs *FakeStore) PutCount(sessionID string) int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	n := 0
	for _, id := range fs.Puts {
		if id == sessionID {
			n++
		}
	}
	return n
}
