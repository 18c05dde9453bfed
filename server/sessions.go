package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jdbancal/MyFavoriteDouble/registry"
)

// Session represents one remote host. Handles created on its behalf
// carry its ID as owner tag, so a vanished host's handles can be
// reclaimed together instead of leaking.
type Session struct {
	ID   string
	Name string
}

// SessionStore manages remote host sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextID   atomic.Uint64
	reg      *registry.Registry
}

// NewSessionStore creates a new session store over reg.
func NewSessionStore(reg *registry.Registry) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		reg:      reg,
	}
}

// Create creates a new session with an optional name.
func (s *SessionStore) Create(name string) *Session {
	id := fmt.Sprintf("s-%d", s.nextID.Add(1))

	session := &Session{ID: id, Name: name}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Destroy removes a session and releases all handles it owns.
// Returns the number of handles released.
func (s *SessionStore) Destroy(id string) int {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return s.reg.ReleaseOwner(id)
}
