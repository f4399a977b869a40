package middleware

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long an admin session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Session represents an authenticated admin session
type Session struct {
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore keeps admin sessions keyed by an opaque id.
type SessionStore interface {
	Create() string
	Get(id string) (Session, bool)
	Delete(id string)
}

// MemorySessionStore is an in-memory SessionStore. Sessions are lost on restart.
type MemorySessionStore struct {
	mu  sync.RWMutex
	m   map[string]Session
	now func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		m:   make(map[string]Session),
		now: time.Now,
	}
}

// Create starts a new session and returns its id.
func (s *MemorySessionStore) Create() string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.m[id] = Session{CreatedAt: now, ExpiresAt: now.Add(SessionTTL)}
	s.mu.Unlock()

	return id
}

// Get returns the session for id. Expired sessions are removed and reported missing.
func (s *MemorySessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.m[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, false
	}
	if s.now().After(sess.ExpiresAt) {
		s.Delete(id)
		return Session{}, false
	}
	return sess, true
}

func (s *MemorySessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}
