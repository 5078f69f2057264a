package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps every live scale session in memory. Nothing survives a
// restart.
type SessionStore struct {
	mu         sync.RWMutex
	m          map[string]*Session
	labelDelay time.Duration
}

func NewSessionStore(labelDelay time.Duration) *SessionStore {
	return &SessionStore{m: make(map[string]*Session), labelDelay: labelDelay}
}

// Create registers a new session under a random id. It lives until the
// store is closed.
func (s *SessionStore) Create() *Session {
	return s.put(uuid.NewString(), false)
}

// createTransient registers a session that is removed once its last
// socket detaches.
func (s *SessionStore) createTransient() *Session {
	return s.put(uuid.NewString(), true)
}

// GetOrCreate returns the session named id, creating it when missing.
func (s *SessionStore) GetOrCreate(id string) *Session {
	s.mu.RLock()
	sess, ok := s.m[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	return s.put(id, false)
}

func (s *SessionStore) put(id string, transient bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[id]; ok {
		return sess
	}
	sess := newSession(id, s.labelDelay)
	sess.transient = transient
	s.m[id] = sess
	return sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[id]
	return sess, ok
}

// Remove closes the session named id and forgets it.
func (s *SessionStore) Remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()
	if ok {
		sess.Close()
	}
	return ok
}

// releaseIfIdle removes a transient session that has no sockets left.
func (s *SessionStore) releaseIfIdle(sess *Session) bool {
	if !sess.transient {
		return false
	}
	s.mu.Lock()
	if cur, ok := s.m[sess.id]; !ok || cur != sess || sess.hub.Len() > 0 {
		s.mu.Unlock()
		return false
	}
	delete(s.m, sess.id)
	s.mu.Unlock()
	sess.Close()
	return true
}

// IDs returns the session ids in sorted order.
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// CloseAll stops pending timers and disconnects every socket.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.m {
		sess.Close()
		delete(s.m, id)
	}
}
