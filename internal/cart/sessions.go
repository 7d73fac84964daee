package cart

import "sync"

// syncedSessions is the session table. Carts shard naturally by session
// key; the table lock covers only map access, never placement I/O.
type syncedSessions struct {
	mu sync.Mutex
	m  map[string]*Session
}

func newSyncedSessions() syncedSessions {
	return syncedSessions{m: map[string]*Session{}}
}

func (s *syncedSessions) put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[session.Key()] = session
}

func (s *syncedSessions) get(key string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.m[key]
	return session, ok
}

// pop removes and returns the session in one step.
func (s *syncedSessions) pop(key string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	return session, ok
}
