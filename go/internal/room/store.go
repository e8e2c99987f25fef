package room

import "sync"

// Store is the backing map of live sessions keyed by room code.
type Store interface {
	Get(code string) (*Session, bool)
	// Insert stores s under code unless the code is taken, and reports
	// whether it did.
	Insert(code string, s *Session) bool
	Delete(code string) (*Session, bool)
	// CompareAndDelete removes code only if it still maps to s.
	CompareAndDelete(code string, s *Session) bool
	List() []*Session
	Len() int
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Get retrieves a session by code
func (s *MemoryStore) Get(code string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[code]
	return sess, exists
}

func (s *MemoryStore) Insert(code string, sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[code]; exists {
		return false
	}
	s.sessions[code] = sess
	return true
}

// Delete removes a session and returns it
func (s *MemoryStore) Delete(code string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, exists := s.sessions[code]
	if exists {
		delete(s.sessions, code)
	}
	return sess, exists
}

func (s *MemoryStore) CompareAndDelete(code string, sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[code] != sess {
		return false
	}
	delete(s.sessions, code)
	return true
}

// List returns a snapshot of all sessions
func (s *MemoryStore) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
