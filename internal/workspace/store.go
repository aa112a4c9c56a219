package workspace

import "sync"

// Store keeps the latest text of open documents keyed by URI.
type Store struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewStore() *Store {
	return &Store{docs: map[string]string{}}
}

func (s *Store) Put(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = text
}

func (s *Store) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}
