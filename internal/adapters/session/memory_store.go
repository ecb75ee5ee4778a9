package session

import (
	"sync"

	"github.com/salucol/ips-admin-core/internal/domain/providers"
)

// MemoryStore implements CredentialStore in process memory. Used by tests
// and by console runs that should not share a session across processes.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() providers.CredentialStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

// Get retrieves a value; absent keys yield ""
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores a value
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes a value
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
