package admin

import "sync"

// MemoryCredentialStore keeps the credential pair in process memory. It is
// intended for tests and for embedders that manage persistence themselves.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Load returns the stored pair.
func (s *MemoryCredentialStore) Load() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

// Save overwrites both stored tokens.
func (s *MemoryCredentialStore) Save(creds Credentials) error {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Clear removes the stored pair.
func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
	return nil
}
