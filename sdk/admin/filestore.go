package admin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileCredentialStore persists the credential pair as a JSON file so a
// session survives process restarts. Files are written with 0600 permissions
// under a directory created with 0700.
type FileCredentialStore struct {
	mu   sync.Mutex
	path string
}

// NewFileCredentialStore creates a file-backed store writing to path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the backing file path.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Load reads the stored pair. A missing file yields the zero pair.
func (s *FileCredentialStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("credential filestore: read failed: %w", err)
	}
	if len(data) == 0 {
		return Credentials{}, nil
	}
	var creds Credentials
	if err = json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("credential filestore: unmarshal failed: %w", err)
	}
	return creds, nil
}

// Save overwrites both stored tokens. The file is replaced via a rename so a
// concurrent reader never observes a half-written pair.
func (s *FileCredentialStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credential filestore: create dir failed: %w", err)
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("credential filestore: marshal failed: %w", err)
	}
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("credential filestore: write failed: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credential filestore: rename failed: %w", err)
	}
	return nil
}

// Clear removes the stored pair. Clearing an absent file is a no-op.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credential filestore: delete failed: %w", err)
	}
	return nil
}
