package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is an opaque key/value collaborator used to stash the last-loaded
// PaymentData so the success view can render without a redirect-time fetch.
type Store interface {
	Get(key string, out interface{}) (bool, error)
	Set(key string, value interface{}) error
	Remove(key string) error
}

// FileStore persists each key as a JSON file under the data directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get loads the value stored under key into out. The boolean reports whether
// the key existed.
func (s *FileStore) Get(key string, out interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stored value: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode stored value: %w", err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous value.
func (s *FileStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0600); err != nil {
		return fmt.Errorf("failed to write stored value: %w", err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing a missing key is not
// an error.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored value: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps stored filenames flat and filesystem-safe.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, key)
}
