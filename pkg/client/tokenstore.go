package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"taskdeck/internal/token"
)

// TokenStore persists the bearer credential between runs. Get returns
// the empty string when no token is stored.
type TokenStore interface {
	Set(token string) error
	Get() (string, error)
	Clear() error
}

// HasValidToken reports whether the store holds a structurally sound,
// unexpired token. Malformed tokens count as absent.
func HasValidToken(store TokenStore) bool {
	raw, err := store.Get()
	if err != nil || raw == "" {
		return false
	}
	return token.ExpiryValid(raw)
}

// MemoryTokenStore keeps the token in memory only. Useful for tests and
// short-lived processes.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore persists the token to a single file, created with
// owner-only permissions.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store writing to the given path. Parent
// directories are created on first Set.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
