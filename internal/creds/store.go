// Package creds holds the persisted client credential: the bearer token,
// the cached user profile, and the locale preference. It is a pure
// storage abstraction with no network or UI side effects.
package creds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// Store is the process-wide credential state. At most one credential
// exists at a time; an empty token means unauthenticated.
//
// Clear is idempotent and must be safe when the store is already empty.
// Generation increases on every Clear so that a login racing a forced
// logout can detect that its token was invalidated before it committed
// ("most recent store write wins").
type Store interface {
	Token() string
	SetToken(token string) error
	User() (*model.User, bool)
	SetUser(u *model.User) error
	Locale() string
	SetLocale(locale string) error
	Clear() error
	Generation() uint64
}

// credentialFile is the on-disk shape. Plain strings under fixed keys,
// no structural versioning.
type credentialFile struct {
	AccessToken string      `json:"access_token,omitempty"`
	Locale      string      `json:"locale,omitempty"`
	User        *model.User `json:"user,omitempty"`
}

// FileStore persists credentials as a JSON file so a restart restores
// the session without re-login.
type FileStore struct {
	path string

	mu    sync.Mutex
	state credentialFile
	gen   uint64
}

// DefaultPath returns the credential file location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "scanctl", "credentials.json"), nil
}

// NewFileStore loads existing state from path if present. A missing or
// unreadable file yields an empty store, not an error: stale credential
// files must never block startup.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		// Corrupt file: treat as logged out rather than failing.
		s.state = credentialFile{}
	}
	return s, nil
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	return s.persistLocked()
}

func (s *FileStore) User() (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil, false
	}
	u := *s.state.User
	return &u, true
}

func (s *FileStore) SetUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = u
	return s.persistLocked()
}

func (s *FileStore) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Locale
}

func (s *FileStore) SetLocale(locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Locale = locale
	return s.persistLocked()
}

// Clear drops the token and cached profile. The locale is a UI
// preference, not a credential, and survives logout.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.AccessToken = ""
	s.state.User = nil
	return s.persistLocked()
}

func (s *FileStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	token  string
	user   *model.User
	locale string
	gen    uint64
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) User() (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

func (s *MemStore) SetUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	return nil
}

func (s *MemStore) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

func (s *MemStore) SetLocale(locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.token = ""
	s.user = nil
	return nil
}

func (s *MemStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
