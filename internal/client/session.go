package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hondurasarchive/backend/internal/models"
)

// Session is the authenticated state of a client: the access token and who it belongs to.
// It is passed explicitly to every call that needs authentication.
type Session struct {
	Token string                `json:"token"`
	User  models.UserDescriptor `json:"user"`
}

// IsAdmin reports whether the session belongs to an admin
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == models.RoleAdmin
}

// IsClient reports whether the session ranks at least client
func (s *Session) IsClient() bool {
	return s != nil && s.User.Role.Rank() >= models.RoleClient.Rank()
}

// SessionStore persists a session in a JSON file
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by path
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath returns the session file under the user's config directory
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find config directory: %w", err)
	}
	return filepath.Join(dir, "honduras-archive", "session.json"), nil
}

// Path returns the session file location
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields a nil session.
// A file that cannot be parsed is removed and also yields a nil session.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		if clearErr := s.Clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}

	return &session, nil
}

// Save writes the session, readable by the current user only
func (s *SessionStore) Save(session *Session) error {
	if session == nil || session.Token == "" {
		return errors.New("refusing to save an empty session")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
