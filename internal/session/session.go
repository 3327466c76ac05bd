// Package session persists the dashboard's signed-in identity between CLI
// invocations.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// ErrNoSession is returned when nobody is signed in.
var ErrNoSession = errors.New("not signed in; run `coedash login` first")

// Session is the stored sign-in state.
type Session struct {
	Token  string     `yaml:"token"`
	UserID string     `yaml:"user_id"`
	Email  string     `yaml:"email"`
	Role   model.Role `yaml:"role"`
}

// Viewer returns the identity handed to controllers.
func (s *Session) Viewer() model.Viewer {
	return model.Viewer{UserID: s.UserID, Email: s.Email, Role: s.Role}
}

// FromAuth builds a session from a login or signup response.
func FromAuth(resp *model.AuthResponse) *Session {
	return &Session{Token: resp.Token, UserID: resp.User.ID, Email: resp.User.Email, Role: resp.User.Role}
}

// Load reads the session at path.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save writes s to path, readable by the owner only.
func Save(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
