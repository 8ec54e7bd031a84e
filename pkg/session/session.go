package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

const (
	dirName   = "session"
	userFile  = "user.json"
	tokenFile = "token"
)

// Store persists the logged-in user and token under <root>/session.
type Store struct {
	Root string
}

// NewStore creates a Store rooted at the data directory.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, dirName), 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &Store{Root: root}, nil
}

// Dir returns the session directory.
func (s *Store) Dir() string {
	return filepath.Join(s.Root, dirName)
}

// Save writes the user record and the token.
func (s *Store) Save(user api.User, token string) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing user: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), userFile), data, 0600); err != nil {
		return fmt.Errorf("writing user: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), tokenFile), []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Load returns the stored user and token. The user is nil when the user
// file is missing or unreadable; ErrNoSession is returned when there is no
// usable token.
func (s *Store) Load() (*api.User, string, error) {
	token := s.Token()

	var user *api.User
	if data, err := os.ReadFile(filepath.Join(s.Dir(), userFile)); err == nil {
		var u api.User
		if json.Unmarshal(data, &u) == nil {
			user = &u
		}
	}

	if token == "" {
		return user, "", ErrNoSession
	}
	return user, token, nil
}

// Token returns the stored token, or "" when absent or expired. It is read
// from disk on every call so a logout elsewhere takes effect immediately.
func (s *Store) Token() string {
	data, err := os.ReadFile(filepath.Join(s.Dir(), tokenFile))
	if err != nil {
		return ""
	}
	token := strings.TrimSpace(string(data))
	if Expired(token, time.Now()) {
		return ""
	}
	return token
}

// IsAuthenticated reports whether a usable token is stored.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Clear removes both the user record and the token.
func (s *Store) Clear() error {
	for _, name := range []string{userFile, tokenFile} {
		err := os.Remove(filepath.Join(s.Dir(), name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

// Expired reports whether token is a JWT whose exp claim is before now.
// Opaque tokens never expire client-side; the remote decides.
func Expired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
