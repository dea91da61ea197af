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
)

const (
	sessionFilePerms = 0600
	sessionDirPerms  = 0700
)

// ErrNoSession is returned when no usable session exists for an environment
var ErrNoSession = errors.New("not logged in: run 'login' first")

// Session is the explicit authentication context handed to the API client
type Session struct {
	Env       string    `json:"env"`
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	CreatedAt time.Time `json:"createdAt"`
}

// New builds a session from a freshly issued token.
// The claims are read without verifying the signature; the backend remains the only verifier.
func New(env, token string, now time.Time) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("empty session token")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode session token: %w", err)
	}

	s := &Session{
		Env:       env,
		Token:     token,
		Subject:   claims.Subject,
		CreatedAt: now,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without exp never expire locally.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists one session file per environment
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir. A leading ~ is expanded to the home directory.
func NewStore(dir string) (*Store, error) {
	if strings.HasPrefix(dir, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, strings.TrimPrefix(dir, "~"))
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) path(env string) string {
	return filepath.Join(s.dir, fmt.Sprintf("session-%s.json", env))
}

// Save writes the session with owner-only permissions
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, sessionDirPerms); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path(sess.Env), data, sessionFilePerms); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load returns the stored session for env, or ErrNoSession when it is missing or expired.
// An expired session file is removed.
func (s *Store) Load(env string) (*Session, error) {
	data, err := os.ReadFile(s.path(env))
	if os.IsNotExist(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	if sess.Token == "" || sess.Expired(s.now()) {
		if err := s.Delete(env); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Delete removes the session for env. Deleting a missing session is not an error.
func (s *Store) Delete(env string) error {
	if err := os.Remove(s.path(env)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
