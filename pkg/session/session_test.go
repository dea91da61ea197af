package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject}
	if !expires.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expires)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNew_ReadsClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(2 * time.Hour)

	sess, err := New("dev", signedToken(t, "anna@example.com", expires), now)
	require.NoError(t, err)
	assert.Equal(t, "dev", sess.Env)
	assert.Equal(t, "anna@example.com", sess.Subject)
	assert.True(t, sess.ExpiresAt.Equal(expires))
	assert.False(t, sess.Expired(now))
	assert.True(t, sess.Expired(expires))
}

func TestNew_RejectsGarbage(t *testing.T) {
	_, err := New("dev", "", time.Now())
	assert.Error(t, err)

	_, err = New("dev", "not-a-jwt", time.Now())
	assert.Error(t, err)
}

func TestStore_SaveLoadDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := NewStore(dir)
	require.NoError(t, err)

	now := time.Now()
	sess, err := New("dev", signedToken(t, "anna@example.com", now.Add(time.Hour)), now)
	require.NoError(t, err)
	require.NoError(t, store.Save(sess))

	info, err := os.Stat(filepath.Join(dir, "session-dev.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load("dev")
	require.NoError(t, err)
	assert.Equal(t, sess.Token, loaded.Token)
	assert.Equal(t, "anna@example.com", loaded.Subject)

	_, err = store.Load("prod")
	assert.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, store.Delete("dev"))
	require.NoError(t, store.Delete("dev"))
	_, err = store.Load("dev")
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestStore_ExpiredSessionIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sess, err := New("dev", signedToken(t, "anna@example.com", issued.Add(time.Hour)), issued)
	require.NoError(t, err)
	require.NoError(t, store.Save(sess))

	store.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = store.Load("dev")
	assert.True(t, errors.Is(err, ErrNoSession))

	_, statErr := os.Stat(filepath.Join(dir, "session-dev.json"))
	assert.True(t, os.IsNotExist(statErr), "expired session file should be removed")
}
