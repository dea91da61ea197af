package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoginLogout(t *testing.T) {
	b := festivalBackend()
	b.token = signedToken(t, "admin@example.com")
	store := newMemorySessionStore()

	sess, err := Login(context.Background(), b, store, zap.NewNop(), "dev", " admin@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", sess.Subject)
	assert.Equal(t, "dev", sess.Env)

	loaded, err := store.Load("dev")
	require.NoError(t, err)
	assert.Equal(t, b.token, loaded.Token)

	require.NoError(t, Logout(store, zap.NewNop(), "dev"))
	_, err = store.Load("dev")
	assert.Error(t, err)

	// logging out twice is fine
	require.NoError(t, Logout(store, zap.NewNop(), "dev"))
}

func TestLogin_Failures(t *testing.T) {
	b := festivalBackend()
	store := newMemorySessionStore()

	_, err := Login(context.Background(), b, store, zap.NewNop(), "dev", "admin@example.com", "")
	assert.Error(t, err)

	b.authErr = &apiclient.APIError{StatusCode: 401, Message: "bad credentials"}
	_, err = Login(context.Background(), b, store, zap.NewNop(), "dev", "admin@example.com", "wrong")
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	b.authErr = nil
	b.token = "not-a-jwt"
	_, err = Login(context.Background(), b, store, zap.NewNop(), "dev", "admin@example.com", "secret")
	assert.Error(t, err)
	assert.Empty(t, store.sessions)
}

func TestForgetOnUnauthorized(t *testing.T) {
	b := festivalBackend()
	b.token = signedToken(t, "admin@example.com")
	store := newMemorySessionStore()
	_, err := Login(context.Background(), b, store, zap.NewNop(), "dev", "admin@example.com", "secret")
	require.NoError(t, err)

	other := errors.New("network down")
	assert.Equal(t, other, ForgetOnUnauthorized(other, store, "dev", zap.NewNop()))
	assert.Nil(t, ForgetOnUnauthorized(nil, store, "dev", zap.NewNop()))
	assert.Equal(t, 0, store.deletes)

	rejected := fmt.Errorf("loading event: %w", &apiclient.APIError{StatusCode: 401, Message: "expired"})
	err = ForgetOnUnauthorized(rejected, store, "dev", zap.NewNop())
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.Contains(t, err.Error(), "run login again")
	assert.Equal(t, 1, store.deletes)
	assert.Empty(t, store.sessions)
}

func TestWhoami(t *testing.T) {
	b := festivalBackend()

	identity, err := Whoami(context.Background(), b, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, identity.SysAdmin)
	assert.Equal(t, []int64{1}, identity.LeaderOf)
	assert.Equal(t, []int64{1}, identity.ManagerOf)
	require.Len(t, identity.Orgs, 2)
	assert.True(t, identity.Orgs[0].Capabilities.CanManageApplications)
	assert.False(t, identity.Orgs[1].Capabilities.CanManageApplications)

	b.users[adminID].Role = model.GlobalRoleSysAdmin
	identity, err = Whoami(context.Background(), b, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, identity.SysAdmin)
	assert.Nil(t, identity.LeaderOf)

	b.currentUser = 999
	_, err = Whoami(context.Background(), b, zap.NewNop())
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}
