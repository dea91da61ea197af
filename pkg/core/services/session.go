package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/access"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/session"
)

// AuthClient exchanges credentials for a bearer token
type AuthClient interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// IdentityClient resolves the caller behind the current token
type IdentityClient interface {
	Me(ctx context.Context) (*model.User, error)
}

// SessionStore persists sessions per environment
type SessionStore interface {
	Save(sess *session.Session) error
	Load(env string) (*session.Session, error)
	Delete(env string) error
}

// Login authenticates and persists the resulting session, replacing any previous one
func Login(ctx context.Context, client AuthClient, store SessionStore, logger *zap.Logger, env, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	logger.Debug("Authenticating", zap.String("email", email))
	token, err := client.Authenticate(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	sess, err := session.New(env, token, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := store.Save(sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("Logged in", zap.String("subject", sess.Subject), zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

// Logout destroys the persisted session. Logging out without a session is not an error.
func Logout(store SessionStore, logger *zap.Logger, env string) error {
	if err := store.Delete(env); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.Info("Logged out", zap.String("env", env))
	return nil
}

// OrgAccess is one membership together with what it allows
type OrgAccess struct {
	Membership   model.Membership
	Capabilities access.Capabilities
}

// Identity is the caller together with their derived capabilities per organization
type Identity struct {
	User      *model.User
	SysAdmin  bool
	Orgs      []OrgAccess
	LeaderOf  []int64 // nil for a system administrator, meaning every organization
	ManagerOf []int64
}

// Whoami resolves the caller and derives capabilities for each of their memberships
func Whoami(ctx context.Context, client IdentityClient, logger *zap.Logger) (*Identity, error) {
	logger.Debug("Fetching current user")
	me, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}

	identity := &Identity{
		User:      me,
		SysAdmin:  me.Role.IsSysAdmin(),
		LeaderOf:  access.LeaderOrgIDs(me),
		ManagerOf: access.ManagedOrgIDs(me),
	}
	for _, m := range me.Memberships {
		identity.Orgs = append(identity.Orgs, OrgAccess{
			Membership:   m,
			Capabilities: access.ForUser(me, m.OrgID),
		})
	}

	logger.Debug("Resolved identity",
		zap.Int64("user_id", me.ID),
		zap.Bool("sys_admin", identity.SysAdmin),
		zap.Int("memberships", len(me.Memberships)))
	return identity, nil
}
