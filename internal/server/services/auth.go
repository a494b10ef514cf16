// Package services contains server-side business logic. This file implements
// AuthService, the sole authority on accounts and login sessions: it handles
// registration, credential checks, session issuance, validation and logout.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/identity"
	"github.com/finsight-app/finsight/internal/server/models"
	"github.com/finsight-app/finsight/internal/server/repositories/repomanager"
	"github.com/finsight-app/finsight/internal/server/repositories/sessions"
	"github.com/finsight-app/finsight/internal/server/repositories/users"
)

// Registration is the outcome of a successful Register call: the stored
// user, a freshly issued session and a user-facing status message carrying
// the new client identifier.
type Registration struct {
	User      *models.User
	SessionID string
	Message   string
}

// AuthService provides account and session operations. Bad input is never
// fatal: validation and authentication failures come back as sentinel
// errors from internal/common, matched with errors.Is. Only persistence
// faults surface as other errors.
type AuthService struct {
	users      users.Repository
	sessions   sessions.Repository
	sessionTTL time.Duration
	logger     logging.Logger

	// now is a seam so expiry behavior can be tested against a fixed clock.
	now func() time.Time
}

// NewAuthService constructs an AuthService over the configured repositories.
func NewAuthService(rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		users:      rm.Users(),
		sessions:   rm.Sessions(),
		sessionTTL: cfg.SessionTTL,
		logger:     logger.With("module", "auth"),
		now:        time.Now,
	}
}

// Register creates a new account and immediately issues a session for it.
//
// Validation order: taken username, then empty username/password, then an
// unknown role; each failure maps to a fixed user-facing sentinel error.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*Registration, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrorUsernameExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if username == "" || password == "" {
		return nil, common.ErrorCredentialsRequired
	}

	if !models.ValidRole(role) {
		return nil, common.ErrorInvalidRole
	}

	now := s.now()
	user := &models.User{
		Username:     username,
		PasswordHash: identity.HashPassword(password),
		Role:         role,
		FullName:     identity.DisplayName(username),
		ClientID:     identity.ClientID(username, role, now),
		CreatedAt:    now,
		LastLogin:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorUsernameExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	sessionID, err := s.CreateSession(ctx, username)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "username", username, "role", role, "client_id", user.ClientID)

	return &Registration{
		User:      user,
		SessionID: sessionID,
		Message:   fmt.Sprintf("User registered successfully! Client ID: %s", user.ClientID),
	}, nil
}

// Authenticate verifies the username/password pair. Unknown usernames and
// wrong passwords are deliberately indistinguishable: both return
// common.ErrorUnauthorized with no record. On success the user's last-login
// timestamp is refreshed and persisted before the record is returned.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	candidate := identity.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(candidate)) != 1 {
		return nil, common.ErrorUnauthorized
	}

	user.LastLogin = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating last login: %w", err)
	}

	return user, nil
}

// CreateSession issues a fresh session token for username, expiring after
// the configured TTL. The username is not checked for existence, so a
// caller passing an unknown name gets an orphan session; both login paths
// only call this after the user record is known to exist.
func (s *AuthService) CreateSession(ctx context.Context, username string) (string, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	return session.ID, nil
}

// ValidateSession resolves a token to its owning username. A session is
// still valid at the exact expiry instant and invalid strictly after it;
// an expired record is deleted from the store the first time validation
// notices it. Unknown and expired tokens both yield
// common.ErrorSessionInvalid.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorSessionInvalid
		}
		return "", err
	}

	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Warn(ctx, "failed to evict expired session", "error", err)
		}
		return "", common.ErrorSessionInvalid
	}

	return session.Username, nil
}

// Logout removes the session. Logging out an unknown or already removed
// token is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// GetUserInfo is a plain lookup with no side effects. Unknown usernames
// return common.ErrorNotFound.
func (s *AuthService) GetUserInfo(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}
