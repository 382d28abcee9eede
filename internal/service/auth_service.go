package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/config"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/repository"
)

// TokenPair is the payload returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the login/refresh/logout triad. It is the
// only component that touches the refresh token store.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.RefreshTokenRepository
	tokenMgr   *auth.TokenManager
	limiter    *auth.LoginLimiter
	refreshTTL time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	LoginLimiter     *auth.LoginLimiter
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.RefreshTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMillis),
		limiter:    deps.LoginLimiter,
		refreshTTL: time.Duration(cfg.Auth.RefreshTokenTTLMillis) * time.Millisecond,
	}
}

// Login verifies credentials and opens a new session. Unknown usernames
// and wrong passwords both come back as ErrAuthenticationFailed so the
// caller cannot tell which field was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if err := s.limiter.Check(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.limiter.RecordFailure(ctx, username)
		return nil, auth.ErrAuthenticationFailed
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.limiter.RecordFailure(ctx, username)
		return nil, auth.ErrAuthenticationFailed
	}
	s.limiter.Reset(ctx, username)

	access, err := s.tokenMgr.Issue(user.Username, []domain.Role{user.Role})
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: session.Token}, nil
}

// Refresh exchanges an active session token for a fresh access token.
// The owner's role is re-read so a promotion or demotion takes effect
// here, not at next login. The session token itself is returned
// unchanged; there is no rotation on use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.sessions.FindActive(ctx, refreshToken)
	if err != nil {
		// Only a confirmed miss means the token is invalid; a storage
		// failure must not masquerade as one.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		// Self-heal: an expired session is retired on first sight.
		if err := s.sessions.Revoke(ctx, session.Token); err != nil {
			return nil, err
		}
		return nil, auth.ErrSessionExpired
	}

	owner, err := s.users.GetByID(ctx, session.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}

	access, err := s.tokenMgr.Issue(owner.Username, []domain.Role{owner.Role})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: session.Token}, nil
}

// Logout revokes the session. Already-revoked and unknown tokens are
// indistinguishable from success; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, refreshToken)
}

// TokenManager exposes the codec for the request authenticator.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
