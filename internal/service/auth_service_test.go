package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/config"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/service"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMillis:  60_000,
			RefreshTokenTTLMillis: 3_600_000,
			BcryptCost:            4,
		},
	}
}

type authFixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	svc      *service.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := service.NewAuthService(testConfig(), service.AuthDependencies{
		UserRepo:         users,
		RefreshTokenRepo: sessions,
	})
	return &authFixture{users: users, sessions: sessions, svc: svc}
}

func (f *authFixture) seedUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: hash, Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	identity, ok := f.svc.TokenManager().Verify(pair.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Subject)
	assert.Equal(t, []domain.Role{domain.RoleUser}, identity.Roles)
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	_, unknownErr := f.svc.Login(context.Background(), "mallory", "P@ssw0rd123!")
	_, wrongPassErr := f.svc.Login(context.Background(), "alice", "wrong")

	assert.ErrorIs(t, unknownErr, auth.ErrAuthenticationFailed)
	assert.ErrorIs(t, wrongPassErr, auth.ErrAuthenticationFailed)
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestRefreshPropagatesStorageFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)

	// A store outage is not an invalid token.
	f.sessions.findErr = errors.New("connection refused")

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidSession)
	assert.ErrorIs(t, err, f.sessions.findErr)
}

func TestRefreshReturnsSameSessionToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshPicksUpCurrentRole(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)

	// Promotion lands between login and refresh.
	user.Role = domain.RoleAdmin

	refreshed, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	identity, ok := f.svc.TokenManager().Verify(refreshed.AccessToken)
	require.True(t, ok)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, identity.Roles)
}

func TestRefreshExpiredTokenRevokesIt(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)

	// Age the session past its expiry without revoking it.
	f.sessions.tokens[pair.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.True(t, f.sessions.tokens[pair.RefreshToken].Revoked)

	// Now revoked, so the second attempt reports an invalid session,
	// not an expired one.
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	pair, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken))
	require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken))
	require.NoError(t, f.svc.Logout(context.Background(), "never-existed"))

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "alice", "P@ssw0rd123!", domain.RoleUser)

	first, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "alice", "P@ssw0rd123!")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	require.NoError(t, f.svc.Logout(context.Background(), first.RefreshToken))

	_, err = f.svc.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.sessions.activeCountForOwner(user.ID))
}
