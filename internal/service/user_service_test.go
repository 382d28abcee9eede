package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/service"
	apperrors "github.com/spec-kit/task-tracker/pkg/util"
)

type userFixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	svc      *service.UserService
}

func newUserFixture() *userFixture {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	return &userFixture{
		users:    users,
		sessions: sessions,
		svc:      service.NewUserService(testConfig(), users, sessions, nil),
	}
}

func domainErrCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestRegisterBootstrapsFirstAdmin(t *testing.T) {
	f := newUserFixture()

	first, err := f.svc.Register(context.Background(), "root", "root@example.com", "P@ssw0rd123!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "P@ssw0rd123!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, second.Role)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "P@ssw0rd123!")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "alice", "other@example.com", "P@ssw0rd123!")
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))

	_, err = f.svc.Register(context.Background(), "bob", "alice@example.com", "P@ssw0rd123!")
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))
}

func TestPromote(t *testing.T) {
	f := newUserFixture()

	admin, err := f.svc.Register(context.Background(), "root", "root@example.com", "P@ssw0rd123!")
	require.NoError(t, err)
	user, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "P@ssw0rd123!")
	require.NoError(t, err)

	promoted, err := f.svc.Promote(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	_, err = f.svc.Promote(context.Background(), admin.ID)
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))

	_, err = f.svc.Promote(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}

func TestDeleteRevokesAllSessionsFirst(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Register(context.Background(), "root", "root@example.com", "P@ssw0rd123!")
	require.NoError(t, err)
	user, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "P@ssw0rd123!")
	require.NoError(t, err)

	_, err = f.sessions.Create(context.Background(), user.ID, 0)
	require.NoError(t, err)
	_, err = f.sessions.Create(context.Background(), user.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 2, f.sessions.activeCountForOwner(user.ID))

	require.NoError(t, f.svc.Delete(context.Background(), user.ID))
	assert.Equal(t, 0, f.sessions.activeCountForOwner(user.ID))

	_, err = f.users.GetByID(context.Background(), user.ID)
	assert.Error(t, err)
}

func TestDeleteRefusesAdmins(t *testing.T) {
	f := newUserFixture()

	admin, err := f.svc.Register(context.Background(), "root", "root@example.com", "P@ssw0rd123!")
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), admin.ID)
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
}

func TestCurrentUser(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "P@ssw0rd123!")
	require.NoError(t, err)

	found, err := f.svc.CurrentUser(context.Background(), &auth.Principal{Subject: "alice"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = f.svc.CurrentUser(context.Background(), &auth.Principal{Subject: "ghost"})
	assert.Equal(t, "UNAUTHORIZED", domainErrCode(t, err))

	_, err = f.svc.CurrentUser(context.Background(), nil)
	assert.Equal(t, "UNAUTHORIZED", domainErrCode(t, err))
}
