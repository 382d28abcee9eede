package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-tracker/internal/domain"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) IncrementTasksDone(_ context.Context, id string) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.TasksDone++
	return nil
}

type fakeSessionRepo struct {
	tokens map[string]*domain.RefreshToken
	seq    int

	// findErr, when set, simulates a storage failure on lookups.
	findErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeSessionRepo) Create(_ context.Context, ownerID string, ttl time.Duration) (*domain.RefreshToken, error) {
	r.seq++
	token := &domain.RefreshToken{
		ID:        fmt.Sprintf("session-%d", r.seq),
		Token:     fmt.Sprintf("opaque-token-%d", r.seq),
		OwnerID:   ownerID,
		ExpiresAt: time.Now().Add(ttl),
		Revoked:   false,
		CreatedAt: time.Now(),
	}
	r.tokens[token.Token] = token
	return token, nil
}

func (r *fakeSessionRepo) FindActive(_ context.Context, tokenStr string) (*domain.RefreshToken, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	token, ok := r.tokens[tokenStr]
	if !ok || token.Revoked {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, tokenStr string) error {
	if token, ok := r.tokens[tokenStr]; ok && !token.Revoked {
		token.Revoked = true
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllForOwner(_ context.Context, ownerID string) error {
	for _, token := range r.tokens {
		if token.OwnerID == ownerID && !token.Revoked {
			token.Revoked = true
		}
	}
	return nil
}

func (r *fakeSessionRepo) activeCountForOwner(ownerID string) int {
	count := 0
	for _, token := range r.tokens {
		if token.OwnerID == ownerID && !token.Revoked {
			count++
		}
	}
	return count
}

type fakeTaskRepo struct {
	tasks map[string]*domain.Task
	seq   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.seq++
	task.ID = fmt.Sprintf("task-%d", r.seq)
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if task, ok := r.tasks[id]; ok {
		return task, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			out = append(out, *task)
		}
	}
	return out, nil
}
