package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/config"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/events"
	"github.com/spec-kit/task-tracker/internal/repository"
	apperrors "github.com/spec-kit/task-tracker/pkg/util"
)

// UserService manages account lifecycle: registration, role changes,
// deletion, and the admin listing.
type UserService struct {
	users      repository.UserRepository
	sessions   repository.RefreshTokenRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, users repository.UserRepository, sessions repository.RefreshTokenRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{
		users:      users,
		sessions:   sessions,
		dispatcher: dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates an account. Username and email must be unique; the
// first account ever registered becomes ADMIN.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already in use", map[string]any{"field": "email"})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already in use", map[string]any{"field": "username"})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.Username, events.UserRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	return user, nil
}

// Promote raises a user to ADMIN. Promoting an admin is an error.
func (s *UserService) Promote(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewConflict("user is already an admin", nil)
	}

	user.Role = domain.RoleAdmin
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserPromoted, user.Username, events.UserPromotedPayload{UserID: user.ID})
	return user, nil
}

// Delete removes a non-admin account. Sessions are revoked first, then
// the row is deleted; the two steps are explicit rather than left to
// cascading storage behavior.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	if user.Role == domain.RoleAdmin {
		return apperrors.NewForbidden("admins cannot be deleted")
	}

	if err := s.sessions.RevokeAllForOwner(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.publish(ctx, events.EventUserDeleted, user.Username, events.UserDeletedPayload{UserID: user.ID})
	return nil
}

// List returns all accounts for the admin listing.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// CurrentUser resolves the authenticated principal's subject to its
// account record.
func (s *UserService) CurrentUser(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByUsername(ctx, principal.Subject)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("unknown subject")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
