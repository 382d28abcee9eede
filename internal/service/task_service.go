package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/events"
	"github.com/spec-kit/task-tracker/internal/repository"
	apperrors "github.com/spec-kit/task-tracker/pkg/util"
)

// TaskInput carries the writable task fields.
type TaskInput struct {
	Title       string
	Description string
	Active      bool
}

// TaskService implements task CRUD on behalf of an authenticated user.
type TaskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, users: users, dispatcher: dispatcher}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, owner *domain.User, input TaskInput) (*domain.Task, error) {
	task := &domain.Task{
		OwnerID:     owner.ID,
		Title:       input.Title,
		Description: input.Description,
		Active:      true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListForUser returns the caller's tasks.
func (s *TaskService) ListForUser(ctx context.Context, owner *domain.User) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, owner.ID)
}

// Get returns a task the caller may access.
func (s *TaskService) Get(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	return s.getWithAccessCheck(ctx, caller, id)
}

// Update rewrites the task's writable fields.
func (s *TaskService) Update(ctx context.Context, caller *domain.User, id string, input TaskInput) (*domain.Task, error) {
	task, err := s.getWithAccessCheck(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Active = input.Active

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task.
func (s *TaskService) Delete(ctx context.Context, caller *domain.User, id string) error {
	task, err := s.getWithAccessCheck(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, task.ID)
}

// ToggleCompletion flips the task between active and done. The first
// time a task goes done its owner's tasks_done counter increments;
// reopening and completing again does not count twice.
func (s *TaskService) ToggleCompletion(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	task, err := s.getWithAccessCheck(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	wasActive := task.Active
	task.Active = !task.Active

	if wasActive && !task.CountedAsDone {
		if err := s.users.IncrementTasksDone(ctx, task.OwnerID); err != nil {
			return nil, err
		}
		task.CountedAsDone = true
		s.publish(ctx, events.EventTaskCompleted, caller.Username, events.TaskCompletedPayload{
			TaskID:  task.ID,
			OwnerID: task.OwnerID,
			Title:   task.Title,
		})
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// getWithAccessCheck loads a task and enforces owner-or-admin access.
func (s *TaskService) getWithAccessCheck(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, err
	}
	if task.OwnerID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("not allowed to access this task")
	}
	return task, nil
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
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
