package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/api/dto"
	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/service"
	apperrors "github.com/spec-kit/task-tracker/pkg/util"
)

// TasksHandler exposes task CRUD for authenticated users.
type TasksHandler struct {
	tasks *service.TaskService
	users *service.UserService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService, userService *service.UserService) *TasksHandler {
	return &TasksHandler{tasks: taskService, users: userService}
}

// currentUser resolves the request principal to its account record.
func (h *TasksHandler) currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, _ := auth.PrincipalFromContext(c)
	return h.users.CurrentUser(c.Context(), principal)
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	task, err := h.tasks.Create(c.Context(), user, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListForUser(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponses(tasks)})
}

// Get handles GET /api/tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// Update handles PUT /api/tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	task, err := h.tasks.Update(c.Context(), user, c.Params("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// ToggleCompletion handles PUT /api/tasks/:id/toggle-completion.
func (h *TasksHandler) ToggleCompletion(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.ToggleCompletion(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// Delete handles DELETE /api/tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
