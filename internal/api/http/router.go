package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/api/http/handlers"
	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Tasks         *handlers.TasksHandler
	Admin         *handlers.AdminHandler
	Authenticator *auth.Authenticator
}

// AccessPolicy is the ordered route -> required-role rule set. The
// authenticator only attaches identity; this policy is what rejects.
func AccessPolicy() *auth.Policy {
	return auth.NewPolicy(
		auth.Rule{Pattern: "/health/**", Public: true},
		auth.Rule{Pattern: "/api/auth/login", Public: true},
		auth.Rule{Pattern: "/api/auth/register", Public: true},
		auth.Rule{Pattern: "/api/auth/refresh", Public: true},
		auth.Rule{Pattern: "/api/tasks/**", Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}},
		auth.Rule{Pattern: "/api/admin/**", Roles: []domain.Role{domain.RoleAdmin}},
	)
}

// RegisterRoutes wires HTTP routes behind the authenticator and policy.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authenticator.Handle)
	app.Use(AccessPolicy().Enforce())

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	tasks := app.Group("/api/tasks")
	tasks.Post("", cfg.Tasks.Create)
	tasks.Get("", cfg.Tasks.List)
	tasks.Get("/:id", cfg.Tasks.Get)
	tasks.Put("/:id", cfg.Tasks.Update)
	tasks.Put("/:id/toggle-completion", cfg.Tasks.ToggleCompletion)
	tasks.Delete("/:id", cfg.Tasks.Delete)

	admin := app.Group("/api/admin/users")
	admin.Get("", cfg.Admin.ListUsers)
	admin.Post("/:id/promote", cfg.Admin.PromoteUser)
	admin.Delete("/:id", cfg.Admin.DeleteUser)
}
