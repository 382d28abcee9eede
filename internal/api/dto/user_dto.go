package dto

import "github.com/spec-kit/task-tracker/internal/domain"

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TasksDone int    `json:"tasks_done"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		TasksDone: user.TasksDone,
	}
}
