package events

import (
	"time"

	"github.com/spec-kit/task-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserPromoted   EventType = "user_promoted"
	EventUserDeleted    EventType = "user_deleted"
	EventTaskCompleted  EventType = "task_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// UserPromotedPayload payload.
type UserPromotedPayload struct {
	UserID string `json:"user_id"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	TaskID  string `json:"task_id"`
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}
