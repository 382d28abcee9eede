package domain

import "time"

// Task is the aggregate for tracked to-do items.
type Task struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	Active        bool
	CountedAsDone bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
