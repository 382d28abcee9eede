package domain

import "time"

// Role is the coarse permission tier attached to an identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for account holders.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	TasksDone    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
