package domain

import "time"

// RefreshToken is a persisted, revocable session token. Records are
// never deleted, only flagged revoked.
type RefreshToken struct {
	ID        string
	Token     string
	OwnerID   string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Expired reports whether the token's absolute expiry has passed.
// Revocation is tracked separately from expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
