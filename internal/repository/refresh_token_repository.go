package repository

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-tracker/internal/domain"
)

// RefreshTokenRepository manages persisted session tokens. Tokens are
// never deleted; revocation flips a flag so the record stays auditable.
type RefreshTokenRepository interface {
	// Create persists a new random token for the owner, expiring after ttl.
	Create(ctx context.Context, ownerID string, ttl time.Duration) (*domain.RefreshToken, error)
	// FindActive looks up a non-revoked token by value. Expiry is not
	// checked here; detecting it triggers a revoke, which is the
	// orchestrator's call to make.
	FindActive(ctx context.Context, token string) (*domain.RefreshToken, error)
	// Revoke marks the token revoked. Unknown or already-revoked tokens
	// are a no-op, not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeAllForOwner atomically revokes every active token of an owner.
	RevokeAllForOwner(ctx context.Context, ownerID string) error
}

type refreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository constructs repository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

// generateTokenValue returns a 256-bit random opaque string.
func generateTokenValue() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (r *refreshTokenRepository) Create(ctx context.Context, ownerID string, ttl time.Duration) (*domain.RefreshToken, error) {
	value, err := generateTokenValue()
	if err != nil {
		return nil, err
	}

	token := &domain.RefreshToken{
		Token:     value,
		OwnerID:   ownerID,
		ExpiresAt: time.Now().Add(ttl),
		Revoked:   false,
	}

	const query = `
        INSERT INTO refresh_tokens (token, owner_id, expires_at, revoked)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		token.Token,
		token.OwnerID,
		token.ExpiresAt,
		token.Revoked,
	).Scan(&token.ID, &token.CreatedAt); err != nil {
		return nil, err
	}
	return token, nil
}

func (r *refreshTokenRepository) FindActive(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	const query = `
        SELECT id, token, owner_id, expires_at, revoked, created_at
        FROM refresh_tokens WHERE token=$1 AND revoked=false`
	var token domain.RefreshToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.Token,
		&token.OwnerID,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenStr string) error {
	// Conditional single-row update; Postgres serializes concurrent
	// revoke/refresh on the same row.
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked=true WHERE token=$1 AND revoked=false`, tokenStr)
	return err
}

func (r *refreshTokenRepository) RevokeAllForOwner(ctx context.Context, ownerID string) error {
	// One statement flips the whole active set; no partial result can
	// survive an interrupt.
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked=true WHERE owner_id=$1 AND revoked=false`, ownerID)
	return err
}
