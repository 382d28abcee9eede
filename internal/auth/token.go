package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/task-tracker/internal/domain"
)

// Claims is the access token payload. Timestamps are epoch milliseconds.
type Claims struct {
	Subject   string   `json:"sub"`
	Roles     []string `json:"roles"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

// GetExpirationTime implements jwt.Claims over millisecond timestamps.
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.ExpiresAt)), nil
}

func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAt)), nil
}

func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c *Claims) GetIssuer() (string, error) { return "", nil }

func (c *Claims) GetSubject() (string, error) { return c.Subject, nil }

func (c *Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Identity is the verified outcome of an access token check.
type Identity struct {
	Subject string
	Roles   []domain.Role
}

// TokenManager issues and verifies HMAC-SHA256 access tokens. It is
// stateless and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a manager with the shared signing secret and
// access TTL in milliseconds.
func NewTokenManager(secret string, ttlMillis int64) *TokenManager {
	if ttlMillis <= 0 {
		ttlMillis = 15 * 60 * 1000
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMillis) * time.Millisecond}
}

// Issue signs a token asserting the subject and roles until now+TTL.
func (tm *TokenManager) Issue(subject string, roles []domain.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject:   subject,
		Roles:     EncodeRoles(roles),
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(tm.ttl).UnixMilli(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify checks signature and expiry. Any failure, whether a bad
// signature, malformed structure, or elapsed expiry, yields ok=false;
// the caller decides how to treat an unauthenticated request.
func (tm *TokenManager) Verify(tokenStr string) (*Identity, bool) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, false
	}
	return &Identity{Subject: claims.Subject, Roles: DecodeRoles(claims.Roles)}, true
}
