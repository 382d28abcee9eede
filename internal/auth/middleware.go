package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/domain"
)

const principalKey = "auth_principal"

// Principal is the request-scoped identity attached by the authenticator.
type Principal struct {
	Subject string
	Roles   []domain.Role
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role domain.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticator extracts and verifies bearer tokens. It never rejects
// a request itself: a missing, malformed, or unverifiable token leaves
// the request unauthenticated and denial is the policy's job.
type Authenticator struct {
	tokens *TokenManager
}

// NewAuthenticator constructs the per-request authenticator.
func NewAuthenticator(tokens *TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Handle populates the request principal when a valid bearer token is
// presented and always continues the chain.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	identity, ok := a.tokens.Verify(parts[1])
	if !ok {
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Subject: identity.Subject, Roles: identity.Roles})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
