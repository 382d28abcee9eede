package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/domain"
	apperrors "github.com/spec-kit/task-tracker/pkg/util"
)

// Rule binds a path pattern to an access tier. Patterns are exact
// matches or prefixes ending in "/**".
type Rule struct {
	Pattern string
	// Public routes need no identity at all.
	Public bool
	// Roles restricts the rule to the listed roles. Empty with
	// Public=false means any authenticated principal.
	Roles []domain.Role
}

// Policy is an ordered rule set evaluated first-match-wins against the
// request path. Paths matching no rule require authentication.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from ordered rules.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Enforce returns the authorization middleware. It runs after the
// authenticator and rejects requests whose principal does not satisfy
// the first matching rule.
func (p *Policy) Enforce() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rule := p.matchRule(c.Path())
		if rule != nil && rule.Public {
			return c.Next()
		}

		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if rule == nil || len(rule.Roles) == 0 {
			return c.Next()
		}

		for _, role := range rule.Roles {
			if principal.HasRole(role) {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

func (p *Policy) matchRule(path string) *Rule {
	for i := range p.rules {
		if matchPattern(p.rules[i].Pattern, path) {
			return &p.rules[i]
		}
	}
	return nil
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}
