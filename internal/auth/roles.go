package auth

import (
	"strings"

	"github.com/spec-kit/task-tracker/internal/domain"
)

// rolePrefix is the wire-format prefix carried inside access tokens.
// Domain code only ever sees the closed domain.Role set.
const rolePrefix = "ROLE_"

// EncodeRoles converts domain roles to their prefixed claim strings.
func EncodeRoles(roles []domain.Role) []string {
	encoded := make([]string, 0, len(roles))
	for _, role := range roles {
		encoded = append(encoded, rolePrefix+string(role))
	}
	return encoded
}

// DecodeRoles converts claim strings back to domain roles, dropping
// anything outside the closed set.
func DecodeRoles(claims []string) []domain.Role {
	roles := make([]domain.Role, 0, len(claims))
	for _, claim := range claims {
		role := domain.Role(strings.TrimPrefix(claim, rolePrefix))
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles
}
