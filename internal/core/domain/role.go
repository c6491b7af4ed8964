package domain

import (
	"fmt"
	"strings"
)

// Role is the access-level tag attached to a user.
type Role string

const (
	RoleEngineer   Role = "Engineer"
	RoleApprover   Role = "Approver"
	RoleOperations Role = "Operations"
	RoleAdmin      Role = "Admin"
)

// DefaultRole is assumed wherever a role is absent.
const DefaultRole = RoleEngineer

// Roles lists the closed role set in display order.
var Roles = []Role{RoleEngineer, RoleApprover, RoleOperations, RoleAdmin}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEngineer, RoleApprover, RoleOperations, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole matches s case-insensitively against the role set.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// ResolveRole returns the first valid role among candidates, or DefaultRole.
func ResolveRole(candidates ...Role) Role {
	for _, r := range candidates {
		if r.Valid() {
			return r
		}
	}
	return DefaultRole
}
