package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a named grant bundle assigned to a principal.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// Principal is the authenticated actor behind a request: identity, roles and
// tenant scope. Supplied by the authentication layer; the core only reads it.
type Principal struct {
	ID       uuid.UUID
	Roles    []Role
	TenantID uuid.UUID
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// String returns a compact representation for audit logs.
func (p Principal) String() string {
	return fmt.Sprintf("user:%s tenant:%s", p.ID, p.TenantID)
}
