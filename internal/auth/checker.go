package auth

import (
	"github.com/google/uuid"

	"github.com/storeline/storeadmin/internal/domain"
)

// PermissionChecker decides allow/deny for one principal and one permission
// token against an injected, immutable matrix. It holds no mutable state and
// is safe to call concurrently without locks.
type PermissionChecker struct {
	matrix domain.PermissionMatrix
}

// NewPermissionChecker builds a checker over the given matrix.
func NewPermissionChecker(matrix domain.PermissionMatrix) *PermissionChecker {
	return &PermissionChecker{matrix: matrix}
}

// ValidateHas returns nil iff any of the principal's roles grants the token.
// The decision is binary; it must be evaluated before any mutating effect.
func (c *PermissionChecker) ValidateHas(principal domain.Principal, token domain.PermissionToken) error {
	for _, role := range principal.Roles {
		if c.matrix.Allows(role, token) {
			return nil
		}
	}
	return domain.NewForbiddenError()
}

// ValidateHasForTenant is ValidateHas plus tenant scoping: for tenant-scoped
// tokens the principal's tenant must match the target tenant. A mismatch is
// reported identically to a missing grant so cross-tenant existence is never
// disclosed.
func (c *PermissionChecker) ValidateHasForTenant(principal domain.Principal, token domain.PermissionToken, tenantID uuid.UUID) error {
	if err := c.ValidateHas(principal, token); err != nil {
		return err
	}
	if domain.TenantScoped(token) && principal.TenantID != tenantID {
		return domain.NewForbiddenError()
	}
	return nil
}
