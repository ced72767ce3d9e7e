package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PermissionToken is an opaque string naming one guarded operation, e.g.
// "sectionDestroy". Every mutating lifecycle operation maps to exactly one
// token, checked before any side effect.
type PermissionToken string

// Verb enumerates the guarded operations each entity type exposes.
type Verb string

const (
	VerbRead    Verb = "Read"
	VerbCreate  Verb = "Create"
	VerbUpdate  Verb = "Update"
	VerbDestroy Verb = "Destroy"
)

// TokenFor derives the permission token guarding one verb on one entity type.
func TokenFor(entityType string, verb Verb) PermissionToken {
	return PermissionToken(entityType + string(verb))
}

// PermissionMatrix is the immutable role → token-set mapping. Construct once
// at startup with NewPermissionMatrix and inject it wherever a checker is
// needed; it is never mutated afterwards and safe for concurrent reads.
type PermissionMatrix struct {
	grants map[Role]map[PermissionToken]struct{}
}

// NewPermissionMatrix builds a matrix from per-role token lists, copying the
// input so later mutation of the argument cannot leak into the matrix.
func NewPermissionMatrix(grants map[Role][]PermissionToken) (PermissionMatrix, error) {
	copied := make(map[Role]map[PermissionToken]struct{}, len(grants))
	for role, tokens := range grants {
		if role == "" {
			return PermissionMatrix{}, fmt.Errorf("permission matrix: empty role name")
		}
		set := make(map[PermissionToken]struct{}, len(tokens))
		for _, token := range tokens {
			set[token] = struct{}{}
		}
		copied[role] = set
	}
	return PermissionMatrix{grants: copied}, nil
}

// Allows reports whether the role grants the token.
func (m PermissionMatrix) Allows(role Role, token PermissionToken) bool {
	set, ok := m.grants[role]
	if !ok {
		return false
	}
	_, ok = set[token]
	return ok
}

// Roles returns the roles present in the matrix, sorted for determinism.
func (m PermissionMatrix) Roles() []Role {
	roles := make([]Role, 0, len(m.grants))
	for role := range m.grants {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// TokensFor returns the tokens granted to a role, sorted for determinism.
func (m PermissionMatrix) TokensFor(role Role) []PermissionToken {
	set, ok := m.grants[role]
	if !ok {
		return nil
	}
	tokens := make([]PermissionToken, 0, len(set))
	for token := range set {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// DefaultPermissionMatrix grants per-entity-type tokens across the registry:
// admins get every verb, managers everything except destroy, viewers read
// only.
func DefaultPermissionMatrix(registry *Registry) PermissionMatrix {
	grants := map[Role][]PermissionToken{
		RoleAdmin:   nil,
		RoleManager: nil,
		RoleViewer:  nil,
	}
	for _, entityType := range registry.Types() {
		grants[RoleAdmin] = append(grants[RoleAdmin],
			TokenFor(entityType, VerbRead),
			TokenFor(entityType, VerbCreate),
			TokenFor(entityType, VerbUpdate),
			TokenFor(entityType, VerbDestroy),
		)
		grants[RoleManager] = append(grants[RoleManager],
			TokenFor(entityType, VerbRead),
			TokenFor(entityType, VerbCreate),
			TokenFor(entityType, VerbUpdate),
		)
		grants[RoleViewer] = append(grants[RoleViewer],
			TokenFor(entityType, VerbRead),
		)
	}
	matrix, err := NewPermissionMatrix(grants)
	if err != nil {
		// Static construction; role names above are never empty.
		panic(err)
	}
	return matrix
}

// TenantScoped reports whether a token's operation is bound to the acting
// principal's tenant. All entity verbs are tenant-scoped.
func TenantScoped(token PermissionToken) bool {
	return !strings.HasPrefix(string(token), "platform")
}
