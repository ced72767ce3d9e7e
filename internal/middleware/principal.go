package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/storeline/storeadmin/internal/auth"
	"github.com/storeline/storeadmin/internal/domain"
)

// Principal extracts the authenticated principal from request headers and
// stores it in the context. The header scheme (X-User-Id, X-Roles,
// X-Tenant-Id) stands in for the external authentication provider, which is
// expected to terminate real credentials upstream.
func Principal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromHeaders(r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHENTICATED", "message": "missing or invalid credentials"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func principalFromHeaders(r *http.Request) (domain.Principal, bool) {
	userID, err := uuid.Parse(r.Header.Get("X-User-Id"))
	if err != nil {
		return domain.Principal{}, false
	}
	tenantID, err := uuid.Parse(r.Header.Get("X-Tenant-Id"))
	if err != nil {
		return domain.Principal{}, false
	}

	var roles []domain.Role
	for _, raw := range strings.Split(r.Header.Get("X-Roles"), ",") {
		role := strings.TrimSpace(raw)
		if role != "" {
			roles = append(roles, domain.Role(role))
		}
	}
	if len(roles) == 0 {
		return domain.Principal{}, false
	}

	return domain.Principal{ID: userID, Roles: roles, TenantID: tenantID}, true
}
