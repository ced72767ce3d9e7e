package auth

import (
	"context"

	"github.com/storeline/storeadmin/internal/domain"
)

// principalKey is an unexported key type to prevent external forgery.
type principalKey struct{}

// ContextWithPrincipal returns a new context that carries the authenticated principal.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal from the context, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
