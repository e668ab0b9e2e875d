package auth

import (
	"context"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the resolved identity projection in the given
// context. Each request gets its own context value; nothing is shared
// across requests.
func WithIdentityContext(r context.Context, projection *IdentityProjection) context.Context {
	return context.WithValue(r, identityCtxKey, projection)
}

// IdentityFromContext finds the identity projection from the context. The
// second return is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*IdentityProjection, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*IdentityProjection)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// IsAuthenticated reports whether the context carries a resolved identity.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := IdentityFromContext(ctx)
	return ok
}

// Can is the capability check for the resolved identity. Authorization runs
// against the projection's role, refreshed through the cache/store on every
// request, never against the token's embedded role claim.
func Can(ctx context.Context, permission string) bool {
	projection, ok := IdentityFromContext(ctx)
	if !ok {
		return false
	}

	switch permission {
	case "read":
		return CanRead(projection.Role)
	case "write":
		return CanWrite(projection.Role)
	case "delete":
		return CanDelete(projection.Role)
	case "manage_users":
		return CanManageUsers(projection.Role)
	default:
		return false
	}
}
