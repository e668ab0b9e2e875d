package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/simplesdental/product-auth/middleware/jwtware"
)

// projectionIdentity exposes an IdentityProjection through the jwtware
// Identity interface.
type projectionIdentity struct {
	projection *IdentityProjection
}

func (p projectionIdentity) ID() string {
	return p.projection.ID.String()
}

func (p projectionIdentity) Email() string {
	return p.projection.Email
}

func (p projectionIdentity) Role() string {
	return string(p.projection.Role)
}

func (p projectionIdentity) Projection() *IdentityProjection {
	return p.projection
}

type identityResolver struct {
	auth Authenticator
}

// Resolve satisfies jwtware.IdentityResolver. A subject that no longer
// exists resolves to (nil, nil) so the pipeline downgrades to anonymous
// instead of failing the request.
func (r identityResolver) Resolve(ctx context.Context, identityKey string) (jwtware.Identity, error) {
	projection, err := r.auth.GetIdentity(ctx, identityKey)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return projectionIdentity{projection: projection}, nil
}

// NewIdentityResolver adapts an Authenticator into the middleware's
// resolver contract.
func NewIdentityResolver(auth Authenticator) jwtware.IdentityResolver {
	return identityResolver{auth: auth}
}

// tokenValidator exposes a TokenService through the jwtware TokenValidator
// interface; the claims interfaces are method-compatible but Go needs the
// return type restated.
type tokenValidator struct {
	service TokenService
}

func (v tokenValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ContextEnricherAdapter stores claims and the resolved identity in the
// standard context for downstream authorization checks.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims, identity jwtware.Identity) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		c = WithClaimsContext(c, authClaims)
	}

	if identity == nil {
		return c
	}

	if provider, ok := identity.(interface{ Projection() *IdentityProjection }); ok {
		return WithIdentityContext(c, provider.Projection())
	}

	// Externally resolved identity; rebuild the projection from the
	// interface view.
	id, err := uuid.Parse(identity.ID())
	if err != nil {
		id = uuid.Nil
	}
	return WithIdentityContext(c, &IdentityProjection{
		ID:    id,
		Email: identity.Email(),
		Role:  UserRole(identity.Role()),
	})
}

// RequestAuthentication builds the per request authentication pipeline for
// an authenticator: extract bearer token, validate, resolve the identity
// through the shared cache, and populate the request context. Failures
// collapse to anonymous; pair with RequireAuthenticated on protected routes.
func RequestAuthentication(auther *Auther, cfg Config) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		TokenValidator:   tokenValidator{service: auther.TokenService()},
		IdentityResolver: NewIdentityResolver(auther),
		ContextKey:       cfg.GetContextKey(),
		TokenLookup:      cfg.GetTokenLookup(),
		AuthScheme:       cfg.GetAuthScheme(),
		ContextEnricher:  ContextEnricherAdapter,
		Logger:           auther.logger,
	})
}

// RequireAuthenticated rejects anonymous callers; optional role constraints
// run against the resolved projection role.
func RequireAuthenticated(cfg Config, opts ...func(*jwtware.RequireConfig)) router.MiddlewareFunc {
	rc := jwtware.RequireConfig{
		ContextKey:  cfg.GetContextKey(),
		RoleAtLeast: IsAtLeast,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&rc)
		}
	}

	return jwtware.Require(rc)
}

// WithRequiredRole requires this exact role on protected routes.
func WithRequiredRole(role UserRole) func(*jwtware.RequireConfig) {
	return func(rc *jwtware.RequireConfig) {
		rc.Role = string(role)
	}
}

// WithMinimumRole requires at least this role level on protected routes.
func WithMinimumRole(role UserRole) func(*jwtware.RequireConfig) {
	return func(rc *jwtware.RequireConfig) {
		rc.MinimumRole = string(role)
	}
}
