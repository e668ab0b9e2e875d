package jwtware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simplesdental/product-auth/middleware/jwtware"
)

// stubClaims is a minimal AuthClaims for driving the pipeline
type stubClaims struct {
	subject string
	roles   []string
}

func (s stubClaims) Subject() string { return s.subject }
func (s stubClaims) UserID() string  { return s.subject }
func (s stubClaims) Roles() []string { return s.roles }
func (s stubClaims) HasRole(role string) bool {
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}
	return false
}
func (s stubClaims) IsAtLeast(minRole string) bool { return s.HasRole(minRole) }

// stubIdentity is a minimal Identity
type stubIdentity struct {
	id    string
	email string
	role  string
}

func (s stubIdentity) ID() string    { return s.id }
func (s stubIdentity) Email() string { return s.email }
func (s stubIdentity) Role() string  { return s.role }

// MockValidator implements jwtware.TokenValidator
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(jwtware.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockResolver implements jwtware.IdentityResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, identityKey string) (jwtware.Identity, error) {
	args := m.Called(ctx, identityKey)
	if identity, ok := args.Get(0).(jwtware.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func newPipelineContext(authorization string) *router.MockContext {
	ctx := router.NewMockContext()
	if authorization != "" {
		ctx.HeadersM[router.HeaderAuthorization] = authorization
	}
	ctx.On("GetString", router.HeaderAuthorization, "").Return(authorization).Maybe()
	ctx.On("Context").Return(context.Background()).Maybe()
	ctx.On("SetContext", mock.Anything).Maybe()
	return ctx
}

func runPipeline(t *testing.T, cfg jwtware.Config, ctx router.Context) error {
	t.Helper()
	handler := jwtware.New(cfg)(func(c router.Context) error {
		return c.Next()
	})
	return handler(ctx)
}

func TestPipelineAuthenticatedRequest(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	claims := stubClaims{subject: "user@example.com", roles: []string{"USER"}}
	identity := stubIdentity{id: "u-1", email: "user@example.com", role: "USER"}

	validator.On("Validate", "valid.jwt.token").Return(claims, nil).Once()
	resolver.On("Resolve", mock.Anything, "user@example.com").Return(identity, nil).Once()

	var enriched bool
	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
		ContextEnricher: func(c context.Context, claims jwtware.AuthClaims, identity jwtware.Identity) context.Context {
			enriched = true
			return c
		},
	}

	ctx := newPipelineContext("Bearer valid.jwt.token")
	ctx.On("Locals", "identity", identity).Return(nil).Once()

	err := runPipeline(t, cfg, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled, "expected the request to continue")
	require.True(t, enriched, "expected the context enricher to run")

	validator.AssertExpectations(t)
	resolver.AssertExpectations(t)
	ctx.AssertExpectations(t)
}

func TestPipelineNoCredentialIsAnonymous(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
	}

	ctx := newPipelineContext("")

	err := runPipeline(t, cfg, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled, "anonymous request must continue")

	validator.AssertNotCalled(t, "Validate", mock.Anything)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestPipelineWrongSchemeIsAnonymous(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
	}

	// a non Bearer scheme is the same as no credential at all
	ctx := newPipelineContext("Token abc")

	err := runPipeline(t, cfg, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled, "wrong scheme must continue anonymously")

	validator.AssertNotCalled(t, "Validate", mock.Anything)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestPipelineInvalidTokenIsAnonymous(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	validator.On("Validate", "bad.jwt.token").
		Return(nil, errors.New("token signature is invalid")).Once()

	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
	}

	ctx := newPipelineContext("Bearer bad.jwt.token")

	err := runPipeline(t, cfg, ctx)
	require.NoError(t, err, "a bad token must not surface an error to the client")
	require.True(t, ctx.NextCalled)

	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	validator.AssertExpectations(t)
}

func TestPipelineUnknownSubjectIsAnonymous(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	claims := stubClaims{subject: "ghost@example.com"}
	validator.On("Validate", "valid.jwt.token").Return(claims, nil).Once()
	resolver.On("Resolve", mock.Anything, "ghost@example.com").Return(nil, nil).Once()

	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
	}

	ctx := newPipelineContext("Bearer valid.jwt.token")

	err := runPipeline(t, cfg, ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)

	validator.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

// customPathMock overrides Path() from the base MockContext.
type customPathMock struct {
	*router.MockContext
	pathOverride string
}

func (m *customPathMock) Path() string {
	return m.pathOverride
}

func TestPipelineFilterSkips(t *testing.T) {
	validator := new(MockValidator)
	resolver := new(MockResolver)

	cfg := jwtware.Config{
		TokenValidator:   validator,
		IdentityResolver: resolver,
		Filter: func(ctx router.Context) bool {
			return ctx.Path() == "/health"
		},
	}

	ctx := &customPathMock{
		MockContext:  newPipelineContext(""),
		pathOverride: "/health",
	}

	handler := jwtware.New(cfg)(func(c router.Context) error {
		return c.Next()
	})
	err := handler(ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)
}

func TestRequireRejectsAnonymous(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.On("Locals", "identity").Return(nil).Once()

	var gotErr error
	handler := jwtware.Require(jwtware.RequireConfig{
		ErrorHandler: func(c router.Context, err error) error {
			gotErr = err
			return nil
		},
	})(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, gotErr, jwtware.ErrAuthenticationRequired)
	require.False(t, ctx.NextCalled, "anonymous caller must not reach the handler")
}

func TestRequirePassesAuthenticated(t *testing.T) {
	identity := stubIdentity{id: "u-1", email: "user@example.com", role: "USER"}

	ctx := router.NewMockContext()
	ctx.On("Locals", "identity").Return(identity).Once()

	handler := jwtware.Require(jwtware.RequireConfig{})(func(c router.Context) error {
		return c.Next()
	})

	err := handler(ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)
}

func TestRequireRoleChecks(t *testing.T) {
	identity := stubIdentity{id: "u-1", email: "user@example.com", role: "USER"}

	t.Run("exact role mismatch", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Locals", "identity").Return(identity).Once()

		var gotErr error
		handler := jwtware.Require(jwtware.RequireConfig{
			Role: "ADMIN",
			ErrorHandler: func(c router.Context, err error) error {
				gotErr = err
				return nil
			},
		})(func(c router.Context) error {
			return c.Next()
		})

		err := handler(ctx)
		require.NoError(t, err)
		require.ErrorIs(t, gotErr, jwtware.ErrInsufficientRole)
		require.False(t, ctx.NextCalled)
	})

	t.Run("minimum role with hierarchy", func(t *testing.T) {
		admin := stubIdentity{id: "u-2", email: "admin@example.com", role: "ADMIN"}

		ctx := router.NewMockContext()
		ctx.On("Locals", "identity").Return(admin).Once()

		handler := jwtware.Require(jwtware.RequireConfig{
			MinimumRole: "USER",
			RoleAtLeast: func(role, minRole string) bool {
				return role == "ADMIN" || role == minRole
			},
		})(func(c router.Context) error {
			return c.Next()
		})

		err := handler(ctx)
		require.NoError(t, err)
		require.True(t, ctx.NextCalled)
	})

	t.Run("custom role checker", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Locals", "identity").Return(identity).Once()

		handler := jwtware.Require(jwtware.RequireConfig{
			Role: "USER",
			RoleChecker: func(identity jwtware.Identity, role string) bool {
				return identity.Role() == role
			},
		})(func(c router.Context) error {
			return c.Next()
		})

		err := handler(ctx)
		require.NoError(t, err)
		require.True(t, ctx.NextCalled)
	})
}
