package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/simplesdental/product-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	projection := newProjection("user@example.com", auth.RoleUser)

	ctx := auth.WithIdentityContext(context.Background(), projection)

	got, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, projection, got)

	assert.True(t, auth.IsAuthenticated(ctx))
}

func TestIdentityFromContextAnonymous(t *testing.T) {
	_, ok := auth.IdentityFromContext(context.Background())
	assert.False(t, ok)
	assert.False(t, auth.IsAuthenticated(context.Background()))

	// a nil projection still reads as anonymous
	ctx := auth.WithIdentityContext(context.Background(), nil)
	_, ok = auth.IdentityFromContext(ctx)
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user@example.com"},
		RoleNames:        "USER",
	}

	ctx := auth.WithClaimsContext(context.Background(), claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", got.Subject())

	_, ok = auth.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestCan(t *testing.T) {
	anonymous := context.Background()
	userCtx := auth.WithIdentityContext(context.Background(), newProjection("user@example.com", auth.RoleUser))
	adminCtx := auth.WithIdentityContext(context.Background(), newProjection("admin@example.com", auth.RoleAdmin))

	tests := []struct {
		name       string
		ctx        context.Context
		permission string
		want       bool
	}{
		{"anonymous read", anonymous, "read", false},
		{"user read", userCtx, "read", true},
		{"user write", userCtx, "write", true},
		{"user delete", userCtx, "delete", false},
		{"user manage_users", userCtx, "manage_users", false},
		{"admin delete", adminCtx, "delete", true},
		{"admin manage_users", adminCtx, "manage_users", true},
		{"unknown permission", adminCtx, "teleport", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Can(tt.ctx, tt.permission))
		})
	}
}
