package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/simplesdental/product-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjection(email string, role auth.UserRole) *auth.IdentityProjection {
	return &auth.IdentityProjection{
		ID:    uuid.New(),
		Email: email,
		Role:  role,
	}
}

func TestIdentityCachePutGet(t *testing.T) {
	cache := auth.NewIdentityCache(16, time.Minute)

	projection := newProjection("user@example.com", auth.RoleUser)
	cache.Put("user@example.com", projection)

	got, ok := cache.Get("user@example.com")
	require.True(t, ok)
	assert.Equal(t, projection, got)

	_, ok = cache.Get("other@example.com")
	assert.False(t, ok)
}

func TestIdentityCacheTTL(t *testing.T) {
	cache := auth.NewIdentityCache(16, 25*time.Millisecond)

	cache.Put("user@example.com", newProjection("user@example.com", auth.RoleUser))

	_, ok := cache.Get("user@example.com")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = cache.Get("user@example.com")
	assert.False(t, ok, "entries expire after the TTL")
}

func TestIdentityCacheInvalidate(t *testing.T) {
	cache := auth.NewIdentityCache(16, time.Minute)

	cache.Put("user@example.com", newProjection("user@example.com", auth.RoleUser))
	cache.Put("other@example.com", newProjection("other@example.com", auth.RoleAdmin))

	cache.Invalidate("user@example.com")

	_, ok := cache.Get("user@example.com")
	assert.False(t, ok)

	// unrelated entries survive
	_, ok = cache.Get("other@example.com")
	assert.True(t, ok)
	assert.Equal(t, 1, cache.Len())
}

func TestIdentityCacheDefaults(t *testing.T) {
	// zero values fall back to the package defaults instead of a cache
	// that can hold nothing
	cache := auth.NewIdentityCache(0, 0)

	cache.Put("user@example.com", newProjection("user@example.com", auth.RoleUser))
	_, ok := cache.Get("user@example.com")
	assert.True(t, ok)
}

func TestIdentityCacheIgnoresNil(t *testing.T) {
	cache := auth.NewIdentityCache(16, time.Minute)

	cache.Put("user@example.com", nil)

	_, ok := cache.Get("user@example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}
