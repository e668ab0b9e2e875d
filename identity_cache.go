package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// IdentityProjection is the cached view of a credential, everything the
// request pipeline needs to answer "who is this token's subject".
type IdentityProjection struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  UserRole  `json:"role"`
}

const (
	// DefaultIdentityCacheSize bounds the number of cached projections.
	DefaultIdentityCacheSize = 1024
	// DefaultIdentityCacheTTL bounds staleness for mutations that bypass
	// invalidation. Mutations made through the Authenticator invalidate
	// eagerly and never wait for the TTL.
	DefaultIdentityCacheTTL = 5 * time.Minute
)

// IdentityCache maps identity key (email) to a projection with a TTL
// independent of token expiry. The underlying LRU serializes get, put, and
// invalidate, so readers observe either the pre or post mutation value.
type IdentityCache struct {
	lru *expirable.LRU[string, *IdentityProjection]
}

// NewIdentityCache creates a cache with the given size and TTL; zero values
// fall back to the defaults.
func NewIdentityCache(size int, ttl time.Duration) *IdentityCache {
	if size <= 0 {
		size = DefaultIdentityCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultIdentityCacheTTL
	}

	return &IdentityCache{
		lru: expirable.NewLRU[string, *IdentityProjection](size, nil, ttl),
	}
}

// Get returns the cached projection for the identity key, if present and
// not expired.
func (c *IdentityCache) Get(key string) (*IdentityProjection, bool) {
	return c.lru.Get(key)
}

// Put stores a projection for the identity key.
func (c *IdentityCache) Put(key string, projection *IdentityProjection) {
	if projection == nil {
		return
	}
	c.lru.Add(key, projection)
}

// Invalidate evicts the projection for the identity key. Callers mutating a
// credential must invoke this before returning, so no request observes a
// stale projection after the mutation is acknowledged.
func (c *IdentityCache) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len reports the number of live entries, expired ones included until the
// next sweep.
func (c *IdentityCache) Len() int {
	return c.lru.Len()
}
