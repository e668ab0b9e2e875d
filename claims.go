package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims with role helpers
type AuthClaims interface {
	Subject() string
	UserID() string
	Roles() []string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. Roles travel as a
// comma joined string so the wire format matches what other consumers of
// these tokens already parse.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	RoleNames string `json:"roles,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the identity key (email)
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Roles returns the role list decoded from the comma joined claim
func (c *JWTClaims) Roles() []string {
	if c.RoleNames == "" {
		return nil
	}

	parts := strings.Split(c.RoleNames, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

// HasRole checks if the claim carries a specific role
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks if any carried role meets the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	for _, r := range c.Roles() {
		if IsAtLeast(UserRole(r), UserRole(minRole)) {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// JoinRoles encodes a role list into the comma joined claim format.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}
