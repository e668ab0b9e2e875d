package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/simplesdental/product-auth"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaimsRoleDecoding(t *testing.T) {
	tests := []struct {
		name      string
		roleNames string
		want      []string
	}{
		{"single role", "USER", []string{"USER"}},
		{"multiple roles", "USER,ADMIN", []string{"USER", "ADMIN"}},
		{"padded roles", " USER , ADMIN ", []string{"USER", "ADMIN"}},
		{"empty claim", "", nil},
		{"dangling comma", "USER,", []string{"USER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &auth.JWTClaims{RoleNames: tt.roleNames}
			assert.Equal(t, tt.want, claims.Roles())
		})
	}
}

func TestJWTClaimsHasRole(t *testing.T) {
	claims := &auth.JWTClaims{RoleNames: "USER,ADMIN"}

	assert.True(t, claims.HasRole("USER"))
	assert.True(t, claims.HasRole("ADMIN"))
	assert.False(t, claims.HasRole("ROOT"))
}

func TestJWTClaimsIsAtLeast(t *testing.T) {
	user := &auth.JWTClaims{RoleNames: "USER"}
	admin := &auth.JWTClaims{RoleNames: "ADMIN"}

	assert.True(t, user.IsAtLeast(auth.RoleUser))
	assert.False(t, user.IsAtLeast(auth.RoleAdmin))
	assert.True(t, admin.IsAtLeast(auth.RoleUser))
	assert.True(t, admin.IsAtLeast(auth.RoleAdmin))
}

func TestJWTClaimsUserIDFallback(t *testing.T) {
	withUID := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user@example.com"},
		UID:              "u-1",
	}
	assert.Equal(t, "u-1", withUID.UserID())

	withoutUID := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user@example.com"},
	}
	assert.Equal(t, "user@example.com", withoutUID.UserID())
}

func TestJWTClaimsTimes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	assert.Equal(t, now, claims.IssuedAt())
	assert.Equal(t, now.Add(time.Hour), claims.Expires())

	empty := &auth.JWTClaims{}
	assert.True(t, empty.IssuedAt().IsZero())
	assert.True(t, empty.Expires().IsZero())
}

func TestJoinRoles(t *testing.T) {
	assert.Equal(t, "USER,ADMIN", auth.JoinRoles([]string{"USER", "ADMIN"}))
	assert.Equal(t, "USER", auth.JoinRoles([]string{"USER"}))
	assert.Equal(t, "", auth.JoinRoles(nil))
}
