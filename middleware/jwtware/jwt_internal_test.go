package jwtware

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExtractorsParsesLookupString(t *testing.T) {
	extractors := GetExtractors("header:Authorization,query:token,param:jwt,cookie:jwt_cookie")
	assert.Len(t, extractors, 4)

	extractors = GetExtractors("header: Authorization , query: token")
	assert.Len(t, extractors, 2)
}

func TestJWTFromHeaderSchemes(t *testing.T) {
	extract := jwtFromHeader(router.HeaderAuthorization, "Bearer")

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc.def.ghi", "abc.def.ghi"},
		{"wrong scheme", "Token abc", ""},
		{"scheme only", "Bearer", ""},
		{"empty header", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := router.NewMockContext()
			ctx.On("GetString", router.HeaderAuthorization, "").Return(tc.header)

			raw, err := extract(ctx)
			if tc.want == "" {
				assert.ErrorIs(t, err, ErrJWTMissingOrMalformed)
				assert.Empty(t, raw)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, raw)
		})
	}
}

func TestReasonCodeClassification(t *testing.T) {
	assert.Equal(t, "expired", reasonCode(errors.New("token is expired")))
	assert.Equal(t, "bad_signature", reasonCode(errors.New("token signature is invalid")))
	assert.Equal(t, "malformed", reasonCode(errors.New("token contains an invalid number of segments")))
}

func TestExternalClaimsRoleDecoding(t *testing.T) {
	claims := externalClaims{claims: map[string]any{
		"sub":   "user@example.com",
		"uid":   "u-1",
		"roles": "USER,ADMIN",
	}}

	assert.Equal(t, "user@example.com", claims.Subject())
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, []string{"USER", "ADMIN"}, claims.Roles())
	assert.True(t, claims.HasRole("ADMIN"))
	assert.False(t, claims.HasRole("ROOT"))

	listClaims := externalClaims{claims: map[string]any{
		"sub":   "user@example.com",
		"roles": []any{"USER"},
	}}
	assert.Equal(t, []string{"USER"}, listClaims.Roles())
	assert.Equal(t, "user@example.com", listClaims.UserID())
}

func TestKeyfuncOptionsRefreshErrorHandlerIsSafe(t *testing.T) {
	opts := keyfuncOptions(nil)
	require.NotNil(t, opts.RefreshErrorHandler)
	require.NotPanics(t, func() {
		opts.RefreshErrorHandler(errors.New("refresh failed"))
	})

	require.Equal(t, time.Hour, opts.RefreshInterval)
	require.Equal(t, 5*time.Minute, opts.RefreshRateLimit)
	require.Equal(t, 10*time.Second, opts.RefreshTimeout)
	require.True(t, opts.RefreshUnknownKID)
}
