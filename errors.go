package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrInvalidCredentials covers both unknown identifiers and password
// mismatches so callers cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrEmailAlreadyExists is returned when registering an email that is taken
var ErrEmailAlreadyExists = errors.New("email is already in use", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("EMAIL_IN_USE")

// ErrTokenExpired marks tokens presented at or past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed marks tokens that could not be parsed
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenSignatureInvalid marks tokens whose signature does not verify
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_BAD_SIGNATURE")

// ErrIdentityRequired is returned when a protected handler runs without a
// resolved identity in the request context
var ErrIdentityRequired = errors.New("authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("AUTH_REQUIRED")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password can not be an empty string", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_PASSWORD")

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch marker. The
// authenticator collapses it into ErrInvalidCredentials before it crosses
// the API boundary.
var ErrMismatchedHashAndPassword = errors.New("hashed password mismatch", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("PASSWORD_MISMATCH")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for unparseable tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSignatureError will check for signature verification failures
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenSignatureInvalid) {
		return true
	}
	return strings.Contains(err.Error(), "signature is invalid")
}
