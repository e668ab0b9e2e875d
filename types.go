package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Register(ctx context.Context, msg RegisterUserMessage) (*User, error)
	UpdatePassword(ctx context.Context, identifier, currentPassword, newPassword string) error
	GetIdentity(ctx context.Context, identifier string) (*IdentityProjection, error)
}

// AuthResult is what a successful login returns to the calling boundary.
// The token is self contained; the rest is a minimal identity summary.
type AuthResult struct {
	Token string   `json:"token"`
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// CredentialStore is the persistence contract the authenticator depends on.
// Users (repo_users.go) satisfies it; tests swap in mocks.
type CredentialStore interface {
	FindByIdentityKey(ctx context.Context, key string) (*User, error)
	ExistsByIdentityKey(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, user *User) (*User, error)
}

// PasswordHasher hashes and verifies password credentials. Implementations
// must be slow, salted, and adaptive; never a general purpose digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService handles JWT generation and validation
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
