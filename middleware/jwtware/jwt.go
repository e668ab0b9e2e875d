package jwtware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles
type AuthClaims interface {
	Subject() string
	UserID() string
	Roles() []string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// Identity is the resolved per request identity without import cycles.
// This mirrors the auth package's projection view.
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// IdentityResolver maps a verified token subject to the current identity.
// Resolution is cache first with a store lookup on miss; a nil Identity with
// a nil error means the subject no longer exists.
type IdentityResolver interface {
	Resolve(ctx context.Context, identityKey string) (Identity, error)
}

// Logger matches the auth package logger so failures can be reported with
// their reason code while the client only ever sees anonymous treatment.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type Config struct {
	// Filter skips the middleware when it returns true
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc

	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// IdentityResolver is required; it turns a verified subject into the
	// current identity projection. Authorization decisions run against the
	// resolved role, not the token's embedded role claim.
	IdentityResolver IdentityResolver

	// ContextKey is the router locals key the identity is stored under
	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// Optional support for externally issued tokens. When any of these is
	// set they build a secondary validator that is tried after
	// TokenValidator rejects a token as malformed.
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc

	// ContextEnricher propagates the claims and resolved identity to the
	// standard Go context so downstream code can use plain context lookups.
	ContextEnricher func(c context.Context, claims AuthClaims, identity Identity) context.Context

	Logger Logger
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the request authentication middleware. It has three outcomes
// and only three: anonymous pass through (no credential), authenticated
// pass through, and anonymous pass through after a failed token (reason is
// logged, never surfaced). It never rejects a request itself; pair it with
// Require for routes that demand an authenticated caller.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			// Fresh context per request: locals start empty, nothing is
			// inherited from prior requests on the same worker.
			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return cfg.SuccessHandler(ctx)
			}

			claims, err := cfg.validate(raw)
			if err != nil {
				cfg.Logger.Info("token rejected", "reason", reasonCode(err))
				return cfg.SuccessHandler(ctx)
			}

			identity, err := cfg.IdentityResolver.Resolve(ctx.Context(), claims.Subject())
			if err != nil || identity == nil {
				cfg.Logger.Info("token subject no longer resolvable", "subject", claims.Subject())
				return cfg.SuccessHandler(ctx)
			}

			ctx.Locals(cfg.ContextKey, identity)

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), claims, identity)
				ctx.SetContext(stdCtx)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// RequireConfig drives the authorization middleware. Authentication decides
// who the caller is; this decides whether anonymous or under privileged
// access is permitted for the target operation.
type RequireConfig struct {
	// ContextKey must match the Config.ContextKey of the pipeline
	ContextKey string
	// Role requires this exact role on the resolved identity
	Role string
	// MinimumRole requires at least this role level
	MinimumRole string
	// RoleChecker overrides the builtin role comparison
	RoleChecker func(identity Identity, role string) bool
	// ErrorHandler renders the rejection; defaults to 401/403 text
	ErrorHandler router.ErrorHandler
	// RoleAtLeast is the hierarchy comparison used for MinimumRole. It is
	// injected by the auth package helpers so this package does not own
	// the role lattice.
	RoleAtLeast func(role, minRole string) bool
}

// ErrAuthenticationRequired is returned for anonymous callers on protected routes
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrInsufficientRole is returned when the resolved role fails the check
var ErrInsufficientRole = errors.New("insufficient role")

// Require rejects requests whose context lacks a resolved identity that
// passes the configured role checks.
func Require(config ...RequireConfig) router.MiddlewareFunc {
	var cfg RequireConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrAuthenticationRequired) {
				return c.Status(router.StatusUnauthorized).SendString(err.Error())
			}
			return c.Status(router.StatusForbidden).SendString(err.Error())
		}
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			identity, ok := ctx.Locals(cfg.ContextKey).(Identity)
			if !ok || identity == nil {
				return cfg.ErrorHandler(ctx, ErrAuthenticationRequired)
			}

			if err := checkRole(identity, cfg); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			return ctx.Next()
		}
	}
}

func checkRole(identity Identity, cfg RequireConfig) error {
	if cfg.Role == "" && cfg.MinimumRole == "" && cfg.RoleChecker == nil {
		return nil
	}

	if cfg.RoleChecker != nil {
		roleToCheck := cfg.Role
		if roleToCheck == "" {
			roleToCheck = cfg.MinimumRole
		}
		if !cfg.RoleChecker(identity, roleToCheck) {
			return fmt.Errorf("%w: custom check failed for role %q", ErrInsufficientRole, roleToCheck)
		}
		return nil
	}

	if cfg.Role != "" && identity.Role() != cfg.Role {
		return fmt.Errorf("%w: required role %q", ErrInsufficientRole, cfg.Role)
	}

	if cfg.MinimumRole != "" {
		if cfg.RoleAtLeast == nil || !cfg.RoleAtLeast(identity.Role(), cfg.MinimumRole) {
			return fmt.Errorf("%w: minimum role %q", ErrInsufficientRole, cfg.MinimumRole)
		}
	}

	return nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.IdentityResolver == nil {
		panic("AUTH: JWT middleware configuration: IdentityResolver is required.")
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.KeyFunc == nil && (len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0) {
		var givenKeys map[string]keyfunc.GivenKey
		if cfg.SigningKeys != nil {
			givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
			for kid, key := range cfg.SigningKeys {
				givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
					Algorithm: key.JWTAlg,
				})
			}
		}
		if len(cfg.JWKSetURLs) > 0 {
			var err error
			cfg.KeyFunc, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
			if err != nil {
				panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
			}
		} else {
			cfg.KeyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
		}
	}

	return cfg
}

// validate tries the primary validator first; when it reports a malformed
// token and an external keyfunc is configured, the token gets a second
// chance as an externally issued one.
func (cfg *Config) validate(raw string) (AuthClaims, error) {
	claims, err := cfg.TokenValidator.Validate(raw)
	if err == nil {
		return claims, nil
	}

	if cfg.KeyFunc == nil {
		return nil, err
	}

	external, extErr := validateWithKeyfunc(raw, cfg.KeyFunc)
	if extErr != nil {
		return nil, err
	}
	return external, nil
}

func validateWithKeyfunc(raw string, fn jwt.Keyfunc) (AuthClaims, error) {
	token, err := jwt.Parse(raw, fn)
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrJWTMissingOrMalformed
	}

	return externalClaims{claims: mc}, nil
}

// externalClaims adapts jwt.MapClaims from externally issued tokens
type externalClaims struct {
	claims jwt.MapClaims
}

func (e externalClaims) Subject() string {
	sub, _ := e.claims.GetSubject()
	return sub
}

func (e externalClaims) UserID() string {
	if uid, ok := e.claims["uid"].(string); ok && uid != "" {
		return uid
	}
	return e.Subject()
}

func (e externalClaims) Roles() []string {
	switch v := e.claims["roles"].(type) {
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	case []any:
		roles := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	default:
		return nil
	}
}

func (e externalClaims) HasRole(role string) bool {
	for _, r := range e.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (e externalClaims) IsAtLeast(minRole string) bool {
	return e.HasRole(minRole)
}

func reasonCode(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		return "expired"
	case strings.Contains(msg, "signature"):
		return "bad_signature"
	default:
		return "malformed"
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		//header:Authorization
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

type JWTExtractor func(c router.Context) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
// A header carrying a different scheme marker is treated the same as an
// absent header: the caller stays anonymous.
func jwtFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
