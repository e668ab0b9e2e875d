package auth

import "github.com/goliatone/go-router"

// SimpleConfig is a plain Config implementation for wiring the module
// without a configuration framework. Zero values fall back to defaults
// through the getters.
type SimpleConfig struct {
	SigningKey      string   `json:"signing_key" koanf:"signing_key"`
	SigningMethod   string   `json:"signing_method" koanf:"signing_method"`
	ContextKey      string   `json:"context_key" koanf:"context_key"`
	TokenExpiration int      `json:"token_expiration" koanf:"token_expiration"`
	TokenLookup     string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme      string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer          string   `json:"issuer" koanf:"issuer"`
	Audience        []string `json:"audience" koanf:"audience"`
}

func (c SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "identity"
	}
	return c.ContextKey
}

// GetTokenExpiration is the token lifetime in hours.
func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration == 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:" + router.HeaderAuthorization
	}
	return c.TokenLookup
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetIssuer() string {
	return c.Issuer
}

func (c SimpleConfig) GetAudience() []string {
	return c.Audience
}
