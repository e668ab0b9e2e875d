package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// RegisterUserMessage carries a registration request across the boundary.
type RegisterUserMessage struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Auther orchestrates credential verification, token issuance, and the
// identity projection cache.
type Auther struct {
	store        CredentialStore
	hasher       PasswordHasher
	cache        *IdentityCache
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		store:        store,
		hasher:       BcryptHasher{},
		cache:        NewIdentityCache(DefaultIdentityCacheSize, DefaultIdentityCacheTTL),
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordHasher swaps the credential hasher. Tests use a fast fake;
// production keeps bcrypt.
func (s *Auther) WithPasswordHasher(hasher PasswordHasher) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithTokenService sets a custom token service, e.g. one with a pinned clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithIdentityCache overrides the projection cache, e.g. to tune TTL/size.
func (s *Auther) WithIdentityCache(cache *IdentityCache) *Auther {
	if cache != nil {
		s.cache = cache
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// IdentityCache exposes the projection cache so the request pipeline and
// the authenticator share one invalidation domain.
func (s *Auther) IdentityCache() *IdentityCache {
	return s.cache
}

// Login verifies the identifier/password pair and mints a token. Unknown
// identifiers and wrong passwords both come back as ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.store.FindByIdentityKey(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Info("Login failed", "identifier", identifier, "reason", "unknown_identity")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login store lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve credential during login")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("Login failed", "identifier", identifier, "reason", "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return nil, err
	}

	s.logger.Info("Login successful", "identifier", identifier)

	return &AuthResult{
		Token: token,
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// Register creates a new credential with the default role. The returned
// record's password hash stays inside this boundary; callers serialize the
// user with the hash field excluded.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	exists, err := s.store.ExistsByIdentityKey(ctx, msg.Email)
	if err != nil {
		s.logger.Error("Register existence check failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing credential")
	}

	if exists {
		s.logger.Warn("Register rejected", "identifier", msg.Email, "reason", "email_in_use")
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(msg.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Name:         msg.Name,
		Email:        msg.Email,
		Phone:        msg.Phone,
		Role:         RoleUser,
		PasswordHash: hash,
	}

	if msg.UseHashid {
		if id, err := hashid.NewUUID(msg.Email); err == nil {
			user.ID = id
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		s.logger.Error("Register save failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user")
	}

	s.logger.Info("Registered new user", "identifier", saved.Email)

	return saved, nil
}

// UpdatePassword replaces the credential's hash after verifying the current
// password, then evicts the cached projection before returning, so no
// request acknowledged after this call can observe the stale record.
func (s *Auther) UpdatePassword(ctx context.Context, identifier, currentPassword, newPassword string) error {
	user, err := s.store.FindByIdentityKey(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		s.logger.Error("UpdatePassword store lookup failed", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve credential for password update")
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		s.logger.Info("UpdatePassword rejected", "identifier", identifier, "reason", "password_mismatch")
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user.PasswordHash = hash
	if _, err := s.store.Save(ctx, user); err != nil {
		s.logger.Error("UpdatePassword save failed", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist password update")
	}

	s.cache.Invalidate(identifier)
	s.logger.Info("Password updated", "identifier", identifier)

	return nil
}

// GetIdentity resolves the projection for an identity key, cache first,
// credential store on miss.
func (s *Auther) GetIdentity(ctx context.Context, identifier string) (*IdentityProjection, error) {
	if projection, ok := s.cache.Get(identifier); ok {
		return projection, nil
	}

	user, err := s.store.FindByIdentityKey(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		s.logger.Error("GetIdentity store lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve identity")
	}

	projection := user.Projection()
	s.cache.Put(identifier, projection)

	return projection, nil
}

var _ Authenticator = (*Auther)(nil)
