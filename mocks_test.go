package auth_test

import (
	"context"

	"github.com/simplesdental/product-auth"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements auth.CredentialStore for call assertions
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByIdentityKey(ctx context.Context, key string) (*auth.User, error) {
	args := m.Called(ctx, key)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) ExistsByIdentityKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if saved, ok := args.Get(0).(*auth.User); ok {
		return saved, args.Error(1)
	}
	return nil, args.Error(1)
}

// memoryStore is a map backed CredentialStore for flow tests
type memoryStore struct {
	users map[string]*auth.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]*auth.User{}}
}

func (s *memoryStore) FindByIdentityKey(ctx context.Context, key string) (*auth.User, error) {
	user, ok := s.users[key]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memoryStore) ExistsByIdentityKey(ctx context.Context, key string) (bool, error) {
	_, ok := s.users[key]
	return ok, nil
}

func (s *memoryStore) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	clone := *user
	s.users[user.Email] = &clone
	return user, nil
}

// fastHasher keeps flow tests quick; production uses bcrypt
type fastHasher struct{}

func (fastHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", auth.ErrNoEmptyString
	}
	return "hashed:" + password, nil
}

func (fastHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

func newTestConfig() auth.SimpleConfig {
	return auth.SimpleConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 24,
		Issuer:          "test-issuer",
		Audience:        []string{"test:audience"},
	}
}
