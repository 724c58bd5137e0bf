// internal/service/auth_service_test.go
package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/projecttracker/internal/database/dbtest"
	"github.com/gurkanbulca/projecttracker/internal/repository"
	"github.com/gurkanbulca/projecttracker/internal/validation"
	"github.com/gurkanbulca/projecttracker/pkg/auth"
)

// memoryRevocations records revoked token ids.
type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memoryRevocations) Revoke(_ context.Context, id string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = exp
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}

// Test helpers
func setupAuthService(t *testing.T) (*AuthService, *memoryRevocations) {
	t.Helper()
	db := dbtest.Open(t)
	users := repository.NewUserRepository(db, repository.SystemClock(time.UTC))
	tokenManager := auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour, "test")
	revocations := &memoryRevocations{revoked: map[string]time.Time{}}
	svc := NewAuthService(users, tokenManager, auth.NewPasswordManager(bcrypt.MinCost, 8), revocations, zerolog.Nop())
	return svc, revocations
}

func registerTestUser(t *testing.T, svc *AuthService) *Session {
	t.Helper()
	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "TestPass123",
	})
	require.NoError(t, err)
	return session
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setup         bool
		wantField     string
		expectedEmail string
	}{
		{
			name:          "successful registration",
			input:         RegisterInput{Name: "New User", Email: "NewUser@Example.com", Password: "SecurePass123"},
			expectedEmail: "newuser@example.com",
		},
		{
			name:      "duplicate email",
			input:     RegisterInput{Name: "Dup", Email: "test@example.com", Password: "SecurePass123"},
			setup:     true,
			wantField: "email",
		},
		{
			name:      "invalid email format",
			input:     RegisterInput{Name: "Bad", Email: "invalid-email", Password: "SecurePass123"},
			wantField: "email",
		},
		{
			name:      "weak password",
			input:     RegisterInput{Name: "Weak", Email: "weak@example.com", Password: "weak"},
			wantField: "password",
		},
		{
			name:      "empty name",
			input:     RegisterInput{Name: " ", Email: "noname@example.com", Password: "SecurePass123"},
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupAuthService(t)
			if tt.setup {
				registerTestUser(t, svc)
			}

			session, err := svc.Register(context.Background(), tt.input)
			if tt.wantField != "" {
				verrs, ok := validation.As(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, verrs, tt.wantField)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedEmail, session.User.Email)
			assert.NotEqual(t, "SecurePass123", session.User.PasswordHash)
			assert.NotEmpty(t, session.Tokens.AccessToken)
			assert.NotEmpty(t, session.Tokens.RefreshToken)
			assert.Greater(t, session.Tokens.ExpiresIn, int64(0))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name    string
		input   LoginInput
		wantErr error
	}{
		{name: "successful login", input: LoginInput{Email: "test@example.com", Password: "TestPass123"}},
		{name: "email is case insensitive", input: LoginInput{Email: "TEST@example.com", Password: "TestPass123"}},
		{name: "wrong password", input: LoginInput{Email: "test@example.com", Password: "WrongPass123"}, wantErr: ErrInvalidCredentials},
		{name: "unknown user", input: LoginInput{Email: "nobody@example.com", Password: "TestPass123"}, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupAuthService(t)
			registered := registerTestUser(t, svc)

			session, err := svc.Login(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, session.User.ID)
			assert.NotEmpty(t, session.Tokens.AccessToken)
		})
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), LoginInput{})
	verrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "password")
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()
	first := registerTestUser(t, svc)

	second, err := svc.Refresh(ctx, first.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	// the rotated-out token is no longer accepted
	_, err = svc.Refresh(ctx, first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, second.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "")
	_, isValidation := validation.As(err)
	assert.True(t, isValidation)
}

func TestAuthService_Logout(t *testing.T) {
	svc, revocations := setupAuthService(t)
	ctx := context.Background()
	session := registerTestUser(t, svc)

	claims, err := svc.Authenticate(ctx, session.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.Contains(t, revocations.revoked, claims.ID)

	_, err = svc.Authenticate(ctx, session.Tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Me(t *testing.T) {
	svc, _ := setupAuthService(t)
	session := registerTestUser(t, svc)

	user, err := svc.Me(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthService_NilRevocationStore(t *testing.T) {
	db := dbtest.Open(t)
	users := repository.NewUserRepository(db, repository.SystemClock(time.UTC))
	tokenManager := auth.NewTokenManager("a", "b", time.Minute, time.Hour, "test")
	svc := NewAuthService(users, tokenManager, auth.NewPasswordManager(bcrypt.MinCost, 8), nil, zerolog.Nop())

	session := registerTestUser(t, svc)
	claims, err := svc.Authenticate(context.Background(), session.Tokens.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), claims))

	// without a store the access token stays valid until it expires
	_, err = svc.Authenticate(context.Background(), session.Tokens.AccessToken)
	assert.NoError(t, err)
}
