// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/repository"
	"github.com/gurkanbulca/projecttracker/internal/validation"
	"github.com/gurkanbulca/projecttracker/pkg/auth"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a user together with freshly issued tokens.
type Session struct {
	User   *models.User
	Tokens *auth.TokenPair
}

type AuthService struct {
	users           *repository.UserRepository
	tokenManager    *auth.TokenManager
	passwordManager *auth.PasswordManager
	revocations     auth.RevocationStore
	log             zerolog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users *repository.UserRepository,
	tokenManager *auth.TokenManager,
	passwordManager *auth.PasswordManager,
	revocations auth.RevocationStore,
	log zerolog.Logger,
) *AuthService {
	if revocations == nil {
		revocations = auth.NoopRevocationStore{}
	}
	return &AuthService{
		users:           users,
		tokenManager:    tokenManager,
		passwordManager: passwordManager,
		revocations:     revocations,
		log:             log.With().Str("component", "auth").Logger(),
	}
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	errs := validation.Errors{}
	if err := validation.Struct(in); err != nil {
		verrs, ok := validation.As(err)
		if !ok {
			return nil, err
		}
		errs.Merge(verrs)
	}
	if in.Password != "" {
		if err := s.passwordManager.ValidatePassword(in.Password); err != nil {
			errs.Add("password", weakPasswordMessage(err))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := s.passwordManager.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, in.Name, in.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, validation.Errors{"email": "The email has already been taken."}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return session, nil
}

// Login checks the credentials and issues a new token pair. Unknown email
// and wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.passwordManager.ComparePassword(user.PasswordHash, in.Password); err != nil {
		s.log.Warn().Str("user_id", user.ID.String()).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh rotates the token pair. The refresh token must be the one
// stored for the user, so a token from before a logout is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, validation.Errors{"refresh_token": "The refresh_token field is required."}
	}

	claims, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token and revokes the access token
// the request was made with.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}

	s.log.Info().Str("user_id", claims.UserID).Msg("user logged out")
	return nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates an access token and checks that it was not
// revoked by a logout.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokenManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", auth.ErrInvalidToken)
	}
	return claims, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	tokens, err := s.tokenManager.GenerateTokenPair(auth.Subject{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, &tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	user.RefreshToken = &tokens.RefreshToken

	return &Session{User: user, Tokens: tokens}, nil
}

func weakPasswordMessage(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok {
		return "The password " + detail + "."
	}
	return "The password field is invalid."
}
