package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"bookmarkd/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// UserRepository is the slice of the user store the auth flow needs.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// AuthTokens is the response shape for both register and login. The service
// issues a single stateless access token; there is no server-side session
// or revocation.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service handles registration and login.
type Service struct {
	users               UserRepository
	hasher              *Hasher
	tokens              TokenService
	accessTokenDuration time.Duration
}

func NewService(
	users UserRepository,
	hasher *Hasher,
	tokens TokenService,
	accessTokenDuration time.Duration,
) *Service {
	return &Service{
		users:               users,
		hasher:              hasher,
		tokens:              tokens,
		accessTokenDuration: accessTokenDuration,
	}
}

// Register creates a new account and returns an access token. A duplicate
// email surfaces as user.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(newUser.ID, newUser.Email)
}

// Login authenticates a user and returns an access token. An unknown email
// and a wrong password both return ErrInvalidCredentials so the caller
// cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, existingUser.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(existingUser.ID, existingUser.Email)
}

func (s *Service) issueTokens(userID uuid.UUID, email string) (*AuthTokens, error) {
	accessToken, err := s.tokens.CreateToken(userID, email, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
	}, nil
}
