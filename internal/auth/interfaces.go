package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: malformed input, bad
// signature, tampered claims, and expiry. Callers must not be able to tell
// which check rejected the token.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims are the claims carried by an access token.
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService creates and validates access tokens.
// Implementations: PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
