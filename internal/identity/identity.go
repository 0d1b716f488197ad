// Package identity carries the authenticated identity through a request
// context. The identity is set once by the auth middleware and lives only
// for that request; it is never cached or shared across requests.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type so no other package can collide with these keys.
type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "user_email"
)

// WithIdentity returns a context carrying the authenticated user.
func WithIdentity(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, email)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// EmailFromContext extracts the authenticated user email from the request context.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
