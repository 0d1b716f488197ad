package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"bookmarkd/internal/httputil"
	"bookmarkd/internal/identity"
)

// Middleware handles authentication for protected routes.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates the access token and injects the authenticated
// identity into the request context. Every failure — missing token,
// malformed header, bad signature, tampered claims, expiry — produces the
// same 401 response so callers cannot tell which check rejected them. The
// identity lives only in this request's context and is never cached.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				respondUnauthenticated(w)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetAccessTokenFromCookie(r)
			if err != nil {
				respondUnauthenticated(w)
				return
			}
			token = cookieToken
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			respondUnauthenticated(w)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			respondUnauthenticated(w)
			return
		}

		ctx := identity.WithIdentity(r.Context(), userID, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondUnauthenticated(w http.ResponseWriter) {
	httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
}
