package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarkd/internal/httputil"
	"bookmarkd/internal/identity"
)

func newGuardedHandler(t *testing.T) (*Middleware, TokenService, http.Handler) {
	t.Helper()

	tokens, err := NewPasetoService(testSecret)
	require.NoError(t, err)

	mw := NewMiddleware(tokens)
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := identity.UserIDFromContext(r.Context())
		require.True(t, ok)
		email, ok := identity.EmailFromContext(r.Context())
		require.True(t, ok)

		httputil.RespondJSON(w, map[string]string{
			"user_id": userID.String(),
			"email":   email,
		}, http.StatusOK)
	}))

	return mw, tokens, handler
}

func TestRequireAuth_ValidToken(t *testing.T) {
	t.Parallel()

	_, tokens, handler := newGuardedHandler(t)

	userID := uuid.New()
	token, err := tokens.CreateToken(userID, "a@x.com", 15*time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "a@x.com", body["email"])
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	t.Parallel()

	_, tokens, handler := newGuardedHandler(t)

	token, err := tokens.CreateToken(uuid.New(), "a@x.com", 15*time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// All failure classes produce an identical 401 response body.
func TestRequireAuth_FailuresIndistinguishable(t *testing.T) {
	t.Parallel()

	_, tokens, handler := newGuardedHandler(t)

	foreign, err := NewPasetoService(otherSecret)
	require.NoError(t, err)
	foreignToken, err := foreign.CreateToken(uuid.New(), "a@x.com", 15*time.Minute)
	require.NoError(t, err)

	expiredToken, err := tokens.CreateToken(uuid.New(), "a@x.com", -1*time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"malformed header", "NotBearer abc"},
		{"malformed token", "Bearer not-a-token"},
		{"foreign secret", "Bearer " + foreignToken},
		{"expired", "Bearer " + expiredToken},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}

	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i], "rejection bodies must not differ by cause")
	}
}
