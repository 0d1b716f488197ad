package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/bookmark"
	"bookmarkd/internal/config"
	"bookmarkd/internal/logging"
	"bookmarkd/internal/user"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// memUserStore satisfies both auth.UserRepository and user.Store.
type memUserStore struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (m *memUserStore) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	if _, exists := m.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.byID[u.ID] = u
	m.byEmail[email] = u
	return u, nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) Update(ctx context.Context, id uuid.UUID, params user.UpdateParams) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if params.Email != nil {
		if other, exists := m.byEmail[*params.Email]; exists && other.ID != id {
			return nil, user.ErrDuplicateEmail
		}
		delete(m.byEmail, u.Email)
		u.Email = *params.Email
		m.byEmail[u.Email] = u
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	u.UpdatedAt = time.Now()
	return u, nil
}

// memBookmarkStore satisfies bookmark.Store.
type memBookmarkStore struct {
	byID map[uuid.UUID]*bookmark.Bookmark
}

func newMemBookmarkStore() *memBookmarkStore {
	return &memBookmarkStore{byID: make(map[uuid.UUID]*bookmark.Bookmark)}
}

func (m *memBookmarkStore) Create(ctx context.Context, userID uuid.UUID, params bookmark.CreateParams) (*bookmark.Bookmark, error) {
	b := &bookmark.Bookmark{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Link:        params.Link,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.byID[b.ID] = b
	return b, nil
}

func (m *memBookmarkStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]bookmark.Bookmark, error) {
	bookmarks := make([]bookmark.Bookmark, 0)
	for _, b := range m.byID {
		if b.UserID == userID {
			bookmarks = append(bookmarks, *b)
		}
	}
	return bookmarks, nil
}

func (m *memBookmarkStore) GetByID(ctx context.Context, id uuid.UUID) (*bookmark.Bookmark, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, bookmark.ErrNotFound
	}
	return b, nil
}

func (m *memBookmarkStore) Update(ctx context.Context, id uuid.UUID, params bookmark.UpdateParams) (*bookmark.Bookmark, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, bookmark.ErrNotFound
	}
	if params.Title != nil {
		b.Title = *params.Title
	}
	if params.Description != nil {
		b.Description = params.Description
	}
	if params.Link != nil {
		b.Link = *params.Link
	}
	b.UpdatedAt = time.Now()
	return b, nil
}

func (m *memBookmarkStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return bookmark.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// allowAll is a RateLimiter that never limits.
type allowAll struct{}

func (allowAll) Allow(ctx context.Context, ip, purpose string) (bool, error) { return true, nil }

func newTestAPI(t *testing.T) (http.Handler, auth.TokenService) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "prod" // no swagger route in tests

	tokens, err := auth.NewPasetoService(testSecret)
	require.NoError(t, err)

	users := newMemUserStore()
	bookmarks := newMemBookmarkStore()

	authService := auth.NewService(users, auth.NewHasher(2), tokens, 15*time.Minute)
	authHandler := auth.NewHandler(authService, allowAll{}, false, 15*time.Minute)
	authMiddleware := auth.NewMiddleware(tokens)
	userHandler := user.NewHandler(users)
	bookmarkHandler := bookmark.NewHandler(bookmark.NewService(bookmarks))

	logger := logging.NewLogger(true)
	router := NewRouter(cfg, authHandler, authMiddleware, userHandler, bookmarkHandler, logger)

	return router, tokens
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var tokens auth.AuthTokens
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestAPI_EndToEnd(t *testing.T) {
	router, tokens := newTestAPI(t)

	creds := map[string]string{"email": "a@x.com", "password": "Pw1-secret"}

	// Register user A.
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeToken(t, rec)

	// Register again with the same email.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login with wrong password.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Login with correct credentials.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	tokenA := decodeToken(t, rec)

	// Current user profile.
	rec = doJSON(t, router, http.MethodGet, "/users/me", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	// Bookmarks start empty.
	rec = doJSON(t, router, http.MethodGet, "/bookmarks", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	// Create a bookmark.
	rec = doJSON(t, router, http.MethodPost, "/bookmarks", tokenA, map[string]string{
		"title":       "Google",
		"description": "Search Engine",
		"link":        "https://www.google.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created bookmark.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	// Register user B and create a bookmark owned by B.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "b@x.com", "password": "Pw2-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tokenB := decodeToken(t, rec)

	rec = doJSON(t, router, http.MethodPost, "/bookmarks", tokenB, map[string]string{
		"title": "B's bookmark", "link": "https://b.example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var createdB bookmark.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&createdB))

	// A may not edit or delete B's bookmark: forbidden, not not-found.
	rec = doJSON(t, router, http.MethodPatch, "/bookmarks/"+createdB.ID.String(), tokenA, map[string]string{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/bookmarks/"+createdB.ID.String(), tokenA, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A nonexistent bookmark is not-found, never forbidden.
	rec = doJSON(t, router, http.MethodPatch, "/bookmarks/"+uuid.NewString(), tokenA, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A edits and deletes its own bookmark.
	rec = doJSON(t, router, http.MethodPatch, "/bookmarks/"+created.ID.String(), tokenA, map[string]string{
		"title": "Facebook", "link": "https://www.facebook.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/bookmarks/"+created.ID.String(), tokenA, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/bookmarks/"+created.ID.String(), tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// An expired token is rejected on protected routes.
	expired, err := tokens.CreateToken(uuid.New(), "a@x.com", -1*time.Minute)
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodGet, "/bookmarks", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// No token at all.
	rec = doJSON(t, router, http.MethodGet, "/bookmarks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_EditUser(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "Pw1-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tokenA := decodeToken(t, rec)

	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "taken@x.com", "password": "Pw2-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Profile edit.
	rec = doJSON(t, router, http.MethodPatch, "/users", tokenA, map[string]string{
		"email":      "hammad@gmail.com",
		"first_name": "Hammad",
		"last_name":  "Akhtar",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "hammad@gmail.com", updated["email"])
	assert.Equal(t, "Hammad", updated["first_name"])
	assert.Equal(t, "Akhtar", updated["last_name"])

	// Changing to an email someone else owns conflicts.
	rec = doJSON(t, router, http.MethodPatch, "/users", tokenA, map[string]string{
		"email": "taken@x.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_Health(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api is running")
}

func TestAPI_RateLimited(t *testing.T) {
	// A limiter that always denies maps to 429.
	cfg := &config.Config{}
	cfg.Server.Env = "prod"

	tokens, err := auth.NewPasetoService(testSecret)
	require.NoError(t, err)

	users := newMemUserStore()
	authService := auth.NewService(users, auth.NewHasher(1), tokens, 15*time.Minute)
	authHandler := auth.NewHandler(authService, denyAll{}, false, 15*time.Minute)
	authMiddleware := auth.NewMiddleware(tokens)
	userHandler := user.NewHandler(users)
	bookmarkHandler := bookmark.NewHandler(bookmark.NewService(newMemBookmarkStore()))

	router := NewRouter(cfg, authHandler, authMiddleware, userHandler, bookmarkHandler, logging.NewLogger(true))

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "whatever1",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

type denyAll struct{}

func (denyAll) Allow(ctx context.Context, ip, purpose string) (bool, error) { return false, nil }

