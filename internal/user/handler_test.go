package user

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

	"bookmarkd/internal/identity"
)

type fakeStore struct {
	byID map[uuid.UUID]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[uuid.UUID]*User)}
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if params.Email != nil {
		for otherID, other := range f.byID {
			if otherID != id && other.Email == *params.Email {
				return nil, ErrDuplicateEmail
			}
		}
		u.Email = *params.Email
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	return u, nil
}

func authedRequest(method, path string, userID uuid.UUID, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	ctx := identity.WithIdentity(req.Context(), userID, "a@x.com")
	return req.WithContext(ctx)
}

func TestHandler_GetMe(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	u := &User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		PasswordHash: "$argon2id$...",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	store.byID[u.ID] = u

	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.GetMe(rec, authedRequest(http.MethodGet, "/users/me", u.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	// The hash never leaves the server.
	assert.NotContains(t, rec.Body.String(), "argon2id")
}

func TestHandler_GetMe_DeletedAccount(t *testing.T) {
	t.Parallel()

	handler := NewHandler(newFakeStore())
	rec := httptest.NewRecorder()
	handler.GetMe(rec, authedRequest(http.MethodGet, "/users/me", uuid.New(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	u := &User{ID: uuid.New(), Email: "a@x.com"}
	store.byID[u.ID] = u

	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.Update(rec, authedRequest(http.MethodPatch, "/users", u.ID, map[string]string{
		"email":      "new@x.com",
		"first_name": "Ada",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new@x.com")
	assert.Contains(t, rec.Body.String(), "Ada")
}

func TestHandler_Update_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := &User{ID: uuid.New(), Email: "a@x.com"}
	b := &User{ID: uuid.New(), Email: "b@x.com"}
	store.byID[a.ID] = a
	store.byID[b.ID] = b

	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.Update(rec, authedRequest(http.MethodPatch, "/users", a.ID, map[string]string{
		"email": "b@x.com",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Update_InvalidEmail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	u := &User{ID: uuid.New(), Email: "a@x.com"}
	store.byID[u.ID] = u

	handler := NewHandler(store)
	rec := httptest.NewRecorder()
	handler.Update(rec, authedRequest(http.MethodPatch, "/users", u.ID, map[string]string{
		"email": "not-an-email",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
