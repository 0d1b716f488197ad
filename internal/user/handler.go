package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/google/uuid"

	"bookmarkd/internal/httputil"
	"bookmarkd/internal/identity"
	"bookmarkd/internal/logging"
)

// Store is the slice of the repository the handlers need.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error)
}

// Handler contains HTTP handlers for user profile endpoints. All routes are
// protected; the identity comes from the request context.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// UpdateRequest represents a partial profile update.
type UpdateRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// GetMe returns the authenticated user's profile.
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} User
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	u, err := h.store.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Token subject no longer exists; the account was deleted.
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

// Update applies a partial profile edit for the authenticated user.
// @Summary      Edit current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} User
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Router       /users [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid user update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			httputil.RespondErrorWithCode(w, "invalid email format", httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
	}

	u, err := h.store.Update(r.Context(), userID, UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			logger.Warn("user update failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update user", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user updated successfully")

	httputil.RespondJSON(w, u, http.StatusOK)
}
