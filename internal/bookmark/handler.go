package bookmark

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookmarkd/internal/httputil"
	"bookmarkd/internal/identity"
	"bookmarkd/internal/logging"
)

// Handler contains HTTP handlers for bookmark endpoints. All routes are
// protected; the identity comes from the request context.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest represents the create bookmark request body.
type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Link        string  `json:"link"`
}

// UpdateRequest represents a partial bookmark edit.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
}

// List returns the authenticated user's bookmarks.
// @Summary      List bookmarks
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Bookmark
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /bookmarks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	bookmarks, err := h.service.List(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list bookmarks", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list bookmarks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, bookmarks, http.StatusOK)
}

// Create stores a new bookmark for the authenticated user.
// @Summary      Create bookmark
// @Tags         bookmarks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Bookmark fields"
// @Success      201 {object} Bookmark
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Router       /bookmarks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create bookmark request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	b, err := h.service.Create(r.Context(), userID, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to create bookmark")
		return
	}

	logger.Info("bookmark created", "bookmark_id", b.ID)

	httputil.RespondJSON(w, b, http.StatusCreated)
}

// Get returns a single bookmark by id.
// @Summary      Get bookmark by ID
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bookmark ID"
// @Success      200 {object} Bookmark
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      403 {object} httputil.ErrorResponse "Forbidden"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /bookmarks/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, bookmarkID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), userID, bookmarkID)
	if err != nil {
		h.respondError(w, r, err, "failed to get bookmark")
		return
	}

	httputil.RespondJSON(w, b, http.StatusOK)
}

// Update edits a bookmark by id.
// @Summary      Edit bookmark by ID
// @Tags         bookmarks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bookmark ID"
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} Bookmark
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      403 {object} httputil.ErrorResponse "Forbidden"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /bookmarks/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, bookmarkID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update bookmark request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	b, err := h.service.Update(r.Context(), userID, bookmarkID, UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
	})
	if err != nil {
		h.respondError(w, r, err, "failed to update bookmark")
		return
	}

	logger.Info("bookmark updated", "bookmark_id", b.ID)

	httputil.RespondJSON(w, b, http.StatusOK)
}

// Delete removes a bookmark by id.
// @Summary      Delete bookmark by ID
// @Tags         bookmarks
// @Security     BearerAuth
// @Param        id path string true "Bookmark ID"
// @Success      204 "No content"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      403 {object} httputil.ErrorResponse "Forbidden"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /bookmarks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, bookmarkID, ok := h.identityAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, bookmarkID); err != nil {
		h.respondError(w, r, err, "failed to delete bookmark")
		return
	}

	logger.Info("bookmark deleted", "bookmark_id", bookmarkID)

	w.WriteHeader(http.StatusNoContent)
}

// identityAndID pulls the authenticated user from the context and the
// bookmark id from the URL, writing the error response itself on failure.
func (h *Handler) identityAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthenticated", httputil.CodeUnauthenticated, http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	bookmarkID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// An unparseable id cannot name an existing bookmark.
		httputil.RespondErrorWithCode(w, "bookmark not found", httputil.CodeNotFound, http.StatusNotFound)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, bookmarkID, true
}

// respondError maps service errors onto the HTTP taxonomy. Not-found and
// forbidden stay distinct; anything unexpected is a 500 with no detail.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	logger := logging.GetLoggerFromContext(r.Context())

	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "bookmark not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		httputil.RespondErrorWithCode(w, "you are not allowed to access this bookmark", httputil.CodeForbidden, http.StatusForbidden)
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrLinkRequired), errors.Is(err, ErrInvalidLink):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	default:
		logger.Error(internalMsg, "error", err.Error())
		httputil.RespondErrorWithCode(w, internalMsg, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
