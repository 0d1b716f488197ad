package bookmark

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

var (
	ErrForbidden     = errors.New("bookmark belongs to another user")
	ErrTitleRequired = errors.New("title is required")
	ErrLinkRequired  = errors.New("link is required")
	ErrInvalidLink   = errors.New("link must be a valid http or https URL")
)

// Store is the slice of the repository the service needs.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Bookmark, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Bookmark, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Bookmark, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Bookmark, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service enforces ownership on bookmark operations. Resource-scoped
// operations check existence before ownership: a nonexistent bookmark is
// ErrNotFound and someone else's bookmark is ErrForbidden, and the two are
// never conflated because the HTTP layer maps them to different statuses.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns the authenticated user's bookmarks.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Bookmark, error) {
	return s.store.ListByUser(ctx, userID)
}

// Create validates and stores a new bookmark owned by userID.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Bookmark, error) {
	if params.Title == "" {
		return nil, ErrTitleRequired
	}
	if err := validateLink(params.Link); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, userID, params)
}

// Get returns a bookmark if userID owns it.
func (s *Service) Get(ctx context.Context, userID, bookmarkID uuid.UUID) (*Bookmark, error) {
	return s.authorize(ctx, userID, bookmarkID)
}

// Update edits a bookmark if userID owns it.
func (s *Service) Update(ctx context.Context, userID, bookmarkID uuid.UUID, params UpdateParams) (*Bookmark, error) {
	if params.Title != nil && *params.Title == "" {
		return nil, ErrTitleRequired
	}
	if params.Link != nil {
		if err := validateLink(*params.Link); err != nil {
			return nil, err
		}
	}

	if _, err := s.authorize(ctx, userID, bookmarkID); err != nil {
		return nil, err
	}

	// The read above and this write are not isolated against a concurrent
	// delete; a racing delete surfaces as the store's ErrNotFound.
	return s.store.Update(ctx, bookmarkID, params)
}

// Delete removes a bookmark if userID owns it.
func (s *Service) Delete(ctx context.Context, userID, bookmarkID uuid.UUID) error {
	if _, err := s.authorize(ctx, userID, bookmarkID); err != nil {
		return err
	}

	return s.store.Delete(ctx, bookmarkID)
}

// authorize fetches the bookmark and checks ownership, in that order.
func (s *Service) authorize(ctx context.Context, userID, bookmarkID uuid.UUID) (*Bookmark, error) {
	b, err := s.store.GetByID(ctx, bookmarkID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch bookmark: %w", err)
	}

	if b.UserID != userID {
		return nil, ErrForbidden
	}

	return b, nil
}

func validateLink(link string) error {
	if link == "" {
		return ErrLinkRequired
	}

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidLink
	}

	return nil
}
