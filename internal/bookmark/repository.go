package bookmark

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"bookmarkd/internal/database"
)

var ErrNotFound = errors.New("bookmark not found")

// Repository handles bookmark persistence.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a bookmark owned by userID.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Bookmark, error) {
	dbBookmark := &database.Bookmark{
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Link:        params.Link,
	}

	_, err := r.db.NewInsert().
		Model(dbBookmark).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	return mapDBBookmarkToModel(dbBookmark), nil
}

// ListByUser returns all bookmarks owned by userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Bookmark, error) {
	var dbBookmarks []database.Bookmark
	err := r.db.NewSelect().
		Model(&dbBookmarks).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	bookmarks := make([]Bookmark, 0, len(dbBookmarks))
	for i := range dbBookmarks {
		bookmarks = append(bookmarks, *mapDBBookmarkToModel(&dbBookmarks[i]))
	}

	return bookmarks, nil
}

// GetByID fetches a bookmark by id regardless of owner. The ownership
// decision belongs to the service layer, which needs to distinguish a
// missing bookmark from someone else's.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Bookmark, error) {
	dbBookmark := new(database.Bookmark)
	err := r.db.NewSelect().
		Model(dbBookmark).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	return mapDBBookmarkToModel(dbBookmark), nil
}

// Update applies a partial edit and returns the updated bookmark.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Bookmark, error) {
	q := r.db.NewUpdate().
		Model((*database.Bookmark)(nil)).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	if params.Title != nil {
		q = q.Set("title = ?", *params.Title)
	}
	if params.Description != nil {
		q = q.Set("description = ?", *params.Description)
	}
	if params.Link != nil {
		q = q.Set("link = ?", *params.Link)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a bookmark by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Bookmark)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBBookmarkToModel(dbb *database.Bookmark) *Bookmark {
	return &Bookmark{
		ID:          dbb.ID,
		UserID:      dbb.UserID,
		Title:       dbb.Title,
		Description: dbb.Description,
		Link:        dbb.Link,
		CreatedAt:   dbb.CreatedAt,
		UpdatedAt:   dbb.UpdatedAt,
	}
}
