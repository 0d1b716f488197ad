package bookmark

import (
	"time"

	"github.com/google/uuid"
)

type Bookmark struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams are the caller-supplied fields of a new bookmark.
type CreateParams struct {
	Title       string
	Description *string
	Link        string
}

// UpdateParams carries the optional fields of a bookmark edit. Nil means
// leave unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	Link        *string
}
