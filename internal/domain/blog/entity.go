// internal/domain/blog/entity.go
package blog

import (
	"database/sql"
	"time"
)

// Post is a marketing/education article managed through the back office.
type Post struct {
	ID          int64          `json:"id" db:"id"`
	AuthorID    int64          `json:"author_id" db:"author_id"`
	Title       string         `json:"title" db:"title"`
	Slug        string         `json:"slug" db:"slug"`
	Summary     sql.NullString `json:"summary" db:"summary"`
	Content     string         `json:"content" db:"content"`
	Tags        []string       `json:"tags" db:"tags"`
	CoverURL    sql.NullString `json:"cover_url" db:"cover_url"`
	Published   bool           `json:"published" db:"published"`
	PublishedAt sql.NullTime   `json:"published_at" db:"published_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt   sql.NullTime   `json:"-" db:"deleted_at"`
}
