// internal/repository/postgres/blog_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carecycle-service/internal/domain/blog"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type BlogRepository struct {
	db *pgxpool.Pool
}

func NewBlogRepository(db *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{db: db}
}

// Create inserts a new post
func (r *BlogRepository) Create(ctx context.Context, p *blog.Post) error {
	query := `
		INSERT INTO blog_posts (
			author_id, title, slug, summary, content, tags, cover_url,
			published, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.AuthorID, p.Title, p.Slug, p.Summary, p.Content, p.Tags, p.CoverURL,
		p.Published, p.PublishedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// FindByID retrieves a post by ID
func (r *BlogRepository) FindByID(ctx context.Context, id int64) (*blog.Post, error) {
	query := `
		SELECT id, author_id, title, slug, summary, content, tags, cover_url,
		       published, published_at, created_at, updated_at, deleted_at
		FROM blog_posts
		WHERE id = $1 AND deleted_at IS NULL
	`

	var p blog.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Summary, &p.Content, &p.Tags, &p.CoverURL,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return &p, nil
}

// FindBySlug retrieves a post by its URL slug
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	query := `
		SELECT id, author_id, title, slug, summary, content, tags, cover_url,
		       published, published_at, created_at, updated_at, deleted_at
		FROM blog_posts
		WHERE slug = $1 AND deleted_at IS NULL
	`

	var p blog.Post
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Summary, &p.Content, &p.Tags, &p.CoverURL,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return &p, nil
}

// List returns posts matching the filter, newest first
func (r *BlogRepository) List(ctx context.Context, filter *blog.ListFilter) ([]blog.Post, int64, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if filter.PublishedOnly {
		conditions = append(conditions, "published = TRUE")
	}

	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tags && $%d", argPos))
		args = append(args, pq.Array([]string{filter.Tag}))
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM blog_posts WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, author_id, title, slug, summary, content, tags, cover_url,
		       published, published_at, created_at, updated_at, deleted_at
		FROM blog_posts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []blog.Post
	for rows.Next() {
		var p blog.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Summary, &p.Content, &p.Tags, &p.CoverURL,
			&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, total, rows.Err()
}

// Update persists edits to an existing post
func (r *BlogRepository) Update(ctx context.Context, p *blog.Post) error {
	query := `
		UPDATE blog_posts
		SET title = $1, slug = $2, summary = $3, content = $4, tags = $5,
		    cover_url = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(
		ctx, query,
		p.Title, p.Slug, p.Summary, p.Content, p.Tags, p.CoverURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetPublished flips the published flag, stamping published_at on first publish
func (r *BlogRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	query := `
		UPDATE blog_posts
		SET published = $1,
		    published_at = CASE WHEN $1 AND published_at IS NULL THEN NOW() ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, published, id)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SoftDelete hides a post without removing the row
func (r *BlogRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE blog_posts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
