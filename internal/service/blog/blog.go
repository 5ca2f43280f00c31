// internal/service/blog/blog.go
package blog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"carecycle-service/internal/domain/blog"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type BlogService struct {
	blogRepo *postgres.BlogRepository
	logger   *zap.Logger
}

func NewBlogService(blogRepo *postgres.BlogRepository, logger *zap.Logger) *BlogService {
	return &BlogService{blogRepo: blogRepo, logger: logger}
}

// CreatePost authors a new article
func (s *BlogService) CreatePost(ctx context.Context, authorID int64, req *blog.CreatePostRequest) (*blog.Post, error) {
	post := &blog.Post{
		AuthorID:  authorID,
		Title:     req.Title,
		Slug:      slugify(req.Title),
		Summary:   sql.NullString{String: req.Summary, Valid: req.Summary != ""},
		Content:   req.Content,
		Tags:      req.Tags,
		CoverURL:  sql.NullString{String: req.CoverURL, Valid: req.CoverURL != ""},
		Published: req.Publish,
	}
	if req.Publish {
		post.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	// Keep slugs unique without a retry loop; a timestamp suffix is enough
	if existing, err := s.blogRepo.FindBySlug(ctx, post.Slug); err == nil && existing != nil {
		post.Slug = fmt.Sprintf("%s-%d", post.Slug, time.Now().Unix())
	}

	if err := s.blogRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("blog post created",
		zap.Int64("post_id", post.ID),
		zap.String("slug", post.Slug),
		zap.Bool("published", post.Published),
	)

	return post, nil
}

// GetPost returns one post by ID
func (s *BlogService) GetPost(ctx context.Context, id int64) (*blog.Post, error) {
	return s.blogRepo.FindByID(ctx, id)
}

// GetPostBySlug returns one published post for public reading
func (s *BlogService) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	post, err := s.blogRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, xerrors.ErrNotFound
	}
	return post, nil
}

// ListPosts returns posts matching the filter
func (s *BlogService) ListPosts(ctx context.Context, filter *blog.ListFilter) ([]blog.Post, int64, error) {
	return s.blogRepo.List(ctx, filter)
}

// UpdatePost applies partial edits to an article
func (s *BlogService) UpdatePost(ctx context.Context, id int64, req *blog.UpdatePostRequest) (*blog.Post, error) {
	post, err := s.blogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
		post.Slug = slugify(*req.Title)
	}
	if req.Summary != nil {
		post.Summary = sql.NullString{String: *req.Summary, Valid: *req.Summary != ""}
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.CoverURL != nil {
		post.CoverURL = sql.NullString{String: *req.CoverURL, Valid: *req.CoverURL != ""}
	}

	if err := s.blogRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// PublishPost makes an article publicly visible
func (s *BlogService) PublishPost(ctx context.Context, id int64) error {
	return s.blogRepo.SetPublished(ctx, id, true)
}

// UnpublishPost pulls an article from public view
func (s *BlogService) UnpublishPost(ctx context.Context, id int64) error {
	return s.blogRepo.SetPublished(ctx, id, false)
}

// DeletePost soft-deletes an article
func (s *BlogService) DeletePost(ctx context.Context, id int64) error {
	return s.blogRepo.SoftDelete(ctx, id)
}

// slugify turns a title into a URL-safe slug
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
