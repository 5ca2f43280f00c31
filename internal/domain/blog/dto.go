// internal/domain/blog/dto.go
package blog

// CreatePostRequest for authoring a new article
type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags"`
	CoverURL string   `json:"cover_url"`
	Publish  bool     `json:"publish"`
}

// UpdatePostRequest for editing an article
type UpdatePostRequest struct {
	Title    *string  `json:"title"`
	Summary  *string  `json:"summary"`
	Content  *string  `json:"content"`
	Tags     []string `json:"tags"`
	CoverURL *string  `json:"cover_url"`
}

// ListFilter narrows post listings
type ListFilter struct {
	Tag           string
	PublishedOnly bool
	Limit         int
	Offset        int
}
