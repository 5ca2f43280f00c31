// internal/handlers/blog/blog_handler.go
package blog

import (
	"net/http"
	"strconv"

	"carecycle-service/internal/domain/blog"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	blogUsecase "carecycle-service/internal/service/blog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BlogHandler struct {
	blogService *blogUsecase.BlogService
	logger      *zap.Logger
}

func NewBlogHandler(blogService *blogUsecase.BlogService, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{blogService: blogService, logger: logger}
}

// ListPublished returns published posts for public reading
func (h *BlogHandler) ListPublished(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, total, err := h.blogService.ListPosts(c.Request.Context(), &blog.ListFilter{
		Tag:           c.Query("tag"),
		PublishedOnly: true,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list posts", err)
		return
	}

	response.Success(c, http.StatusOK, "posts", gin.H{"posts": posts, "total": total})
}

// GetBySlug returns one published post
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blogService.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	response.Success(c, http.StatusOK, "post", post)
}

// ========== Back office ==========

// ListAll returns all posts including drafts (staff only)
func (h *BlogHandler) ListAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, total, err := h.blogService.ListPosts(c.Request.Context(), &blog.ListFilter{
		Tag:    c.Query("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list posts", err)
		return
	}

	response.Success(c, http.StatusOK, "posts", gin.H{"posts": posts, "total": total})
}

// Create authors a new post (staff only)
func (h *BlogHandler) Create(c *gin.Context) {
	var req blog.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	post, err := h.blogService.CreatePost(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		h.logger.Error("post creation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to create post", err)
		return
	}

	response.Success(c, http.StatusCreated, "post created", post)
}

// Update edits an existing post (staff only)
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid post id", err)
		return
	}

	var req blog.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	post, err := h.blogService.UpdatePost(c.Request.Context(), id, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update post", err)
		return
	}

	response.Success(c, http.StatusOK, "post updated", post)
}

// Publish makes a post public (staff only)
func (h *BlogHandler) Publish(c *gin.Context) {
	h.setPublished(c, true, "post published")
}

// Unpublish pulls a post from public view (staff only)
func (h *BlogHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false, "post unpublished")
}

func (h *BlogHandler) setPublished(c *gin.Context, published bool, message string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid post id", err)
		return
	}

	var svcErr error
	if published {
		svcErr = h.blogService.PublishPost(c.Request.Context(), id)
	} else {
		svcErr = h.blogService.UnpublishPost(c.Request.Context(), id)
	}
	if svcErr != nil {
		if xerrors.Is(svcErr, xerrors.ErrNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update post", svcErr)
		return
	}

	response.Success(c, http.StatusOK, message, nil)
}

// Delete removes a post (staff only)
func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid post id", err)
		return
	}

	if err := h.blogService.DeletePost(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete post", err)
		return
	}

	response.Success(c, http.StatusOK, "post deleted", nil)
}
