package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avanzatech/blog/authz"
	"github.com/avanzatech/blog/blog"
)

// PostHandler handles post endpoints
type PostHandler struct {
	posts *blog.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *blog.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// postSummary is the list-view shape: a content excerpt instead of the body.
type postSummary struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Excerpt     string        `json:"excerpt"`
	AuthorID    string        `json:"author_id"`
	Permissions []authz.Entry `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func summarize(posts []blog.PostWithMatrix) []postSummary {
	summaries := make([]postSummary, len(posts))
	for i, post := range posts {
		summaries[i] = postSummary{
			ID:          post.ID,
			Title:       post.Title,
			Excerpt:     post.Excerpt(),
			AuthorID:    post.AuthorID,
			Permissions: post.Matrix.Entries(),
			CreatedAt:   post.CreatedAt,
			UpdatedAt:   post.UpdatedAt,
		}
	}
	return summaries
}

// CreatePost handles POST /api/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input blog.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts handles GET /api/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	var input blog.ListPostsInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posts, total, err := h.posts.ListPosts(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":  summarize(posts),
		"count":  total,
		"limit":  input.Limit,
		"offset": input.Offset,
	})
}

// UpdatePost handles PUT /api/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var input blog.UpdatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), identityFrom(c), c.Param("id"), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
