package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avanzatech/blog/blog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	comments *blog.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *blog.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// CreateComment handles POST /api/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input blog.CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.comments.DeleteComment(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ListComments handles GET /api/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	var input blog.ListCommentsInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, total, err := h.comments.ListComments(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    total,
		"limit":    input.Limit,
		"offset":   input.Offset,
	})
}
