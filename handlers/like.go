package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avanzatech/blog/blog"
)

// LikeHandler handles like endpoints
type LikeHandler struct {
	likes *blog.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *blog.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type createLikeInput struct {
	PostID string `json:"post_id" binding:"required"`
}

// CreateLike handles POST /api/likes
func (h *LikeHandler) CreateLike(c *gin.Context) {
	var input createLikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	like, err := h.likes.LikePost(c.Request.Context(), identityFrom(c), input.PostID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, like)
}

// DeleteLike handles DELETE /api/likes/:post_id. The optional user_id query
// parameter lets admins remove someone else's like.
func (h *LikeHandler) DeleteLike(c *gin.Context) {
	err := h.likes.UnlikePost(c.Request.Context(), identityFrom(c), c.Param("post_id"), c.Query("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "like removed"})
}

// ListLikes handles GET /api/likes
func (h *LikeHandler) ListLikes(c *gin.Context) {
	var input blog.ListLikesInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	likes, total, err := h.likes.ListLikes(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"likes":  likes,
		"count":  total,
		"limit":  input.Limit,
		"offset": input.Offset,
	})
}
