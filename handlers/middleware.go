package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avanzatech/blog/authz"
	"github.com/avanzatech/blog/blog"
	"github.com/avanzatech/blog/services"
)

const identityKey = "identity"

// SessionAuthMiddleware resolves the request identity from a bearer token.
type SessionAuthMiddleware struct {
	auth *services.AuthService
}

// NewSessionAuthMiddleware creates a new SessionAuthMiddleware
func NewSessionAuthMiddleware(auth *services.AuthService) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{auth: auth}
}

// Authenticate extracts and verifies the bearer token, if any. Requests
// without a token proceed as anonymous; the permission engine decides what
// anonymous identities may see. A token that fails verification is a hard
// 401, not a silent downgrade to anonymous.
func (m *SessionAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Set(identityKey, authz.Anonymous())
			c.Next()
			return
		}

		identity, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests up front.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) authz.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(authz.Identity); ok {
			return identity
		}
	}
	return authz.Anonymous()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// statusFor maps service errors onto HTTP statuses: validation 400,
// authorization 403, missing objects 404. An existing-but-inaccessible
// object is always 403, a nonexistent one always 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, blog.ErrInvalidInput), errors.Is(err, blog.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, blog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, blog.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
