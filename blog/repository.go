package blog

import (
	"context"
	"time"

	"github.com/avanzatech/blog/authz"
)

// Post represents a blog post. AuthorTeamID is joined from the author's user
// row at load time so team changes take effect immediately; it is never
// stored on the post itself.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorID     string    `json:"author_id"`
	AuthorTeamID string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Excerpt returns the first 200 characters of the content, used in list
// responses.
func (p Post) Excerpt() string {
	runes := []rune(p.Content)
	if len(runes) <= 200 {
		return p.Content
	}
	return string(runes[:200])
}

// PostWithMatrix bundles a post with its permission matrix. Every post loaded
// from storage carries a complete four-entry matrix.
type PostWithMatrix struct {
	Post
	Matrix authz.Matrix `json:"permissions"`
}

// Access projects the slice of the post the permission evaluator consumes.
func (p PostWithMatrix) Access() authz.PostAccess {
	return authz.PostAccess{
		AuthorID:     p.AuthorID,
		AuthorTeamID: p.AuthorTeamID,
		Matrix:       p.Matrix,
	}
}

// Like represents a user liking a post; unique per (post, user).
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a user's comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRepository handles post and permission-matrix persistence.
// This is purely a data access layer - no authorization logic.
type PostRepository interface {
	// Create persists the post and its four matrix rows in one transaction.
	// The matrix must already be validated; on any failure nothing is written.
	Create(ctx context.Context, post *Post, matrix authz.Matrix) error

	// Get retrieves a post together with its matrix.
	Get(ctx context.Context, id string) (*PostWithMatrix, error)

	// List returns candidate posts with their matrices, newest first,
	// optionally narrowed by a case-insensitive title substring. Visibility
	// filtering happens in the service, not here.
	List(ctx context.Context, titleFilter string) ([]PostWithMatrix, error)

	// Update rewrites the post's fields and replaces all four matrix rows in
	// one transaction. Readers see either the old matrix or the new one,
	// never a mix.
	Update(ctx context.Context, post *Post, matrix authz.Matrix) error

	// Delete removes the post; permission rows, likes and comments cascade.
	Delete(ctx context.Context, id string) error
}

// LikeRepository handles like persistence.
type LikeRepository interface {
	// Create inserts a like; a duplicate (post, user) pair fails with
	// ErrAlreadyExists.
	Create(ctx context.Context, like *Like) error

	// Find returns the like a user placed on a post, or ErrNotFound.
	Find(ctx context.Context, postID, userID string) (*Like, error)

	// Delete removes a user's like on a post.
	Delete(ctx context.Context, postID, userID string) error

	// List returns likes newest first, optionally narrowed by post and user.
	// postIDs, when non-nil, restricts results to those posts; the service
	// passes the requester's visible post set.
	List(ctx context.Context, postID, userID string, postIDs []string) ([]Like, error)
}

// CommentRepository handles comment persistence.
type CommentRepository interface {
	// Create inserts a comment.
	Create(ctx context.Context, comment *Comment) error

	// Get retrieves a comment by ID.
	Get(ctx context.Context, id string) (*Comment, error)

	// Delete removes a comment.
	Delete(ctx context.Context, id string) error

	// List returns comments newest first, optionally narrowed by post and
	// user, restricted to postIDs when non-nil.
	List(ctx context.Context, postID, userID string, postIDs []string) ([]Comment, error)
}
