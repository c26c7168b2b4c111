package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avanzatech/blog/authz"
)

// Common errors
var (
	ErrForbidden     = errors.New("forbidden: you don't have permission to perform this action")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page bounds a list request. Zero values fall back to the defaults.
type Page struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (p Page) bounds() (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate[T any](items []T, page Page) []T {
	limit, offset := page.bounds()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// PostService handles blog post business logic. Every operation runs the
// request identity through the permission evaluator before touching storage.
type PostService struct {
	repo PostRepository
}

// NewPostService creates a new post service
func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

// CreatePostInput represents input for creating a post
type CreatePostInput struct {
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Permissions []authz.Entry `json:"permissions"`
}

// CreatePost creates a post authored by the requesting identity. The
// submitted matrix must cover all four categories; validation failure aborts
// the whole creation, so a post without a matrix never exists.
func (s *PostService) CreatePost(ctx context.Context, identity authz.Identity, input CreatePostInput) (*PostWithMatrix, error) {
	if !identity.Authenticated {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	matrix, err := authz.NewMatrix(input.Permissions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	post := &Post{
		Title:        input.Title,
		Content:      input.Content,
		AuthorID:     identity.UserID,
		AuthorTeamID: identity.TeamID,
	}
	if err := s.repo.Create(ctx, post, matrix); err != nil {
		return nil, err
	}
	return &PostWithMatrix{Post: *post, Matrix: matrix}, nil
}

// GetPost retrieves a single post. An existing but inaccessible post is
// ErrForbidden; a nonexistent one is ErrNotFound, uniformly.
func (s *PostService) GetPost(ctx context.Context, identity authz.Identity, id string) (*PostWithMatrix, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanRead(identity, post.Access()) {
		return nil, ErrForbidden
	}
	return post, nil
}

// ListPostsInput represents input for listing posts
type ListPostsInput struct {
	Title string `form:"title"`
	Page
}

// ListPosts returns the page of posts visible to the identity, newest first,
// plus the total visible count. Listing never fails on access grounds; it
// silently narrows.
func (s *PostService) ListPosts(ctx context.Context, identity authz.Identity, input ListPostsInput) ([]PostWithMatrix, int, error) {
	candidates, err := s.repo.List(ctx, input.Title)
	if err != nil {
		return nil, 0, err
	}
	visible := authz.VisiblePosts(identity, candidates, PostWithMatrix.Access)
	return paginate(visible, input.Page), len(visible), nil
}

// UpdatePostInput represents input for updating a post
type UpdatePostInput struct {
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Permissions []authz.Entry `json:"permissions"`
}

// UpdatePost rewrites a post's fields and fully replaces its matrix. Requires
// edit-level access; the author is always carried over from the stored post,
// never taken from the request.
func (s *PostService) UpdatePost(ctx context.Context, identity authz.Identity, id string, input UpdatePostInput) (*PostWithMatrix, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditPost(identity, existing.Access()) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	matrix, err := authz.NewMatrix(input.Permissions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	updated := existing.Post
	updated.Title = input.Title
	updated.Content = input.Content
	if err := s.repo.Update(ctx, &updated, matrix); err != nil {
		return nil, err
	}
	return &PostWithMatrix{Post: updated, Matrix: matrix}, nil
}

// DeletePost removes a post. Only the author (holding edit access) or an
// admin may delete; team edit access grants update rights but not delete
// rights. Deletion cascades to likes, comments and matrix rows.
func (s *PostService) DeletePost(ctx context.Context, identity authz.Identity, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDeletePost(identity, existing.Access()) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// visiblePostIDs resolves the set of post IDs the identity may see, used to
// scope like and comment listings. Admins get a nil set, meaning unrestricted.
func visiblePostIDs(ctx context.Context, repo PostRepository, identity authz.Identity) ([]string, error) {
	if identity.Admin {
		return nil, nil
	}
	candidates, err := repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	visible := authz.VisiblePosts(identity, candidates, PostWithMatrix.Access)
	ids := make([]string, len(visible))
	for i, post := range visible {
		ids[i] = post.ID
	}
	return ids, nil
}

// LikeService handles like business logic. Engagement reuses the post
// evaluator with the weaker read-level rule.
type LikeService struct {
	posts PostRepository
	likes LikeRepository
}

// NewLikeService creates a new like service
func NewLikeService(posts PostRepository, likes LikeRepository) *LikeService {
	return &LikeService{posts: posts, likes: likes}
}

// LikePost records a like on a post the identity can read. Liking the same
// post twice fails with ErrAlreadyExists.
func (s *LikeService) LikePost(ctx context.Context, identity authz.Identity, postID string) (*Like, error) {
	if !identity.Authenticated {
		return nil, ErrForbidden
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadForEngagement(identity, post.Access()) {
		return nil, ErrForbidden
	}

	like := &Like{PostID: postID, UserID: identity.UserID}
	if err := s.likes.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// UnlikePost removes a like. userID selects whose like to remove; empty means
// the requester's own. Only the like's creator or an admin may remove it.
func (s *LikeService) UnlikePost(ctx context.Context, identity authz.Identity, postID, userID string) error {
	if !identity.Authenticated {
		return ErrForbidden
	}
	if userID == "" {
		userID = identity.UserID
	}
	if userID != identity.UserID && !identity.Admin {
		return ErrForbidden
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return err
	}
	if _, err := s.likes.Find(ctx, postID, userID); err != nil {
		return err
	}
	return s.likes.Delete(ctx, postID, userID)
}

// ListLikesInput represents input for listing likes
type ListLikesInput struct {
	PostID string `form:"post_id"`
	UserID string `form:"user_id"`
	Page
}

// ListLikes returns likes on posts visible to the identity, newest first.
func (s *LikeService) ListLikes(ctx context.Context, identity authz.Identity, input ListLikesInput) ([]Like, int, error) {
	postIDs, err := visiblePostIDs(ctx, s.posts, identity)
	if err != nil {
		return nil, 0, err
	}
	likes, err := s.likes.List(ctx, input.PostID, input.UserID, postIDs)
	if err != nil {
		return nil, 0, err
	}
	return paginate(likes, input.Page), len(likes), nil
}

// CommentService handles comment business logic.
type CommentService struct {
	posts    PostRepository
	comments CommentRepository
}

// NewCommentService creates a new comment service
func NewCommentService(posts PostRepository, comments CommentRepository) *CommentService {
	return &CommentService{posts: posts, comments: comments}
}

// CreateCommentInput represents input for commenting on a post
type CreateCommentInput struct {
	PostID string `json:"post_id"`
	Body   string `json:"comment"`
}

// CreateComment records a comment on a post the identity can read.
func (s *CommentService) CreateComment(ctx context.Context, identity authz.Identity, input CreateCommentInput) (*Comment, error) {
	if !identity.Authenticated {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	post, err := s.posts.Get(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadForEngagement(identity, post.Access()) {
		return nil, ErrForbidden
	}

	comment := &Comment{PostID: input.PostID, UserID: identity.UserID, Body: input.Body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the comment's creator or an admin may
// remove it.
func (s *CommentService) DeleteComment(ctx context.Context, identity authz.Identity, id string) error {
	if !identity.Authenticated {
		return ErrForbidden
	}
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != identity.UserID && !identity.Admin {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, id)
}

// ListCommentsInput represents input for listing comments
type ListCommentsInput struct {
	PostID string `form:"post_id"`
	UserID string `form:"user_id"`
	Page
}

// ListComments returns comments on posts visible to the identity, newest
// first.
func (s *CommentService) ListComments(ctx context.Context, identity authz.Identity, input ListCommentsInput) ([]Comment, int, error) {
	postIDs, err := visiblePostIDs(ctx, s.posts, identity)
	if err != nil {
		return nil, 0, err
	}
	comments, err := s.comments.List(ctx, input.PostID, input.UserID, postIDs)
	if err != nil {
		return nil, 0, err
	}
	return paginate(comments, input.Page), len(comments), nil
}
