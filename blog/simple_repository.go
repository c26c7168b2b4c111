package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avanzatech/blog/authz"
)

// ============================================================================
// SimplePostRepository - SQL implementation of PostRepository
// ============================================================================

// SimplePostRepository implements PostRepository using SQL
type SimplePostRepository struct {
	db *sql.DB
}

// NewSimplePostRepository creates a new SimplePostRepository
func NewSimplePostRepository(db *sql.DB) *SimplePostRepository {
	return &SimplePostRepository{db: db}
}

// Ensure SimplePostRepository implements PostRepository
var _ PostRepository = (*SimplePostRepository)(nil)

// Create persists the post and its matrix rows atomically.
func (r *SimplePostRepository) Create(ctx context.Context, post *Post, matrix authz.Matrix) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blog_posts (id, title, content, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, post.ID, post.Title, post.Content, post.AuthorID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", mapPQError(err))
	}

	if err := insertMatrix(ctx, tx, post.ID, matrix); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a post with its matrix. The author's team comes from the
// users table at read time.
func (r *SimplePostRepository) Get(ctx context.Context, id string) (*PostWithMatrix, error) {
	var post Post
	var teamID sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.title, p.content, p.author_id, u.team_id, p.created_at, p.updated_at
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id).Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &teamID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.AuthorTeamID = teamID.String

	matrix, err := r.loadMatrix(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostWithMatrix{Post: post, Matrix: matrix}, nil
}

func (r *SimplePostRepository) loadMatrix(ctx context.Context, postID string) (authz.Matrix, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, access_level
		FROM post_permissions
		WHERE post_id = $1
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission matrix: %w", err)
	}
	defer rows.Close()

	var entries []authz.Entry
	for rows.Next() {
		var e authz.Entry
		if err := rows.Scan(&e.Category, &e.AccessLevel); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read permission rows: %w", err)
	}

	matrix, err := authz.NewMatrix(entries)
	if err != nil {
		return nil, fmt.Errorf("post %s has an invalid permission matrix: %w", postID, err)
	}
	return matrix, nil
}

// List returns all candidate posts with their matrices, newest first. The
// matrices are loaded in one extra query and stitched in memory.
func (r *SimplePostRepository) List(ctx context.Context, titleFilter string) ([]PostWithMatrix, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.content, p.author_id, u.team_id, p.created_at, p.updated_at
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE $1 = '' OR p.title ILIKE '%' || $1 || '%'
		ORDER BY p.created_at DESC, p.id
	`, titleFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		var teamID sql.NullString
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &teamID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.AuthorTeamID = teamID.String
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	if len(posts) == 0 {
		return []PostWithMatrix{}, nil
	}

	ids := make([]string, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	matrices, err := r.loadMatrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]PostWithMatrix, len(posts))
	for i, post := range posts {
		matrix, ok := matrices[post.ID]
		if !ok {
			return nil, fmt.Errorf("post %s has no permission matrix", post.ID)
		}
		result[i] = PostWithMatrix{Post: post, Matrix: matrix}
	}
	return result, nil
}

func (r *SimplePostRepository) loadMatrices(ctx context.Context, postIDs []string) (map[string]authz.Matrix, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT post_id, category, access_level
		FROM post_permissions
		WHERE post_id = ANY($1)
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load permission matrices: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]authz.Entry, len(postIDs))
	for rows.Next() {
		var postID string
		var e authz.Entry
		if err := rows.Scan(&postID, &e.Category, &e.AccessLevel); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		entries[postID] = append(entries[postID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read permission rows: %w", err)
	}

	matrices := make(map[string]authz.Matrix, len(entries))
	for postID, postEntries := range entries {
		matrix, err := authz.NewMatrix(postEntries)
		if err != nil {
			return nil, fmt.Errorf("post %s has an invalid permission matrix: %w", postID, err)
		}
		matrices[postID] = matrix
	}
	return matrices, nil
}

// Update rewrites the post fields and replaces the whole matrix in one
// transaction, delete-then-insert keyed by post.
func (r *SimplePostRepository) Update(ctx context.Context, post *Post, matrix authz.Matrix) error {
	post.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE blog_posts
		SET title = $2, content = $3, updated_at = $4
		WHERE id = $1
	`, post.ID, post.Title, post.Content, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_permissions WHERE post_id = $1`, post.ID); err != nil {
		return fmt.Errorf("failed to clear permission matrix: %w", err)
	}
	if err := insertMatrix(ctx, tx, post.ID, matrix); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the post. Likes, comments and permission rows cascade via
// foreign keys.
func (r *SimplePostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func insertMatrix(ctx context.Context, tx *sql.Tx, postID string, matrix authz.Matrix) error {
	for _, entry := range matrix.Entries() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO post_permissions (id, post_id, category, access_level, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), postID, entry.Category, entry.AccessLevel, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert permission row: %w", mapPQError(err))
		}
	}
	return nil
}

// mapPQError translates driver-level constraint violations into sentinel
// errors the service layer understands.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrAlreadyExists
		case "23503": // foreign_key_violation
			return ErrNotFound
		}
	}
	return err
}

// ============================================================================
// SimpleLikeRepository - SQL implementation of LikeRepository
// ============================================================================

// SimpleLikeRepository implements LikeRepository using SQL
type SimpleLikeRepository struct {
	db *sql.DB
}

// NewSimpleLikeRepository creates a new SimpleLikeRepository
func NewSimpleLikeRepository(db *sql.DB) *SimpleLikeRepository {
	return &SimpleLikeRepository{db: db}
}

// Ensure SimpleLikeRepository implements LikeRepository
var _ LikeRepository = (*SimpleLikeRepository)(nil)

// Create inserts a like; UNIQUE(post_id, user_id) turns a duplicate into
// ErrAlreadyExists.
func (r *SimpleLikeRepository) Create(ctx context.Context, like *Like) error {
	if like.ID == "" {
		like.ID = uuid.New().String()
	}
	like.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_post_likes (id, post_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, like.ID, like.PostID, like.UserID, like.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create like: %w", mapPQError(err))
	}
	return nil
}

// Find returns the like a user placed on a post.
func (r *SimpleLikeRepository) Find(ctx context.Context, postID, userID string) (*Like, error) {
	var like Like
	err := r.db.QueryRowContext(ctx, `
		SELECT id, post_id, user_id, created_at
		FROM blog_post_likes
		WHERE post_id = $1 AND user_id = $2
	`, postID, userID).Scan(&like.ID, &like.PostID, &like.UserID, &like.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

// Delete removes a user's like on a post.
func (r *SimpleLikeRepository) Delete(ctx context.Context, postID, userID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM blog_post_likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns likes newest first. Empty postID/userID mean no filter; a
// non-nil postIDs set restricts to those posts.
func (r *SimpleLikeRepository) List(ctx context.Context, postID, userID string, postIDs []string) ([]Like, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_id, user_id, created_at
		FROM blog_post_likes
		WHERE ($1 = '' OR post_id::text = $1)
		  AND ($2 = '' OR user_id::text = $2)
		  AND ($3::uuid[] IS NULL OR post_id = ANY($3::uuid[]))
		ORDER BY created_at DESC, id
	`, postID, userID, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var like Like
		if err := rows.Scan(&like.ID, &like.PostID, &like.UserID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read likes: %w", err)
	}
	return likes, nil
}

// ============================================================================
// SimpleCommentRepository - SQL implementation of CommentRepository
// ============================================================================

// SimpleCommentRepository implements CommentRepository using SQL
type SimpleCommentRepository struct {
	db *sql.DB
}

// NewSimpleCommentRepository creates a new SimpleCommentRepository
func NewSimpleCommentRepository(db *sql.DB) *SimpleCommentRepository {
	return &SimpleCommentRepository{db: db}
}

// Ensure SimpleCommentRepository implements CommentRepository
var _ CommentRepository = (*SimpleCommentRepository)(nil)

// Create inserts a comment.
func (r *SimpleCommentRepository) Create(ctx context.Context, comment *Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_post_comments (id, post_id, user_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.PostID, comment.UserID, comment.Body, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", mapPQError(err))
	}
	return nil
}

// Get retrieves a comment by ID.
func (r *SimpleCommentRepository) Get(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, post_id, user_id, comment, created_at
		FROM blog_post_comments
		WHERE id = $1
	`, id).Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment.
func (r *SimpleCommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_post_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns comments newest first, with the same narrowing semantics as
// likes.
func (r *SimpleCommentRepository) List(ctx context.Context, postID, userID string, postIDs []string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_id, user_id, comment, created_at
		FROM blog_post_comments
		WHERE ($1 = '' OR post_id::text = $1)
		  AND ($2 = '' OR user_id::text = $2)
		  AND ($3::uuid[] IS NULL OR post_id = ANY($3::uuid[]))
		ORDER BY created_at DESC, id
	`, postID, userID, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, nil
}
