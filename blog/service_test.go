package blog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avanzatech/blog/authz"
)

// ============================================================================
// Fake repositories
// ============================================================================

type fakePostRepo struct {
	posts   map[string]*PostWithMatrix
	order   []string
	failOps map[string]error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*PostWithMatrix{}, failOps: map[string]error{}}
}

func (f *fakePostRepo) Create(ctx context.Context, post *Post, matrix authz.Matrix) error {
	if err := f.failOps["create"]; err != nil {
		return err
	}
	if post.ID == "" {
		post.ID = fmt.Sprintf("post-%d", len(f.posts)+1)
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	f.posts[post.ID] = &PostWithMatrix{Post: *post, Matrix: matrix.Clone()}
	f.order = append([]string{post.ID}, f.order...)
	return nil
}

func (f *fakePostRepo) Get(ctx context.Context, id string) (*PostWithMatrix, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *post
	copied.Matrix = post.Matrix.Clone()
	return &copied, nil
}

func (f *fakePostRepo) List(ctx context.Context, titleFilter string) ([]PostWithMatrix, error) {
	if err := f.failOps["list"]; err != nil {
		return nil, err
	}
	var result []PostWithMatrix
	for _, id := range f.order {
		result = append(result, *f.posts[id])
	}
	return result, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *Post, matrix authz.Matrix) error {
	if err := f.failOps["update"]; err != nil {
		return err
	}
	existing, ok := f.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = time.Now()
	f.posts[post.ID] = &PostWithMatrix{Post: *post, Matrix: matrix.Clone()}
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return ErrNotFound
	}
	delete(f.posts, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeLikeRepo struct {
	likes map[string]*Like // key: postID/userID
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[string]*Like{}}
}

func likeKey(postID, userID string) string { return postID + "/" + userID }

func (f *fakeLikeRepo) Create(ctx context.Context, like *Like) error {
	key := likeKey(like.PostID, like.UserID)
	if _, ok := f.likes[key]; ok {
		return ErrAlreadyExists
	}
	like.ID = fmt.Sprintf("like-%d", len(f.likes)+1)
	like.CreatedAt = time.Now()
	f.likes[key] = like
	return nil
}

func (f *fakeLikeRepo) Find(ctx context.Context, postID, userID string) (*Like, error) {
	like, ok := f.likes[likeKey(postID, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	return like, nil
}

func (f *fakeLikeRepo) Delete(ctx context.Context, postID, userID string) error {
	key := likeKey(postID, userID)
	if _, ok := f.likes[key]; !ok {
		return ErrNotFound
	}
	delete(f.likes, key)
	return nil
}

func (f *fakeLikeRepo) List(ctx context.Context, postID, userID string, postIDs []string) ([]Like, error) {
	allowed := map[string]bool{}
	for _, id := range postIDs {
		allowed[id] = true
	}
	var result []Like
	for _, like := range f.likes {
		if postID != "" && like.PostID != postID {
			continue
		}
		if userID != "" && like.UserID != userID {
			continue
		}
		if postIDs != nil && !allowed[like.PostID] {
			continue
		}
		result = append(result, *like)
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments map[string]*Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]*Comment{}}
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(f.comments)+1)
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentRepo) Get(ctx context.Context, id string) (*Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return comment, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) List(ctx context.Context, postID, userID string, postIDs []string) ([]Comment, error) {
	allowed := map[string]bool{}
	for _, id := range postIDs {
		allowed[id] = true
	}
	var result []Comment
	for _, comment := range f.comments {
		if postID != "" && comment.PostID != postID {
			continue
		}
		if userID != "" && comment.UserID != userID {
			continue
		}
		if postIDs != nil && !allowed[comment.PostID] {
			continue
		}
		result = append(result, *comment)
	}
	return result, nil
}

// ============================================================================
// Shared fixtures
// ============================================================================

var (
	authorIdentity   = authz.Identity{Authenticated: true, UserID: "user-author", TeamID: "team-1"}
	teammateIdentity = authz.Identity{Authenticated: true, UserID: "user-teammate", TeamID: "team-1"}
	strangerIdentity = authz.Identity{Authenticated: true, UserID: "user-stranger", TeamID: "team-2"}
	adminIdentity    = authz.Identity{Authenticated: true, Admin: true, UserID: "user-admin", TeamID: "team-9"}
)

func entriesFor(public, auth, team, author authz.AccessLevel) []authz.Entry {
	return []authz.Entry{
		{Category: authz.CategoryPublic, AccessLevel: public},
		{Category: authz.CategoryAuthenticated, AccessLevel: auth},
		{Category: authz.CategoryTeam, AccessLevel: team},
		{Category: authz.CategoryAuthor, AccessLevel: author},
	}
}

func seedPost(t *testing.T, repo *fakePostRepo, id string, entries []authz.Entry) {
	t.Helper()
	matrix, err := authz.NewMatrix(entries)
	if err != nil {
		t.Fatalf("seed matrix: %v", err)
	}
	post := &Post{
		ID:           id,
		Title:        "title " + id,
		Content:      "content " + id,
		AuthorID:     authorIdentity.UserID,
		AuthorTeamID: authorIdentity.TeamID,
	}
	if err := repo.Create(context.Background(), post, matrix); err != nil {
		t.Fatalf("seed post: %v", err)
	}
}

// ============================================================================
// PostService
// ============================================================================

func TestPostServiceCreatePost(t *testing.T) {
	tests := []struct {
		name     string
		identity authz.Identity
		input    CreatePostInput
		wantErr  error
	}{
		{
			name:     "authenticated user creates post",
			identity: authorIdentity,
			input: CreatePostInput{
				Title:       "Hello",
				Content:     "World",
				Permissions: entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit),
			},
		},
		{
			name:     "anonymous cannot create",
			identity: authz.Anonymous(),
			input: CreatePostInput{
				Title:       "Hello",
				Content:     "World",
				Permissions: entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit),
			},
			wantErr: ErrForbidden,
		},
		{
			name:     "missing category aborts creation",
			identity: authorIdentity,
			input: CreatePostInput{
				Title:   "Hello",
				Content: "World",
				Permissions: []authz.Entry{
					{Category: authz.CategoryPublic, AccessLevel: authz.AccessRead},
					{Category: authz.CategoryAuthor, AccessLevel: authz.AccessEdit},
				},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:     "duplicate category aborts creation",
			identity: authorIdentity,
			input: CreatePostInput{
				Title:   "Hello",
				Content: "World",
				Permissions: append(
					entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit),
					authz.Entry{Category: authz.CategoryPublic, AccessLevel: authz.AccessNone},
				),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:     "unknown access level aborts creation",
			identity: authorIdentity,
			input: CreatePostInput{
				Title:       "Hello",
				Content:     "World",
				Permissions: entriesFor(authz.AccessLevel("write"), authz.AccessRead, authz.AccessEdit, authz.AccessEdit),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:     "empty title rejected",
			identity: authorIdentity,
			input: CreatePostInput{
				Title:       "   ",
				Content:     "World",
				Permissions: entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit),
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			service := NewPostService(repo)

			post, err := service.CreatePost(context.Background(), tt.identity, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreatePost() error = %v, want %v", err, tt.wantErr)
				}
				if len(repo.posts) != 0 {
					t.Error("failed creation must not persist a post")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreatePost() error = %v", err)
			}
			if post.AuthorID != tt.identity.UserID {
				t.Errorf("AuthorID = %s, want %s", post.AuthorID, tt.identity.UserID)
			}
			stored, err := repo.Get(context.Background(), post.ID)
			if err != nil {
				t.Fatalf("stored post not found: %v", err)
			}
			if len(stored.Matrix) != 4 {
				t.Errorf("stored matrix has %d entries, want 4", len(stored.Matrix))
			}
			for _, e := range tt.input.Permissions {
				if stored.Matrix[e.Category] != e.AccessLevel {
					t.Errorf("matrix[%s] = %s, want %s", e.Category, stored.Matrix[e.Category], e.AccessLevel)
				}
			}
		})
	}
}

func TestPostServiceGetPost(t *testing.T) {
	repo := newFakePostRepo()
	service := NewPostService(repo)
	seedPost(t, repo, "post-1", entriesFor(authz.AccessRead, authz.AccessNone, authz.AccessNone, authz.AccessEdit))

	tests := []struct {
		name     string
		identity authz.Identity
		postID   string
		wantErr  error
	}{
		{"anonymous reads public post", authz.Anonymous(), "post-1", nil},
		{"stranger denied by authenticated row", strangerIdentity, "post-1", ErrForbidden},
		{"teammate denied by team row", teammateIdentity, "post-1", ErrForbidden},
		{"author allowed", authorIdentity, "post-1", nil},
		{"admin allowed", adminIdentity, "post-1", nil},
		{"missing post is not found", authorIdentity, "post-404", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GetPost(context.Background(), tt.identity, tt.postID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetPost() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostServiceUpdatePost(t *testing.T) {
	validPermissions := entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit)

	tests := []struct {
		name     string
		entries  []authz.Entry
		identity authz.Identity
		input    UpdatePostInput
		wantErr  error
	}{
		{
			name:     "author with edit updates",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessNone, authz.AccessEdit),
			identity: authorIdentity,
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
		},
		{
			name:     "teammate with edit updates",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessEdit, authz.AccessEdit),
			identity: teammateIdentity,
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
		},
		{
			// Scenario B from the access model: the team row governs the
			// teammate even when the authenticated row would grant more.
			name:     "teammate denied when team row is none despite authenticated edit",
			entries:  entriesFor(authz.AccessNone, authz.AccessEdit, authz.AccessNone, authz.AccessEdit),
			identity: teammateIdentity,
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
			wantErr:  ErrForbidden,
		},
		{
			name:     "read access is not enough",
			entries:  entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessRead, authz.AccessEdit),
			identity: strangerIdentity,
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
			wantErr:  ErrForbidden,
		},
		{
			name:     "anonymous denied",
			entries:  entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessRead, authz.AccessEdit),
			identity: authz.Anonymous(),
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
			wantErr:  ErrForbidden,
		},
		{
			name:     "admin updates an all-none matrix",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessNone, authz.AccessNone),
			identity: adminIdentity,
			input:    UpdatePostInput{Title: "new", Content: "body", Permissions: validPermissions},
		},
		{
			name:     "invalid replacement matrix rejected",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessNone, authz.AccessEdit),
			identity: authorIdentity,
			input: UpdatePostInput{Title: "new", Content: "body", Permissions: []authz.Entry{
				{Category: authz.CategoryPublic, AccessLevel: authz.AccessRead},
			}},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			service := NewPostService(repo)
			seedPost(t, repo, "post-1", tt.entries)
			before, _ := repo.Get(context.Background(), "post-1")

			updated, err := service.UpdatePost(context.Background(), tt.identity, "post-1", tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdatePost() error = %v, want %v", err, tt.wantErr)
				}
				after, _ := repo.Get(context.Background(), "post-1")
				for _, category := range authz.Categories() {
					if after.Matrix[category] != before.Matrix[category] {
						t.Errorf("failed update must leave matrix unchanged: %s changed", category)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdatePost() error = %v", err)
			}
			if updated.AuthorID != authorIdentity.UserID {
				t.Errorf("AuthorID = %s, want server-assigned %s", updated.AuthorID, authorIdentity.UserID)
			}
			stored, _ := repo.Get(context.Background(), "post-1")
			if stored.Title != "new" {
				t.Errorf("Title = %s, want new", stored.Title)
			}
			for _, e := range tt.input.Permissions {
				if stored.Matrix[e.Category] != e.AccessLevel {
					t.Errorf("matrix[%s] = %s, want %s", e.Category, stored.Matrix[e.Category], e.AccessLevel)
				}
			}
		})
	}
}

func TestPostServiceDeletePost(t *testing.T) {
	teamEditable := entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessEdit, authz.AccessEdit)

	tests := []struct {
		name     string
		identity authz.Identity
		wantErr  error
	}{
		{"author deletes own post", authorIdentity, nil},
		{"teammate with edit cannot delete", teammateIdentity, ErrForbidden},
		{"stranger cannot delete", strangerIdentity, ErrForbidden},
		{"admin deletes any post", adminIdentity, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			service := NewPostService(repo)
			seedPost(t, repo, "post-1", teamEditable)

			err := service.DeletePost(context.Background(), tt.identity, "post-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DeletePost() error = %v, want %v", err, tt.wantErr)
			}
			_, getErr := repo.Get(context.Background(), "post-1")
			if tt.wantErr == nil && !errors.Is(getErr, ErrNotFound) {
				t.Error("post should be gone after delete")
			}
			if tt.wantErr != nil && getErr != nil {
				t.Error("post should survive a forbidden delete")
			}
		})
	}
}

func TestPostServiceListPosts(t *testing.T) {
	repo := newFakePostRepo()
	service := NewPostService(repo)

	// Newest first: post-3 (hidden to strangers), post-2, post-1.
	seedPost(t, repo, "post-1", entriesFor(authz.AccessNone, authz.AccessRead, authz.AccessRead, authz.AccessEdit))
	seedPost(t, repo, "post-2", entriesFor(authz.AccessNone, authz.AccessRead, authz.AccessNone, authz.AccessEdit))
	seedPost(t, repo, "post-3", entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessEdit, authz.AccessEdit))

	t.Run("stranger sees the two authenticated-readable posts", func(t *testing.T) {
		posts, total, err := service.ListPosts(context.Background(), strangerIdentity, ListPostsInput{})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if total != 2 || len(posts) != 2 {
			t.Fatalf("got %d posts (total %d), want 2", len(posts), total)
		}
		if posts[0].ID != "post-2" || posts[1].ID != "post-1" {
			t.Errorf("order = [%s %s], want [post-2 post-1]", posts[0].ID, posts[1].ID)
		}
	})

	t.Run("anonymous sees nothing and gets no error", func(t *testing.T) {
		posts, total, err := service.ListPosts(context.Background(), authz.Anonymous(), ListPostsInput{})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if total != 0 || len(posts) != 0 {
			t.Errorf("got %d posts (total %d), want 0", len(posts), total)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		_, total, err := service.ListPosts(context.Background(), adminIdentity, ListPostsInput{})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	t.Run("pagination slices after filtering", func(t *testing.T) {
		posts, total, err := service.ListPosts(context.Background(), strangerIdentity, ListPostsInput{
			Page: Page{Limit: 1, Offset: 1},
		})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		if len(posts) != 1 || posts[0].ID != "post-1" {
			t.Errorf("page = %v, want [post-1]", posts)
		}
	})
}

// ============================================================================
// LikeService / CommentService
// ============================================================================

func TestLikeServiceLikePost(t *testing.T) {
	tests := []struct {
		name     string
		entries  []authz.Entry
		identity authz.Identity
		wantErr  error
	}{
		{
			name:     "read access suffices to like",
			entries:  entriesFor(authz.AccessNone, authz.AccessRead, authz.AccessRead, authz.AccessEdit),
			identity: strangerIdentity,
		},
		{
			name:     "no access forbids liking",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessRead, authz.AccessEdit),
			identity: strangerIdentity,
			wantErr:  ErrForbidden,
		},
		{
			name:     "anonymous cannot like",
			entries:  entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessRead, authz.AccessEdit),
			identity: authz.Anonymous(),
			wantErr:  ErrForbidden,
		},
		{
			name:     "admin likes a hidden post",
			entries:  entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessNone, authz.AccessNone),
			identity: adminIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := newFakePostRepo()
			likes := newFakeLikeRepo()
			service := NewLikeService(posts, likes)
			seedPost(t, posts, "post-1", tt.entries)

			_, err := service.LikePost(context.Background(), tt.identity, "post-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LikePost() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("duplicate like conflicts", func(t *testing.T) {
		posts := newFakePostRepo()
		likes := newFakeLikeRepo()
		service := NewLikeService(posts, likes)
		seedPost(t, posts, "post-1", entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessRead, authz.AccessEdit))

		if _, err := service.LikePost(context.Background(), strangerIdentity, "post-1"); err != nil {
			t.Fatalf("first LikePost() error = %v", err)
		}
		if _, err := service.LikePost(context.Background(), strangerIdentity, "post-1"); !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("second LikePost() error = %v, want %v", err, ErrAlreadyExists)
		}
	})

	t.Run("liking a missing post is not found", func(t *testing.T) {
		service := NewLikeService(newFakePostRepo(), newFakeLikeRepo())
		if _, err := service.LikePost(context.Background(), strangerIdentity, "post-404"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LikePost() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestLikeServiceUnlikePost(t *testing.T) {
	setup := func(t *testing.T) (*LikeService, *fakeLikeRepo) {
		posts := newFakePostRepo()
		likes := newFakeLikeRepo()
		service := NewLikeService(posts, likes)
		seedPost(t, posts, "post-1", entriesFor(authz.AccessRead, authz.AccessRead, authz.AccessRead, authz.AccessEdit))
		if _, err := service.LikePost(context.Background(), strangerIdentity, "post-1"); err != nil {
			t.Fatalf("seed like: %v", err)
		}
		return service, likes
	}

	t.Run("creator removes own like", func(t *testing.T) {
		service, likes := setup(t)
		if err := service.UnlikePost(context.Background(), strangerIdentity, "post-1", ""); err != nil {
			t.Fatalf("UnlikePost() error = %v", err)
		}
		if len(likes.likes) != 0 {
			t.Error("like should be gone")
		}
	})

	t.Run("another user cannot remove it", func(t *testing.T) {
		service, _ := setup(t)
		err := service.UnlikePost(context.Background(), teammateIdentity, "post-1", strangerIdentity.UserID)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("UnlikePost() error = %v, want %v", err, ErrForbidden)
		}
	})

	t.Run("admin removes any like", func(t *testing.T) {
		service, likes := setup(t)
		if err := service.UnlikePost(context.Background(), adminIdentity, "post-1", strangerIdentity.UserID); err != nil {
			t.Fatalf("UnlikePost() error = %v", err)
		}
		if len(likes.likes) != 0 {
			t.Error("like should be gone")
		}
	})

	t.Run("unliking twice is not found", func(t *testing.T) {
		service, _ := setup(t)
		if err := service.UnlikePost(context.Background(), strangerIdentity, "post-1", ""); err != nil {
			t.Fatalf("UnlikePost() error = %v", err)
		}
		if err := service.UnlikePost(context.Background(), strangerIdentity, "post-1", ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("UnlikePost() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestLikeServiceListLikes(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo()
	service := NewLikeService(posts, likes)

	// post-1 readable by any authenticated user, post-2 team-only.
	seedPost(t, posts, "post-1", entriesFor(authz.AccessNone, authz.AccessRead, authz.AccessRead, authz.AccessEdit))
	seedPost(t, posts, "post-2", entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessRead, authz.AccessEdit))
	if _, err := service.LikePost(context.Background(), strangerIdentity, "post-1"); err != nil {
		t.Fatalf("seed like: %v", err)
	}
	if _, err := service.LikePost(context.Background(), teammateIdentity, "post-2"); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	t.Run("stranger only sees likes on visible posts", func(t *testing.T) {
		got, total, err := service.ListLikes(context.Background(), strangerIdentity, ListLikesInput{})
		if err != nil {
			t.Fatalf("ListLikes() error = %v", err)
		}
		if total != 1 || len(got) != 1 || got[0].PostID != "post-1" {
			t.Errorf("ListLikes() = %v (total %d), want one like on post-1", got, total)
		}
	})

	t.Run("teammate sees both", func(t *testing.T) {
		_, total, err := service.ListLikes(context.Background(), teammateIdentity, ListLikesInput{})
		if err != nil {
			t.Fatalf("ListLikes() error = %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})

	t.Run("admin sees everything unfiltered", func(t *testing.T) {
		_, total, err := service.ListLikes(context.Background(), adminIdentity, ListLikesInput{})
		if err != nil {
			t.Fatalf("ListLikes() error = %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})

	t.Run("post filter applies", func(t *testing.T) {
		got, _, err := service.ListLikes(context.Background(), adminIdentity, ListLikesInput{PostID: "post-2"})
		if err != nil {
			t.Fatalf("ListLikes() error = %v", err)
		}
		if len(got) != 1 || got[0].PostID != "post-2" {
			t.Errorf("ListLikes() = %v, want one like on post-2", got)
		}
	})
}

func TestCommentService(t *testing.T) {
	setup := func(t *testing.T, entries []authz.Entry) (*CommentService, *fakeCommentRepo) {
		posts := newFakePostRepo()
		comments := newFakeCommentRepo()
		seedPost(t, posts, "post-1", entries)
		return NewCommentService(posts, comments), comments
	}
	readable := entriesFor(authz.AccessNone, authz.AccessRead, authz.AccessRead, authz.AccessEdit)

	t.Run("read access suffices to comment", func(t *testing.T) {
		service, _ := setup(t, readable)
		comment, err := service.CreateComment(context.Background(), strangerIdentity, CreateCommentInput{PostID: "post-1", Body: "nice"})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if comment.UserID != strangerIdentity.UserID {
			t.Errorf("UserID = %s, want %s", comment.UserID, strangerIdentity.UserID)
		}
	})

	t.Run("hidden post forbids commenting", func(t *testing.T) {
		service, _ := setup(t, entriesFor(authz.AccessNone, authz.AccessNone, authz.AccessRead, authz.AccessEdit))
		_, err := service.CreateComment(context.Background(), strangerIdentity, CreateCommentInput{PostID: "post-1", Body: "nice"})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("CreateComment() error = %v, want %v", err, ErrForbidden)
		}
	})

	t.Run("empty body rejected", func(t *testing.T) {
		service, _ := setup(t, readable)
		_, err := service.CreateComment(context.Background(), strangerIdentity, CreateCommentInput{PostID: "post-1", Body: "  "})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("CreateComment() error = %v, want %v", err, ErrInvalidInput)
		}
	})

	t.Run("creator deletes own comment, others cannot", func(t *testing.T) {
		service, repo := setup(t, readable)
		comment, err := service.CreateComment(context.Background(), strangerIdentity, CreateCommentInput{PostID: "post-1", Body: "nice"})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if err := service.DeleteComment(context.Background(), teammateIdentity, comment.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("DeleteComment() error = %v, want %v", err, ErrForbidden)
		}
		if err := service.DeleteComment(context.Background(), strangerIdentity, comment.ID); err != nil {
			t.Fatalf("DeleteComment() error = %v", err)
		}
		if len(repo.comments) != 0 {
			t.Error("comment should be gone")
		}
	})

	t.Run("admin deletes any comment", func(t *testing.T) {
		service, repo := setup(t, readable)
		comment, err := service.CreateComment(context.Background(), strangerIdentity, CreateCommentInput{PostID: "post-1", Body: "nice"})
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if err := service.DeleteComment(context.Background(), adminIdentity, comment.ID); err != nil {
			t.Fatalf("DeleteComment() error = %v", err)
		}
		if len(repo.comments) != 0 {
			t.Error("comment should be gone")
		}
	})
}
