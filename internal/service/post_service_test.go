package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveline/internal/models"
	"waveline/internal/repository"
)

func TestPostService_CreatePost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db), neverAdmin)
	author := seedUser(t, db, "ada")
	ctx := context.Background()

	t.Run("TrimsAndPublishes", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  author.ID,
			Title:   "  Hello World  ",
			Content: "  first post  ",
			Tag:     " golang ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello World", post.Title)
		assert.Equal(t, "first post", post.Content)
		assert.Equal(t, "golang", post.Tag)
		assert.True(t, post.IsPublished)
	})

	t.Run("EmptyTitleRejected", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "   ", Content: "body", Tag: "go"})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Equal(t, "Title is required", appErr.Message)
	})

	t.Run("OverlongTitleRejected", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  author.ID,
			Title:   strings.Repeat("t", 301),
			Content: "body",
			Tag:     "go",
		})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Title too long (max 300 characters)", appErr.Message)
	})

	t.Run("MultibyteTitleCountedInRunes", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{
			UserID:  author.ID,
			Title:   strings.Repeat("ж", 300),
			Content: "body",
			Tag:     "go",
		})
		require.NoError(t, err)
		assert.Equal(t, 300, len([]rune(post.Title)))
	})

	t.Run("MissingTagRejected", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "t", Content: "body"})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Tag is required", appErr.Message)
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db), neverAdmin)
	author := seedUser(t, db, "ada")
	stranger := seedUser(t, db, "mallory")
	post := seedPost(t, db, author, "golang")
	ctx := context.Background()

	t.Run("StrangerDenied", func(t *testing.T) {
		title := "hijacked"
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: stranger.ID, PostID: post.ID, Title: &title})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_ALLOWED", appErr.Code)
		assert.Equal(t, "You can only update your own posts", appErr.Message)
	})

	t.Run("OwnerUpdatesFields", func(t *testing.T) {
		title := " New Title "
		tag := "databases"
		updated, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, Title: &title, Tag: &tag})
		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "databases", updated.Tag)
	})

	t.Run("BlankFieldRejected", func(t *testing.T) {
		content := "   "
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, Content: &content})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Content cannot be empty", appErr.Message)
	})
}

func TestPostService_DeactivateAndDelete(t *testing.T) {
	db := setupServiceTestDB(t)
	repo := repository.NewPostRepository(db)
	svc := NewPostService(repo, neverAdmin)
	author := seedUser(t, db, "ada")
	ctx := context.Background()

	t.Run("DeactivateIsIdempotent", func(t *testing.T) {
		post := seedPost(t, db, author, "golang")

		hidden, err := svc.DeactivatePost(ctx, author.ID, post.ID)
		require.NoError(t, err)
		assert.False(t, hidden.IsPublished)

		again, err := svc.DeactivatePost(ctx, author.ID, post.ID)
		require.NoError(t, err)
		assert.False(t, again.IsPublished)
	})

	t.Run("DeleteRemovesFromListings", func(t *testing.T) {
		post := seedPost(t, db, author, "golang")
		require.NoError(t, svc.DeletePost(ctx, author.ID, post.ID))

		_, err := svc.GetPost(ctx, post.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("AdminDeletesAnyPost", func(t *testing.T) {
		other := seedUser(t, db, "linus")
		post := seedPost(t, db, other, "golang")

		adminSvc := NewPostService(repo, alwaysAdmin)
		require.NoError(t, adminSvc.DeletePost(ctx, author.ID, post.ID))
	})
}

func TestPostService_OwnPostsSplit(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db), neverAdmin)
	author := seedUser(t, db, "ada")
	ctx := context.Background()

	p1 := seedPost(t, db, author, "golang")
	p2 := seedPost(t, db, author, "golang")
	_, err := svc.DeactivatePost(ctx, author.ID, p2.ID)
	require.NoError(t, err)

	own, err := svc.GetOwnPosts(ctx, author.ID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, own.PublicCount)
	assert.Equal(t, 1, own.HiddenCount)
	assert.Equal(t, p1.ID, own.Public[0].ID)
	assert.Equal(t, p2.ID, own.Hidden[0].ID)

	visible, err := svc.GetUserPosts(ctx, author.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestPostService_DeleteCascades(t *testing.T) {
	db := setupServiceTestDB(t)
	posts := NewPostService(repository.NewPostRepository(db), neverAdmin)
	engagement := NewEngagementService(
		repository.NewEngagementRepository(db),
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		neverAdmin,
		nil,
	)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fan")
	post := seedPost(t, db, author, "golang")

	require.NoError(t, engagement.LikePost(ctx, fan.ID, post.ID))
	comment, err := engagement.CreateComment(ctx, CreateCommentInput{
		UserID: fan.ID, PostID: post.ID, Content: "Keep these coming",
	})
	require.NoError(t, err)
	require.NoError(t, engagement.LikeComment(ctx, author.ID, comment.ID))

	require.NoError(t, posts.DeletePost(ctx, author.ID, post.ID))

	t.Run("ReadsComeBackEmpty", func(t *testing.T) {
		likes, err := engagement.GetPostLikes(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, likes)

		comments, err := engagement.GetPostComments(ctx, post.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("DependentRowsRemoved", func(t *testing.T) {
		var likeRows, commentRows, commentLikeRows int64
		require.NoError(t, db.Model(&models.Like{}).
			Where("post_id = ?", post.ID).Count(&likeRows).Error)
		require.NoError(t, db.Model(&models.Comment{}).
			Where("post_id = ?", post.ID).Count(&commentRows).Error)
		require.NoError(t, db.Model(&models.CommentLike{}).
			Where("comment_id = ?", comment.ID).Count(&commentLikeRows).Error)
		assert.Zero(t, likeRows)
		assert.Zero(t, commentRows)
		assert.Zero(t, commentLikeRows)
	})

	t.Run("PostRowGone", func(t *testing.T) {
		var rows int64
		require.NoError(t, db.Unscoped().Model(&models.Post{}).
			Where("id = ?", post.ID).Count(&rows).Error)
		assert.Zero(t, rows)
	})
}
