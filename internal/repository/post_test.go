package repository

import (
	"context"
	"errors"
	"testing"

	"waveline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")

	t.Run("CreateAndGet", func(t *testing.T) {
		post := &models.Post{
			Title:       "Hello",
			Content:     "World",
			Tag:         "golang",
			IsPublished: true,
			UserID:      author.ID,
		}
		require.NoError(t, repo.Create(ctx, post))
		assert.NotZero(t, post.ID)

		fetched, err := repo.GetByIDWithAuthor(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.User)
		assert.Equal(t, author.Username, fetched.User.Username)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("ListFiltersUnpublished", func(t *testing.T) {
		hidden := createTestPost(t, db, author, "golang")
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", hidden.ID).
			UpdateColumn("is_published", false).Error)

		posts, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		for _, p := range posts {
			assert.True(t, p.IsPublished)
		}

		// owner view includes hidden posts
		all, err := repo.ListByUser(ctx, author.ID, false, 10, 0)
		require.NoError(t, err)
		published, err := repo.ListByUser(ctx, author.ID, true, 10, 0)
		require.NoError(t, err)
		assert.Greater(t, len(all), len(published))
	})

	t.Run("ListByTag", func(t *testing.T) {
		createTestPost(t, db, author, "rust")

		posts, err := repo.ListByTag(ctx, "rust", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, posts)
		for _, p := range posts {
			assert.Equal(t, "rust", p.Tag)
		}
	})

	t.Run("DeleteHidesPost", func(t *testing.T) {
		post := createTestPost(t, db, author, "golang")
		require.NoError(t, repo.Delete(ctx, post.ID))

		_, err := repo.GetByID(ctx, post.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Counts", func(t *testing.T) {
		all, err := repo.CountAll(ctx)
		require.NoError(t, err)
		published, err := repo.CountPublished(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, all, published)
	})
}
