package repository

import (
	"context"
	"errors"
	"testing"

	"waveline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	t.Run("CreateAndStats", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))
		require.NoError(t, repo.Create(ctx, carol.ID, bob.ID))
		require.NoError(t, repo.Create(ctx, bob.ID, alice.ID))

		stats, err := repo.Stats(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Followers)
		assert.Equal(t, int64(1), stats.Following)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		err := repo.Create(ctx, alice.ID, bob.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotAllowed, appErr.Code)
		assert.Equal(t, "Already following this user", appErr.Message)
	})

	t.Run("FollowersSkipInactive", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", carol.ID).
			UpdateColumn("is_active", false).Error)

		followers, err := repo.Followers(ctx, bob.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, followers, 1)
		assert.Equal(t, alice.Username, followers[0].Username)
	})

	t.Run("DeleteIsReportedOnce", func(t *testing.T) {
		removed, err := repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})
}
