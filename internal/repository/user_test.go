package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"waveline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := &models.User{
			Username: "ada",
			Email:    "ada@example.com",
			Password: "hashed",
			IsActive: true,
		}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", fetched.Username)

		byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("DuplicateEmailConflicts", func(t *testing.T) {
		dup := &models.User{
			Username: "ada2",
			Email:    "ada@example.com",
			Password: "hashed",
		}
		err := repo.Create(ctx, dup)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeConflict, appErr.Code)
	})

	t.Run("MissingLookupsAreNilNotError", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("MarkVerifiedAndProfile", func(t *testing.T) {
		user := createTestUser(t, db, "grace")
		require.NoError(t, repo.MarkVerified(ctx, user.ID))

		profile := &models.Profile{UserID: user.ID}
		require.NoError(t, repo.CreateProfile(ctx, profile))
		// re-entrant: a second verification attempt must not fail
		require.NoError(t, repo.CreateProfile(ctx, &models.Profile{UserID: user.ID}))

		require.NoError(t, repo.UpdateProfileBio(ctx, user.ID, "Compilers."))

		fetched, err := repo.GetByIDWithProfile(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.Profile)
		assert.Equal(t, "Compilers.", fetched.Profile.Bio)
	})

	t.Run("SetActiveUnknownUser", func(t *testing.T) {
		err := repo.SetActive(ctx, 9999, false)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Positive(t, stats.Total)
		assert.GreaterOrEqual(t, stats.Total, stats.Active)
		assert.GreaterOrEqual(t, stats.Verified, stats.ActiveVerified)
	})

	t.Run("CountNewSince", func(t *testing.T) {
		count, err := repo.CountNewSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Positive(t, count)

		count, err = repo.CountNewSince(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
