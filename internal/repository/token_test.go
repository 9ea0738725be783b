package repository

import (
	"context"
	"testing"
	"time"

	"waveline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "ada")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, token))

	t.Run("GetActive", func(t *testing.T) {
		fetched, err := repo.GetActive(ctx, "token-1")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, user.ID, fetched.UserID)

		fetched, err = repo.GetActive(ctx, "unknown")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("RevokeHidesToken", func(t *testing.T) {
		require.NoError(t, repo.Revoke(ctx, "token-1"))

		fetched, err := repo.GetActive(ctx, "token-1")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("RevokeAllForUser", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.RefreshToken{
			UserID: user.ID, Token: "token-2", ExpiresAt: time.Now().Add(time.Hour),
		}))
		require.NoError(t, repo.Create(ctx, &models.RefreshToken{
			UserID: user.ID, Token: "token-3", ExpiresAt: time.Now().Add(time.Hour),
		}))

		require.NoError(t, repo.RevokeAllForUser(ctx, user.ID))

		for _, tok := range []string{"token-2", "token-3"} {
			fetched, err := repo.GetActive(ctx, tok)
			require.NoError(t, err)
			assert.Nil(t, fetched)
		}
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.RefreshToken{
			UserID: user.ID, Token: "stale", ExpiresAt: time.Now().Add(-time.Hour),
		}))

		n, err := repo.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Positive(t, n)
	})
}
