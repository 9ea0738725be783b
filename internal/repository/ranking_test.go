package repository

import (
	"context"
	"testing"
	"time"

	"waveline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingRepository_TrendingPosts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")

	cold := createTestPost(t, db, author, "golang")
	hot := createTestPost(t, db, author, "golang")
	old := createTestPost(t, db, author, "golang")
	hidden := createTestPost(t, db, author, "golang")

	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", hot.ID).
		UpdateColumn("like_count", 10).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", old.ID).
		Updates(map[string]any{"like_count": 99, "created_at": time.Now().AddDate(0, 0, -30)}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", hidden.ID).
		Updates(map[string]any{"like_count": 50, "is_published": false}).Error)

	since := time.Now().AddDate(0, 0, -7)
	posts, err := repo.TrendingPosts(ctx, 10, since)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, hot.ID, posts[0].ID)
	assert.Equal(t, cold.ID, posts[1].ID)
}

func TestRankingRepository_TrendingPostsTieBreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	first := createTestPost(t, db, author, "golang")
	second := createTestPost(t, db, author, "golang")
	third := createTestPost(t, db, author, "golang")

	// first and second tie on likes; comments break the tie.
	base := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", first.ID).
		Updates(map[string]any{"like_count": 5, "comment_count": 1, "created_at": base}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", second.ID).
		Updates(map[string]any{"like_count": 5, "comment_count": 3, "created_at": base.Add(time.Minute)}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", third.ID).
		Updates(map[string]any{"like_count": 2, "comment_count": 9, "created_at": base.Add(2 * time.Minute)}).Error)

	posts, err := repo.TrendingPosts(ctx, 10, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, third.ID, posts[2].ID)
}

func TestRankingRepository_TrendingTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	createTestPost(t, db, author, "golang")
	createTestPost(t, db, author, "golang")
	createTestPost(t, db, author, "rust")

	hidden := createTestPost(t, db, author, "rust")
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", hidden.ID).
		UpdateColumn("is_published", false).Error)

	tags, err := repo.TrendingTags(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Tag)
	assert.Equal(t, int64(2), tags[0].Count)
	assert.Equal(t, "rust", tags[1].Tag)
	assert.Equal(t, int64(1), tags[1].Count)
}

func TestRankingRepository_TopLikedTagsAndRecommendations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	engagement := NewEngagementRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")

	goPost1 := createTestPost(t, db, author, "golang")
	goPost2 := createTestPost(t, db, author, "golang")
	rustPost := createTestPost(t, db, author, "rust")
	createTestPost(t, db, author, "cooking")

	require.NoError(t, engagement.LikePost(ctx, reader.ID, goPost1.ID))
	require.NoError(t, engagement.LikePost(ctx, reader.ID, goPost2.ID))
	require.NoError(t, engagement.LikePost(ctx, reader.ID, rustPost.ID))

	tags, err := repo.TopLikedTags(ctx, reader.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, tags)
	assert.Equal(t, "golang", tags[0])

	t.Run("PostsByTagsExcludesOwnPosts", func(t *testing.T) {
		// reader's own post in a liked tag must not come back
		own := createTestPost(t, db, reader, "golang")

		posts, err := repo.PostsByTags(ctx, tags, reader.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, posts)
		for _, p := range posts {
			assert.NotEqual(t, own.ID, p.ID)
			assert.Contains(t, tags, p.Tag)
		}
	})

	t.Run("EmptyTagsReturnsNil", func(t *testing.T) {
		posts, err := repo.PostsByTags(ctx, nil, reader.ID, 10)
		require.NoError(t, err)
		assert.Nil(t, posts)
	})
}

func TestRankingRepository_FollowingFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	subs := NewSubscriptionRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")

	followedPost := createTestPost(t, db, followed, "golang")
	createTestPost(t, db, stranger, "golang")

	require.NoError(t, subs.Create(ctx, reader.ID, followed.ID))

	feed, err := repo.FollowingFeed(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, followedPost.ID, feed[0].ID)
}

func TestRankingRepository_TrendingUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRankingRepository(db)
	ctx := context.Background()

	prolific := createTestUser(t, db, "prolific")
	casual := createTestUser(t, db, "casual")
	unverified := createTestUser(t, db, "unverified")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", unverified.ID).
		UpdateColumn("is_verified", false).Error)

	for i := 0; i < 3; i++ {
		createTestPost(t, db, prolific, "golang")
	}
	createTestPost(t, db, casual, "golang")
	createTestPost(t, db, unverified, "golang")

	users, err := repo.TrendingUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, prolific.ID, users[0].UserID)
	assert.Equal(t, int64(3), users[0].PostCount)
	assert.Equal(t, casual.ID, users[1].UserID)
}
