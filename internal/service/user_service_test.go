package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"waveline/internal/models"
	"waveline/internal/repository"
)

func newUserService(db *gorm.DB, now func() time.Time) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewSubscriptionRepository(db),
		now,
	)
}

func TestUserService_Profile(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserService(db, nil)
	ctx := context.Background()

	user := seedUser(t, db, "ada")
	fan := seedUser(t, db, "linus")
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Bio: "hi"}).Error)
	require.NoError(t, db.Create(&models.Subscription{FollowerID: fan.ID, FollowingID: user.ID}).Error)

	t.Run("CombinesProfileAndFollowStats", func(t *testing.T) {
		view, err := svc.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, view.User.Profile)
		assert.Equal(t, "hi", view.User.Profile.Bio)
		assert.Equal(t, int64(1), view.FollowStats.Followers)
		assert.Equal(t, int64(0), view.FollowStats.Following)
	})

	t.Run("UnknownUserIsNotFound", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("UpdateBioTrims", func(t *testing.T) {
		require.NoError(t, svc.UpdateBio(ctx, user.ID, "  systems programmer  "))
		view, err := svc.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "systems programmer", view.User.Profile.Bio)
	})

	t.Run("OverlongBioRejected", func(t *testing.T) {
		err := svc.UpdateBio(ctx, user.ID, strings.Repeat("b", 501))
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Bio too long (max 500 characters)", appErr.Message)
	})

	t.Run("EmptyAvatarRejected", func(t *testing.T) {
		err := svc.UpdateAvatar(ctx, user.ID, "   ")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Avatar URL is required", appErr.Message)
	})
}

func TestUserService_Stats(t *testing.T) {
	db := setupServiceTestDB(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newUserService(db, func() time.Time { return fixed })
	ctx := context.Background()

	author := seedUser(t, db, "ada")
	post := seedPost(t, db, author, "golang")
	require.NoError(t, db.Create(&models.Comment{Content: "hey", UserID: author.ID, PostID: post.ID}).Error)

	old := &models.User{
		Username: "ancient",
		Email:    "ancient@example.com",
		Password: "x",
		IsActive: true,
	}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).Update("created_at", fixed.AddDate(0, 0, -30)).Error)

	fresh := &models.User{
		Username: "newcomer",
		Email:    "newcomer@example.com",
		Password: "x",
		IsActive: true,
	}
	require.NoError(t, db.Create(fresh).Error)

	t.Run("SiteStatsCountsEverything", func(t *testing.T) {
		stats, err := svc.SiteStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Users)
		assert.Equal(t, int64(1), stats.Posts)
		assert.Equal(t, int64(1), stats.Comments)
	})

	t.Run("AdminStatsWindowExcludesOldSignups", func(t *testing.T) {
		stats, err := svc.AdminUserStats(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(2), stats.NewLastDays)
		assert.Equal(t, int64(1), stats.UnverifiedLastDays)
		assert.Equal(t, 7, stats.WindowDays)
	})

	t.Run("NonPositiveWindowDefaultsToWeek", func(t *testing.T) {
		stats, err := svc.AdminUserStats(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 7, stats.WindowDays)
	})
}

func TestUserService_Moderation(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserService(db, nil)
	ctx := context.Background()

	t.Run("SetActiveFlipsFlag", func(t *testing.T) {
		user := seedUser(t, db, "ada")
		require.NoError(t, svc.SetUserActive(ctx, user.ID, false))

		got, err := svc.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
	})

	t.Run("DeleteUnknownUserIsNotFound", func(t *testing.T) {
		err := svc.DeleteUser(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("IsSuperuserReadsFlag", func(t *testing.T) {
		root := seedUser(t, db, "root")
		require.NoError(t, db.Model(root).Update("is_superuser", true).Error)

		ok, err := svc.IsSuperuser(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
