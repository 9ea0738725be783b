package service

import (
	"context"
	"errors"
	"testing"

	"waveline/internal/models"
	"waveline/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSubscriptionService(t *testing.T, sink NotificationSink) (*SubscriptionService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t)
	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		sink,
	)
	return svc, db
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	sink := &recordingSink{}
	svc, db := newSubscriptionService(t, sink)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	t.Run("SelfFollowRejected", func(t *testing.T) {
		err := svc.Subscribe(ctx, alice.ID, alice.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Cannot follow yourself", appErr.Message)
	})

	t.Run("SelfFollowCheckedBeforeLookup", func(t *testing.T) {
		// the self check must fire even for an ID that does not exist
		err := svc.Subscribe(ctx, 9999, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Cannot follow yourself", appErr.Message)
	})

	t.Run("MissingTargetIsNotFound", func(t *testing.T) {
		err := svc.Subscribe(ctx, alice.ID, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("SuccessNotifiesTarget", func(t *testing.T) {
		require.NoError(t, svc.Subscribe(ctx, alice.ID, bob.ID))

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, bob.ID, events[0].RecipientID)
		assert.Equal(t, alice.ID, events[0].ActorID)
		assert.Equal(t, models.NotificationFollowed, events[0].Kind)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		err := svc.Subscribe(ctx, alice.ID, bob.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Already following this user", appErr.Message)
	})

	t.Run("DeactivatedTargetRejected", func(t *testing.T) {
		carol := seedUser(t, db, "carol")
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", carol.ID).
			UpdateColumn("is_active", false).Error)

		err := svc.Subscribe(ctx, alice.ID, carol.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Cannot follow a deactivated user", appErr.Message)
	})
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	svc, db := newSubscriptionService(t, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, svc.Subscribe(ctx, alice.ID, bob.ID))

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(ctx, alice.ID, bob.ID))

		stats, err := svc.FollowStats(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.Followers)
	})

	t.Run("NotFollowingRejected", func(t *testing.T) {
		err := svc.Unsubscribe(ctx, alice.ID, bob.ID)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Not following this user", appErr.Message)
	})
}

func TestSubscriptionService_Listings(t *testing.T) {
	svc, db := newSubscriptionService(t, nil)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	require.NoError(t, svc.Subscribe(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Subscribe(ctx, carol.ID, bob.ID))

	followers, err := svc.Followers(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := svc.Following(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.Username, following[0].Username)
}
