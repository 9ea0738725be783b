package repository

import (
	"context"

	"waveline/internal/cache"
	"waveline/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence for the follow graph.
type SubscriptionRepository interface {
	Create(ctx context.Context, followerID, followingID uint) error
	Delete(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Stats(ctx context.Context, userID uint) (*models.FollowStats, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, followerID, followingID uint) error {
	sub := models.Subscription{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewNotAllowedError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateFollowStats(ctx, followerID, followingID)
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateFollowStats(ctx, followerID, followingID)
	return true, nil
}

func (r *subscriptionRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Preload("Profile").
		Joins("JOIN subscriptions ON subscriptions.follower_id = users.id").
		Where("subscriptions.following_id = ? AND users.is_active = ?", userID, true).
		Order("subscriptions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *subscriptionRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Preload("Profile").
		Joins("JOIN subscriptions ON subscriptions.following_id = users.id").
		Where("subscriptions.follower_id = ? AND users.is_active = ?", userID, true).
		Order("subscriptions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *subscriptionRepository) Stats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	stats := models.FollowStats{UserID: userID}
	key := cache.FollowStatsKey(userID)

	err := cache.Aside(ctx, key, &stats, cache.FollowStatsTTL, func() error {
		db := readDB(r.db).WithContext(ctx).Model(&models.Subscription{})
		if err := db.Session(&gorm.Session{}).
			Where("following_id = ?", userID).
			Count(&stats.Followers).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := db.Session(&gorm.Session{}).
			Where("follower_id = ?", userID).
			Count(&stats.Following).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
