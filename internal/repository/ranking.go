package repository

import (
	"context"
	"time"

	"waveline/internal/models"

	"gorm.io/gorm"
)

// TrendingUser pairs a user with their published post count.
type TrendingUser struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	PostCount int64  `json:"post_count"`
}

// RankingRepository serves the trending and recommendation queries. All reads
// go to the read replica when one is configured.
type RankingRepository interface {
	TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error)
	TrendingPosts(ctx context.Context, limit int, since time.Time) ([]*models.Post, error)
	TopLikedTags(ctx context.Context, userID uint, limit int) ([]string, error)
	PostsByTags(ctx context.Context, tags []string, excludeUserID uint, limit int) ([]*models.Post, error)
	NewestPublished(ctx context.Context, limit int) ([]*models.Post, error)
	FollowingFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	TrendingUsers(ctx context.Context, limit int) ([]TrendingUser, error)
}

type rankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository creates a new RankingRepository
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	var tags []models.TagCount
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Select("tag, COUNT(*) as count").
		Where("is_published = ?", true).
		Group("tag").
		Order("count DESC").
		Limit(limit).
		Scan(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *rankingRepository) TrendingPosts(ctx context.Context, limit int, since time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("is_published = ? AND created_at >= ?", true, since).
		Order("like_count DESC, comment_count DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *rankingRepository) TopLikedTags(ctx context.Context, userID uint, limit int) ([]string, error) {
	var tags []string
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Select("posts.tag").
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("likes.user_id = ? AND posts.is_published = ?", userID, true).
		Group("posts.tag").
		Order("COUNT(*) DESC").
		Limit(limit).
		Pluck("posts.tag", &tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *rankingRepository) PostsByTags(ctx context.Context, tags []string, excludeUserID uint, limit int) ([]*models.Post, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("is_published = ? AND tag IN ? AND user_id <> ?", true, tags, excludeUserID).
		Order("like_count DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *rankingRepository) NewestPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *rankingRepository) FollowingFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Joins("JOIN subscriptions ON subscriptions.following_id = posts.user_id").
		Where("subscriptions.follower_id = ? AND posts.is_published = ?", userID, true).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *rankingRepository) TrendingUsers(ctx context.Context, limit int) ([]TrendingUser, error) {
	var users []TrendingUser
	err := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Select("users.id as user_id, users.username, COUNT(posts.id) as post_count").
		Joins("JOIN posts ON posts.user_id = users.id AND posts.is_published = ? AND posts.deleted_at IS NULL", true).
		Where("users.is_active = ? AND users.is_verified = ?", true, true).
		Group("users.id, users.username").
		Order("post_count DESC").
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
