package service

import (
	"context"
	"time"

	"waveline/internal/cache"
	"waveline/internal/models"
	"waveline/internal/observability"
	"waveline/internal/repository"
)

// topLikedTagCount bounds the tag profile used for recommendations.
const topLikedTagCount = 10

type RecommendationService struct {
	rankingRepo repository.RankingRepository
	now         func() time.Time
}

func NewRecommendationService(
	rankingRepo repository.RankingRepository,
	now func() time.Time,
) *RecommendationService {
	if now == nil {
		now = time.Now
	}
	return &RecommendationService{
		rankingRepo: rankingRepo,
		now:         now,
	}
}

func (s *RecommendationService) TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	var tags []models.TagCount
	key := cache.TrendingTagsKey(limit)
	err := cache.Aside(ctx, key, &tags, cache.TrendingTTL, func() error {
		var fetchErr error
		tags, fetchErr = s.rankingRepo.TrendingTags(ctx, limit)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *RecommendationService) TrendingPosts(ctx context.Context, limit, days int) ([]*models.Post, error) {
	if days <= 0 {
		return nil, models.NewValidationError("days must be positive")
	}
	since := s.now().AddDate(0, 0, -days)

	var posts []*models.Post
	key := cache.TrendingPostsKey(limit, days)
	err := cache.Aside(ctx, key, &posts, cache.TrendingTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.rankingRepo.TrendingPosts(ctx, limit, since)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *RecommendationService) TrendingUsers(ctx context.Context, limit int) ([]repository.TrendingUser, error) {
	var users []repository.TrendingUser
	key := cache.TrendingUsersKey(limit)
	err := cache.Aside(ctx, key, &users, cache.TrendingTTL, func() error {
		var fetchErr error
		users, fetchErr = s.rankingRepo.TrendingUsers(ctx, limit)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// RecommendedPosts ranks posts in the caller's most-liked tags. Users with no
// like history fall back to the newest published posts.
func (s *RecommendationService) RecommendedPosts(ctx context.Context, userID uint, limit int) ([]*models.Post, error) {
	tags, err := s.rankingRepo.TopLikedTags(ctx, userID, topLikedTagCount)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		observability.FeedRequests.WithLabelValues("cold_start").Inc()
		return s.rankingRepo.NewestPublished(ctx, limit)
	}
	observability.FeedRequests.WithLabelValues("recommended").Inc()
	return s.rankingRepo.PostsByTags(ctx, tags, userID, limit)
}

// UserFeed serves the home feed: posts from followed users topped up with
// recommendations when the following feed comes up short. Duplicates keep
// their first-seen position.
func (s *RecommendationService) UserFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	feed, err := s.rankingRepo.FollowingFeed(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	observability.FeedRequests.WithLabelValues("following").Inc()
	if len(feed) >= limit {
		return feed, nil
	}

	recommended, err := s.RecommendedPosts(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(feed))
	for _, p := range feed {
		seen[p.ID] = struct{}{}
	}
	for _, p := range recommended {
		if len(feed) >= limit {
			break
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		feed = append(feed, p)
	}
	return feed, nil
}
