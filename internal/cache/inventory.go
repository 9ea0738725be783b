package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	PostKeyPrefix        = "post:%d"
	FollowStatsKeyPrefix = "followstats:%d"
	TrendingPostsPrefix  = "trending:posts:%d:%d"
	TrendingTagsPrefix   = "trending:tags:%d"
	TrendingUsersPrefix  = "trending:users:%d"
	SiteStatsKey         = "site:stats"
)

const (
	UserTTL        = 5 * time.Minute
	FollowStatsTTL = 1 * time.Minute
	PostTTL        = 30 * time.Minute
	TrendingTTL    = 2 * time.Minute
	SiteStatsTTL   = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func FollowStatsKey(userID uint) string {
	return fmt.Sprintf(FollowStatsKeyPrefix, userID)
}

func TrendingPostsKey(limit, days int) string {
	return fmt.Sprintf(TrendingPostsPrefix, limit, days)
}

func TrendingTagsKey(limit int) string {
	return fmt.Sprintf(TrendingTagsPrefix, limit)
}

func TrendingUsersKey(limit int) string {
	return fmt.Sprintf(TrendingUsersPrefix, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateFollowStats(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		Invalidate(ctx, FollowStatsKey(id))
	}
}
