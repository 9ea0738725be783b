package models

import "time"

// Subscription is a follow edge: follower follows following. The pair is
// unique and follower != following is enforced at creation.
type Subscription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_subscriptions_pair;index" json:"follower_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_subscriptions_pair;index" json:"following_id"`
	Following   *User     `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowStats holds follower/following counts for a user.
type FollowStats struct {
	UserID    uint  `json:"user_id"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
