package models

import "time"

// Comment represents a comment on a post. LikeCount is maintained alongside
// comment_like row mutations, floored at zero.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Content   string `gorm:"type:text;not null" json:"content"`
	LikeCount int    `gorm:"not null;default:0" json:"like_count"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID    uint   `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like is a user's like on a post. The (user_id, post_id) pair is unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index;constraint:OnDelete:CASCADE" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike is a user's like on a comment. The (user_id, comment_id) pair
// is unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment;index;constraint:OnDelete:CASCADE" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
