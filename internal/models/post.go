package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a user post. LikeCount and CommentCount are denormalized
// counters maintained inside the same transaction as the like/comment row
// mutation and never go below zero.
type Post struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Title        string `gorm:"not null" json:"title"`
	Content      string `gorm:"type:text;not null" json:"content"`
	Tag          string `gorm:"index;not null" json:"tag"`
	IsPublished  bool   `gorm:"not null;default:true;index" json:"is_published"`
	LikeCount    int    `gorm:"not null;default:0" json:"like_count"`
	CommentCount int    `gorm:"not null;default:0" json:"comment_count"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	User         *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TagCount is a trending aggregation row: a tag and how many published
// posts carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
