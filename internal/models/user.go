// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Username    string   `gorm:"uniqueIndex;not null" json:"username"`
	Email       string   `gorm:"uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"not null" json:"-"`
	IsActive    bool     `gorm:"not null;default:true" json:"is_active"`
	IsVerified  bool     `gorm:"not null;default:false" json:"is_verified"`
	IsSuperuser bool     `gorm:"not null;default:false" json:"is_superuser"`
	GithubID    *string  `gorm:"uniqueIndex" json:"github_id,omitempty"`
	Profile     *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Posts       []Post   `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile holds per-user presentation data. The row is created when the
// account is verified.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is a persisted refresh token. Revoked tokens are rejected on
// refresh and all of a user's tokens are revoked on logout and password reset.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
