package models

import "time"

// Notification types created by the background dispatcher.
const (
	NotificationPostLiked    = "post_liked"
	NotificationCommentLiked = "comment_liked"
	NotificationCommented    = "commented"
	NotificationFollowed     = "followed"
)

// Notification is a fire-and-forget record created after the triggering
// transaction commits. RelatedID points at the post, comment or user the
// event concerns, depending on Type.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"recipient_id"`
	ActorID     uint      `gorm:"not null" json:"actor_id"`
	Actor       *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Type        string    `gorm:"not null" json:"type"`
	RelatedID   uint      `json:"related_id"`
	Read        bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
