package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"waveline/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Subscription{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:   username,
		Email:      fmt.Sprintf("%s@example.com", username),
		Password:   "hashed",
		IsActive:   true,
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func seedPost(t *testing.T, db *gorm.DB, user *models.User, tag string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       "Test post",
		Content:     "Some content",
		Tag:         tag,
		IsPublished: true,
		UserID:      user.ID,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

// capturedEvent records one Notify call on the recordingSink.
type capturedEvent struct {
	RecipientID uint
	ActorID     uint
	Kind        string
	RelatedID   uint
}

// recordingSink collects notification events synchronously for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (s *recordingSink) Notify(recipientID, actorID uint, kind string, relatedID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, capturedEvent{
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		RelatedID:   relatedID,
	})
}

func (s *recordingSink) Events() []capturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]capturedEvent, len(s.events))
	copy(out, s.events)
	return out
}

func neverAdmin(_ context.Context, _ uint) (bool, error) { return false, nil }

func alwaysAdmin(_ context.Context, _ uint) (bool, error) { return true, nil }
