package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"waveline/internal/models"
	"waveline/internal/repository"
)

type UserService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	subRepo     repository.SubscriptionRepository
	now         func() time.Time
}

// ProfileView combines the user row, profile and follow counts.
type ProfileView struct {
	User        *models.User        `json:"user"`
	FollowStats *models.FollowStats `json:"follow_stats"`
}

// SiteStats is the public aggregate counters payload.
type SiteStats struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
}

// AdminUserStats extends the base counts with windowed registration figures.
type AdminUserStats struct {
	repository.UserStats
	NewLastDays        int64 `json:"new_last_days"`
	UnverifiedLastDays int64 `json:"unverified_last_days"`
	WindowDays         int   `json:"window_days"`
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	subRepo repository.SubscriptionRepository,
	now func() time.Time,
) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		subRepo:     subRepo,
		now:         now,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.subRepo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, FollowStats: stats}, nil
}

func (s *UserService) UpdateBio(ctx context.Context, userID uint, bio string) error {
	const maxBioLen = 500
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > maxBioLen {
		return models.NewValidationError("Bio too long (max 500 characters)")
	}
	return s.userRepo.UpdateProfileBio(ctx, userID, bio)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return models.NewValidationError("Avatar URL is required")
	}
	return s.userRepo.UpdateProfileAvatar(ctx, userID, avatarURL)
}

func (s *UserService) SiteStats(ctx context.Context) (*SiteStats, error) {
	stats := &SiteStats{}
	userStats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Users = userStats.Total
	if stats.Posts, err = s.postRepo.CountPublished(ctx); err != nil {
		return nil, err
	}
	if stats.Comments, err = s.commentRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *UserService) AdminUserStats(ctx context.Context, windowDays int) (*AdminUserStats, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	base, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -windowDays)
	newCount, err := s.userRepo.CountNewSince(ctx, since)
	if err != nil {
		return nil, err
	}
	unverified, err := s.userRepo.CountUnverifiedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return &AdminUserStats{
		UserStats:          *base,
		NewLastDays:        newCount,
		UnverifiedLastDays: unverified,
		WindowDays:         windowDays,
	}, nil
}

func (s *UserService) SetUserActive(ctx context.Context, targetID uint, active bool) error {
	return s.userRepo.SetActive(ctx, targetID, active)
}

func (s *UserService) DeleteUser(ctx context.Context, targetID uint) error {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, targetID)
}

// IsSuperuser satisfies AdminCheck for the other services.
func (s *UserService) IsSuperuser(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsSuperuser, nil
}
