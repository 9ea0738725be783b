package service

import (
	"context"

	"waveline/internal/models"
	"waveline/internal/repository"
)

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	sink     NotificationSink
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	sink NotificationSink,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		sink:     sink,
	}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewNotAllowedError("Cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return models.NewNotAllowedError("Cannot follow a deactivated user")
	}
	if err := s.subRepo.Create(ctx, followerID, followingID); err != nil {
		return err
	}
	if s.sink != nil {
		s.sink.Notify(followingID, followerID, models.NotificationFollowed, followerID)
	}
	return nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followingID uint) error {
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return err
	}
	removed, err := s.subRepo.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotAllowedError("Not following this user")
	}
	return nil
}

func (s *SubscriptionService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.subRepo.Followers(ctx, userID, limit, offset)
}

func (s *SubscriptionService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.subRepo.Following(ctx, userID, limit, offset)
}

func (s *SubscriptionService) FollowStats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.subRepo.Stats(ctx, userID)
}
