package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"waveline/internal/middleware"
	"waveline/internal/models"
	"waveline/internal/repository"
)

// NotificationSink receives engagement events after the primary transaction
// has committed. Implementations must not block the caller.
type NotificationSink interface {
	Notify(recipientID, actorID uint, kind string, relatedID uint)
}

type EngagementService struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	isAdmin        AdminCheck
	sink           NotificationSink
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	isAdmin AdminCheck,
	sink NotificationSink,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		isAdmin:        isAdmin,
		sink:           sink,
	}
}

func (s *EngagementService) notify(recipientID, actorID uint, kind string, relatedID uint) {
	if s.sink == nil || recipientID == actorID {
		return
	}
	s.sink.Notify(recipientID, actorID, kind, relatedID)
}

func (s *EngagementService) LikePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.engagementRepo.LikePost(ctx, userID, postID); err != nil {
		return err
	}
	middleware.EngagementEvents.WithLabelValues("like_post").Inc()
	s.notify(post.UserID, userID, models.NotificationPostLiked, postID)
	return nil
}

func (s *EngagementService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	if err := s.engagementRepo.UnlikePost(ctx, userID, postID); err != nil {
		return err
	}
	middleware.EngagementEvents.WithLabelValues("unlike_post").Inc()
	return nil
}

func (s *EngagementService) LikeComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.engagementRepo.LikeComment(ctx, userID, commentID); err != nil {
		return err
	}
	middleware.EngagementEvents.WithLabelValues("like_comment").Inc()
	s.notify(comment.UserID, userID, models.NotificationCommentLiked, commentID)
	return nil
}

func (s *EngagementService) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return err
	}
	if err := s.engagementRepo.UnlikeComment(ctx, userID, commentID); err != nil {
		return err
	}
	middleware.EngagementEvents.WithLabelValues("unlike_comment").Inc()
	return nil
}

func (s *EngagementService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const maxCommentLen = 1000

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.engagementRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	middleware.EngagementEvents.WithLabelValues("comment").Inc()
	s.notify(post.UserID, in.UserID, models.NotificationCommented, comment.ID)
	return comment, nil
}

func (s *EngagementService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	const maxCommentLen = 1000

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(ctx, in.UserID, comment.UserID, s.isAdmin, "You can only update your own comments"); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *EngagementService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwner(ctx, userID, comment.UserID, s.isAdmin, "You can only delete your own comments"); err != nil {
		return err
	}
	return s.engagementRepo.DeleteComment(ctx, comment)
}

// GetPostLikes returns the likes of a post. Deleted and unknown posts yield
// an empty set since their like rows no longer exist.
func (s *EngagementService) GetPostLikes(ctx context.Context, postID uint) ([]models.Like, error) {
	return s.engagementRepo.PostLikes(ctx, postID)
}

// GetPostComments returns the comments of a post, empty for deleted and
// unknown posts.
func (s *EngagementService) GetPostComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

func (s *EngagementService) GetCommentLikes(ctx context.Context, commentID uint) ([]models.CommentLike, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.engagementRepo.CommentLikes(ctx, commentID)
}

// ListLikedPosts returns the published posts a user has liked, newest like first.
func (s *EngagementService) ListLikedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.engagementRepo.ListLikedPosts(ctx, userID, limit, offset)
}
