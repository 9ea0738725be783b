package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"waveline/internal/models"
	"waveline/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  AdminCheck
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
	Tag     string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   *string
	Content *string
	Tag     *string
}

// OwnPosts splits a user's posts into the published and hidden sets.
type OwnPosts struct {
	Public      []*models.Post `json:"public"`
	Hidden      []*models.Post `json:"hidden"`
	PublicCount int            `json:"public_count"`
	HiddenCount int            `json:"hidden_count"`
}

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin AdminCheck,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTitleLen = 300
	const maxContentLen = 50000

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	tag := strings.TrimSpace(in.Tag)

	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if tag == "" {
		return nil, models.NewValidationError("Tag is required")
	}

	post := &models.Post{
		Title:       title,
		Content:     content,
		Tag:         tag,
		IsPublished: true,
		UserID:      in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

func (s *PostService) ListPostsByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Post, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, models.NewValidationError("Tag is required")
	}
	return s.postRepo.ListByTag(ctx, strings.TrimSpace(tag), limit, offset)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByIDWithAuthor(ctx, id)
}

// GetUserPosts returns another user's published posts.
func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListByUser(ctx, userID, true, limit, offset)
}

// GetOwnPosts returns the caller's posts split into public and hidden.
func (s *PostService) GetOwnPosts(ctx context.Context, userID uint, limit, offset int) (*OwnPosts, error) {
	posts, err := s.postRepo.ListByUser(ctx, userID, false, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &OwnPosts{
		Public: []*models.Post{},
		Hidden: []*models.Post{},
	}
	for _, p := range posts {
		if p.IsPublished {
			out.Public = append(out.Public, p)
		} else {
			out.Hidden = append(out.Hidden, p)
		}
	}
	out.PublicCount = len(out.Public)
	out.HiddenCount = len(out.Hidden)
	return out, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(ctx, in.UserID, post.UserID, s.isAdmin, "You can only update your own posts"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		post.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		post.Content = content
	}
	if in.Tag != nil {
		tag := strings.TrimSpace(*in.Tag)
		if tag == "" {
			return nil, models.NewValidationError("Tag cannot be empty")
		}
		post.Tag = tag
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeactivatePost hides a post without removing it.
func (s *PostService) DeactivatePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(ctx, userID, post.UserID, s.isAdmin, "You can only deactivate your own posts"); err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return post, nil
	}
	post.IsPublished = false
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := requireOwner(ctx, userID, post.UserID, s.isAdmin, "You can only delete your own posts"); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}
