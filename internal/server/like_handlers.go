package server

import (
	"waveline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/like/post/:postId
// @Summary Like a post
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /like/post/{postId} [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.engagementService.LikePost(c.Context(), userID, postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post liked"})
}

// UnlikePost handles DELETE /api/like/post/:postId
// @Summary Remove a like from a post
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /like/post/{postId} [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.engagementService.UnlikePost(c.Context(), userID, postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Like removed"})
}

// GetPostLikes handles GET /api/like/post/:postId
// @Summary List likes on a post
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {array} models.Like
// @Router /like/post/{postId} [get]
func (s *Server) GetPostLikes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.GetPostLikes(c.Context(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(likes)
}

// LikeComment handles POST /api/like/comment/:commentId
// @Summary Like a comment
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /like/comment/{commentId} [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.engagementService.LikeComment(c.Context(), userID, commentID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment liked"})
}

// UnlikeComment handles DELETE /api/like/comment/:commentId
// @Summary Remove a like from a comment
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /like/comment/{commentId} [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.engagementService.UnlikeComment(c.Context(), userID, commentID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Like removed"})
}

// GetCommentLikes handles GET /api/like/comment/:commentId
// @Summary List likes on a comment
// @Tags like
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {array} models.CommentLike
// @Failure 404 {object} object{error=string}
// @Router /like/comment/{commentId} [get]
func (s *Server) GetCommentLikes(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.GetCommentLikes(c.Context(), commentID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(likes)
}
