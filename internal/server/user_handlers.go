package server

import (
	"waveline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/user/me
// @Summary Get the authenticated user
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetMyProfile handles GET /api/user/me/profile
// @Summary Get the caller's profile with follow stats
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ProfileView
// @Router /user/me/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	profile, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateBio handles PATCH /api/user/me/profile/bio
// @Summary Update the profile bio
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{bio=string} true "New bio"
// @Success 200 {object} object{message=string}
// @Failure 422 {object} object{error=string}
// @Router /user/me/profile/bio [patch]
func (s *Server) UpdateBio(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Bio string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateBio(c.Context(), userID, req.Bio); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bio updated"})
}

// UpdateAvatar handles PATCH /api/user/me/profile/avatar
// @Summary Update the profile avatar URL
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{avatar_url=string} true "New avatar URL"
// @Success 200 {object} object{message=string}
// @Failure 422 {object} object{error=string}
// @Router /user/me/profile/avatar [patch]
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateAvatar(c.Context(), userID, req.AvatarURL); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Avatar updated"})
}

// GetLikedPosts handles GET /api/user/me/profile/liked-posts
// @Summary List the posts the caller has liked
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Router /user/me/profile/liked-posts [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	posts, err := s.engagementService.ListLikedPosts(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// Subscribe handles POST /api/user/me/subscriptions/subscribe/:followingId
// @Summary Follow a user
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param followingId path int true "User ID to follow"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /user/me/subscriptions/subscribe/{followingId} [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	followingID, err := s.parseID(c, "followingId")
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Subscribe(c.Context(), userID, followingID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscribed"})
}

// Unsubscribe handles DELETE /api/user/me/subscriptions/unsubscribe/:followingId
// @Summary Unfollow a user
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param followingId path int true "User ID to unfollow"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /user/me/subscriptions/unsubscribe/{followingId} [delete]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	followingID, err := s.parseID(c, "followingId")
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Unsubscribe(c.Context(), userID, followingID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unsubscribed"})
}

// GetFollowers handles GET /api/user/me/subscriptions/followers
// @Summary List the caller's followers
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /user/me/subscriptions/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	users, err := s.subscriptionService.Followers(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/user/me/subscriptions/following
// @Summary List the users the caller follows
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /user/me/subscriptions/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	users, err := s.subscriptionService.Following(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetFollowStats handles GET /api/user/:userId/follow-stats
// @Summary Get follower and following counts for a user
// @Tags user
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.FollowStats
// @Failure 404 {object} object{error=string}
// @Router /user/{userId}/follow-stats [get]
func (s *Server) GetFollowStats(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	stats, err := s.subscriptionService.FollowStats(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}

// GetNotifications handles GET /api/user/me/notifications
// @Summary List the caller's notifications
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param unread_only query bool false "Only unread notifications"
// @Success 200 {array} models.Notification
// @Router /user/me/notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)
	unreadOnly := c.QueryBool("unread_only", false)

	notifications, err := s.notificationService.List(c.Context(), userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(notifications)
}

// GetUnreadCount handles GET /api/user/me/notifications/unread-count
// @Summary Count the caller's unread notifications
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{count=int}
// @Router /user/me/notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID := currentUserID(c)

	count, err := s.notificationService.UnreadCount(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles PATCH /api/user/me/notifications/:notificationId/read
// @Summary Mark one notification as read
// @Tags user
// @Security BearerAuth
// @Produce json
// @Param notificationId path int true "Notification ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /user/me/notifications/{notificationId}/read [patch]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID := currentUserID(c)
	notificationID, err := s.parseID(c, "notificationId")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.Context(), userID, notificationID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

// MarkAllNotificationsRead handles PATCH /api/user/me/notifications/read-all
// @Summary Mark all notifications as read
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{updated=int}
// @Router /user/me/notifications/read-all [patch]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	updated, err := s.notificationService.MarkAllRead(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
