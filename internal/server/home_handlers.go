package server

import (
	"waveline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TrendingPosts handles GET /api/home/trending-posts
// @Summary List trending posts
// @Description Published posts within the window, ranked by likes then comments then recency
// @Tags home
// @Produce json
// @Param limit query int false "Page size"
// @Param days query int false "Window in days (default 7)"
// @Success 200 {array} models.Post
// @Router /home/trending-posts [get]
func (s *Server) TrendingPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	days := c.QueryInt("days", 7)

	posts, err := s.recommendService.TrendingPosts(c.Context(), page.Limit, days)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// TrendingTags handles GET /api/home/trending-tags
// @Summary List the most used tags
// @Tags home
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {array} models.TagCount
// @Router /home/trending-tags [get]
func (s *Server) TrendingTags(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	tags, err := s.recommendService.TrendingTags(c.Context(), page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tags)
}

// TrendingUsers handles GET /api/home/trending-users
// @Summary List the most prolific active verified users
// @Tags home
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {array} repository.TrendingUser
// @Router /home/trending-users [get]
func (s *Server) TrendingUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.recommendService.TrendingUsers(c.Context(), page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// SiteStats handles GET /api/home/stats
// @Summary Site-wide aggregate counters
// @Tags home
// @Produce json
// @Success 200 {object} service.SiteStats
// @Router /home/stats [get]
func (s *Server) SiteStats(c *fiber.Ctx) error {
	stats, err := s.userService.SiteStats(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}

// Recommendation handles GET /api/home/recommendation
// @Summary Posts recommended from the caller's liked tags
// @Tags home
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Success 200 {array} models.Post
// @Router /home/recommendation [get]
func (s *Server) Recommendation(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	posts, err := s.recommendService.RecommendedPosts(c.Context(), userID, page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// Feed handles GET /api/home/feed
// @Summary The caller's home feed
// @Description Posts from followed users, topped up with recommendations
// @Tags home
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /home/feed [get]
func (s *Server) Feed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	posts, err := s.recommendService.UserFeed(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}
