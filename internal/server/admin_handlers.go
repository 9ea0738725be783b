package server

import (
	"time"

	"waveline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminUserStats handles GET /api/admin/statistic/users
// @Summary Account totals
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param days query int false "Window for new/unverified counts (default 7)"
// @Success 200 {object} service.AdminUserStats
// @Failure 403 {object} object{error=string}
// @Router /admin/statistic/users [get]
func (s *Server) AdminUserStats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)

	stats, err := s.userService.AdminUserStats(c.Context(), days)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}

// AdminNewUsers handles GET /api/admin/statistic/users/new/:days
// @Summary Count registrations in the last N days
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param days path int true "Window in days"
// @Success 200 {object} object{count=int,days=int}
// @Failure 403 {object} object{error=string}
// @Router /admin/statistic/users/new/{days} [get]
func (s *Server) AdminNewUsers(c *fiber.Ctx) error {
	days, err := s.parseID(c, "days")
	if err != nil {
		return nil
	}

	since := time.Now().AddDate(0, 0, -int(days))
	count, err := s.userRepo.CountNewSince(c.Context(), since)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count, "days": days})
}

// AdminUnverifiedUsers handles GET /api/admin/statistic/users/unverified/:days
// @Summary Count unverified registrations in the last N days
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param days path int true "Window in days"
// @Success 200 {object} object{count=int,days=int}
// @Failure 403 {object} object{error=string}
// @Router /admin/statistic/users/unverified/{days} [get]
func (s *Server) AdminUnverifiedUsers(c *fiber.Ctx) error {
	days, err := s.parseID(c, "days")
	if err != nil {
		return nil
	}

	since := time.Now().AddDate(0, 0, -int(days))
	count, err := s.userRepo.CountUnverifiedSince(c.Context(), since)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count, "days": days})
}

// AdminGoodUsers handles GET /api/admin/statistic/users/good
// @Summary Count active verified accounts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{count=int}
// @Failure 403 {object} object{error=string}
// @Router /admin/statistic/users/good [get]
func (s *Server) AdminGoodUsers(c *fiber.Ctx) error {
	stats, err := s.userRepo.Stats(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": stats.ActiveVerified})
}

// AdminDeactivateUser handles PATCH /api/admin/deactivate/:userId
// @Summary Deactivate a user account
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/deactivate/{userId} [patch]
func (s *Server) AdminDeactivateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userService.SetUserActive(c.Context(), userID, false); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deactivated"})
}

// AdminReactivateUser handles PATCH /api/admin/reactivate/:userId
// @Summary Reactivate a user account
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/reactivate/{userId} [patch]
func (s *Server) AdminReactivateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userService.SetUserActive(c.Context(), userID, true); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User reactivated"})
}

// AdminDeleteUser handles DELETE /api/admin/delete/:userId
// @Summary Permanently delete a user account
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/delete/{userId} [delete]
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
