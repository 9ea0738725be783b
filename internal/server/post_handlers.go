package server

import (
	"waveline/internal/models"
	"waveline/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/post/create
// @Summary Create a post
// @Tags post
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,tag=string} true "New post"
// @Success 201 {object} models.Post
// @Failure 422 {object} object{error=string}
// @Router /post/create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Tag     string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Tag:     req.Tag,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/post/
// @Summary List published posts
// @Tags post
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param tag query string false "Filter by tag"
// @Success 200 {array} models.Post
// @Router /post/ [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	if tag := c.Query("tag"); tag != "" {
		posts, err := s.postService.ListPostsByTag(c.Context(), tag, page.Limit, page.Offset)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(posts)
	}

	posts, err := s.postService.ListPosts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/post/:id
// @Summary Get a post by ID
// @Tags post
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} object{error=string}
// @Router /post/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/post/:id
// @Summary Update a post
// @Description Partially update a post's title, content or tag
// @Tags post
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{title=string,content=string,tag=string} false "Fields to update"
// @Success 200 {object} models.Post
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /post/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tag     *string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
		Tag:     req.Tag,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeactivatePost handles PATCH /api/post/:id/deactivate
// @Summary Hide a post without deleting it
// @Tags post
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /post/{id}/deactivate [patch]
func (s *Server) DeactivatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeactivatePost(c.Context(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/post/:id
// @Summary Delete a post
// @Tags post
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /post/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetUserPosts handles GET /api/user/:userId/posts
// @Summary List a user's published posts
// @Tags user
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.Post
// @Router /user/{userId}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetMyPosts handles GET /api/user/me/posts
// @Summary List the caller's posts split into public and hidden
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.OwnPosts
// @Router /user/me/posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 50)

	posts, err := s.postService.GetOwnPosts(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}
