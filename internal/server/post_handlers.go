package server

import (
	"shadospace/internal/models"
	"shadospace/internal/repository"
	"shadospace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.Context(), userID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts. Published posts by default; search,
// category and status filters; content truncated for the feed.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	filter := repository.ListFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	posts, err := s.postService.List(c.Context(), filter, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	for i := range posts {
		posts[i].Content = truncateContent(posts[i].Content, listContentPreview)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	currentUserID, _ := s.optionalUserID(c)

	post, err := s.postService.Get(c.Context(), id, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	currentUserID, _ := s.optionalUserID(c)

	posts, err := s.postService.ListByUser(c.Context(), userID, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var input service.UpdatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.Context(), id, userID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.Delete(c.Context(), id, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
