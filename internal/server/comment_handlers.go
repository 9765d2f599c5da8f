package server

import (
	"shadospace/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.Context(), postID, userID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments. Oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	comments, err := s.commentService.ListComments(c.Context(), postID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
