package server

import (
	"github.com/gofiber/fiber/v2"
)

// RecordView handles POST /api/posts/:id/views. Public; every page load
// counts unless the dedup window says otherwise.
func (s *Server) RecordView(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	count, err := s.engagement.RecordView(c.Context(), id, s.visitorKey(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"view_count": count})
}

// GetLikeStatus handles GET /api/posts/:id/like. Anonymous callers get
// liked=false, not an error.
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	currentUserID, _ := s.optionalUserID(c)

	liked, err := s.engagement.LikeStatus(c.Context(), id, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetLikesCount handles GET /api/posts/:id/likes
func (s *Server) GetLikesCount(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	count, err := s.engagement.LikesCount(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"likes_count": count})
}

// ToggleLike handles POST /api/posts/:id/like. Returns the authoritative
// server-side state so clients reconcile against it.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	result, err := s.engagement.ToggleLike(c.Context(), id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
