package server

import (
	"vibelet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/v1/interactions/vibe/:id/like. The same
// endpoint likes and unlikes; the response reports the resulting state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}

	liked, err := s.vibeService.ToggleLike(c.UserContext(), vibeID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	count, err := s.vibeRepo.CountLikes(c.UserContext(), vibeID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked":      liked,
		"like_count": count,
	})
}

// CreateComment handles POST /api/v1/interactions/vibe/:id/comment.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.vibeService.AddComment(c.UserContext(), vibeID, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/v1/vibes/:id/comments.
func (s *Server) GetComments(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}

	comments, err := s.vibeService.ListComments(c.UserContext(), vibeID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comments)
}

// UpdateComment handles PUT /api/v1/comments/:id.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id", "comment ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), commentID, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/v1/comments/:id.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id", "comment ID")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
