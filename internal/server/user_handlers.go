package server

import (
	"vibelet/internal/models"
	"vibelet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/v1/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/v1/users/me. Absent fields are left
// untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Bio       *string `json:"bio"`
		Status    *string `json:"status"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    currentUserID(c),
		Bio:       req.Bio,
		Status:    req.Status,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMySecurity handles PUT /api/v1/users/me/security.
func (s *Server) UpdateMySecurity(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string  `json:"current_password"`
		Username        *string `json:"username"`
		Email           *string `json:"email"`
		NewPassword     *string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.CurrentPassword == "" {
		return models.RespondWithError(c, models.NewValidationError("Current password is required"))
	}

	user, err := s.userService.UpdateSecurity(c.UserContext(), service.UpdateSecurityInput{
		UserID:          currentUserID(c),
		CurrentPassword: req.CurrentPassword,
		Username:        req.Username,
		Email:           req.Email,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/v1/users/me.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchUsers handles GET /api/v1/users/search?q=.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page, size := parsePage(c)
	results, err := s.userService.SearchUsers(c.UserContext(), currentUserID(c), c.Query("q"), page, size)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(results)
}

// GetUserProfile handles GET /api/v1/users/:id.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}
