package server

import (
	"io"

	"vibelet/internal/models"
	"vibelet/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxImageUploadBytes = 5 << 20 // 5 MiB

// CreateVibe handles POST /api/v1/vibes. The body is either JSON or
// multipart form data with an optional "image" file part.
func (s *Server) CreateVibe(c *fiber.Ctx) error {
	in := service.CreateVibeInput{UserID: currentUserID(c)}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		if v := form.Value["content"]; len(v) > 0 {
			in.Content = v[0]
		}
		if v := form.Value["privacy"]; len(v) > 0 {
			in.Privacy = models.PrivacyStatus(v[0])
		}
		if files := form.File["image"]; len(files) > 0 {
			fh := files[0]
			if fh.Size > maxImageUploadBytes {
				return models.RespondWithError(c,
					models.NewValidationError("Image too large (max 5 MiB)"))
			}
			f, err := fh.Open()
			if err != nil {
				return models.RespondWithError(c, models.NewInternalError(err))
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return models.RespondWithError(c, models.NewInternalError(err))
			}
			in.ImageName = fh.Filename
			in.ImageContent = content
		}
	} else {
		var req struct {
			Content string               `json:"content"`
			Privacy models.PrivacyStatus `json:"privacy"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		}
		in.Content = req.Content
		in.Privacy = req.Privacy
	}

	vibe, err := s.vibeService.CreateVibe(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(vibe)
}

// GetFeed handles GET /api/v1/vibes/feed?page=&size=.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, size := parsePage(c)
	vibes, err := s.vibeService.GetFeed(c.UserContext(), currentUserID(c), page, size)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(vibes)
}

// GetUserVibes handles GET /api/v1/vibes/user/:userId.
func (s *Server) GetUserVibes(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "user ID")
	if err != nil {
		return nil
	}
	page, size := parsePage(c)
	vibes, err := s.vibeService.GetUserVibes(c.UserContext(), userID, page, size)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(vibes)
}

// GetVibe handles GET /api/v1/vibes/:id.
func (s *Server) GetVibe(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}
	vibe, err := s.vibeService.GetVibe(c.UserContext(), currentUserID(c), vibeID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(vibe)
}

// UpdateVibe handles PUT /api/v1/vibes/:id.
func (s *Server) UpdateVibe(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string               `json:"content"`
		Privacy models.PrivacyStatus `json:"privacy"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	vibe, err := s.vibeService.UpdateVibe(c.UserContext(), service.UpdateVibeInput{
		UserID:  currentUserID(c),
		VibeID:  vibeID,
		Content: req.Content,
		Privacy: req.Privacy,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(vibe)
}

// DeleteVibe handles DELETE /api/v1/vibes/:id.
func (s *Server) DeleteVibe(c *fiber.Ctx) error {
	vibeID, err := s.parseID(c, "id", "vibe ID")
	if err != nil {
		return nil
	}
	if err := s.vibeService.DeleteVibe(c.UserContext(), currentUserID(c), vibeID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
