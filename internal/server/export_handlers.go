package server

import (
	"vibelet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ExportData handles GET /api/v1/data/export. It returns a portable JSON
// snapshot of the caller's account.
func (s *Server) ExportData(c *fiber.Ctx) error {
	export, err := s.exportService.Export(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="vibelet-export.json"`)
	return c.JSON(export)
}

// ImportData handles POST /api/v1/data/import. The whole snapshot applies
// atomically; the response reports what was actually created.
func (s *Server) ImportData(c *fiber.Ctx) error {
	var data models.DataExport
	if err := c.BodyParser(&data); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid import payload"))
	}

	result, err := s.exportService.Import(c.UserContext(), currentUserID(c), &data)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}

// GetVibeCounts handles GET /api/v1/analytics/vibe-counts.
func (s *Server) GetVibeCounts(c *fiber.Ctx) error {
	counts, err := s.analyticsRepo.GetUserVibeCounts(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(counts)
}
