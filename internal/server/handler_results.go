package server

import (
	"github.com/gofiber/fiber/v3"
)

// GetResults handles GET /api/results: the published rows in default ranked
// order (views-per-hour desc, views desc).
func (s *Server) GetResults(c fiber.Ctx) error {
	rows := s.runner.Results()
	return c.JSON(fiber.Map{
		"count": len(rows),
		"phase": s.runner.Phase(),
		"rows":  rows,
	})
}
