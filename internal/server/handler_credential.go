package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/config"
)

// GetCredential handles GET /api/credential. The key itself is never echoed.
func (s *Server) GetCredential(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"configured": s.configSnapshot().APIKey != ""})
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

// PutCredential handles PUT /api/credential: stores the key in memory and
// persists it. A failed write is non-fatal; the key still applies to this
// session.
func (s *Server) PutCredential(c fiber.Ctx) error {
	var req credentialRequest
	if err := c.Bind().Body(&req); err != nil || req.APIKey == "" {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "api_key is required")
	}

	cfg := s.configSnapshot()
	cfg.APIKey = req.APIKey
	s.SetConfig(cfg)

	persisted := true
	if err := config.Save(cfg, s.cfgPath); err != nil {
		slog.Warn("credential persist failed", slog.Any("error", err))
		persisted = false
	}
	return c.JSON(fiber.Map{"configured": true, "persisted": persisted})
}

// DeleteCredential handles DELETE /api/credential: forgets the key and
// removes the on-disk store.
func (s *Server) DeleteCredential(c fiber.Ctx) error {
	cfg := s.configSnapshot()
	cfg.APIKey = ""
	s.SetConfig(cfg)

	if err := config.Delete(s.cfgPath); err != nil {
		slog.Warn("credential delete failed", slog.Any("error", err))
	}
	return c.JSON(fiber.Map{"configured": false})
}
