package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

type translateRequest struct {
	Keywords string `json:"keywords"`
	Source   string `json:"source"`
	Target   string `json:"target"`
}

// TranslateKeywords handles POST /api/translate: the live keyword preview for
// the input form. Untranslatable keywords come back unchanged.
func (s *Server) TranslateKeywords(c fiber.Ctx) error {
	var req translateRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid translate request body")
	}
	search := s.configSnapshot().Search
	if req.Source == "" {
		req.Source = search.Language
	}
	if req.Target == "" {
		req.Target = search.TranslateTo
	}

	out := engine.TranslateKeywords(c.Context(), engine.ParseListField(req.Keywords), req.Source, req.Target)
	return c.JSON(fiber.Map{"keywords": out, "source": req.Source, "target": req.Target})
}
