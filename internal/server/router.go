package server

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
)

// Routes configures the middleware stack and all routes on the given app.
func Routes(app *fiber.App, s *Server) {
	app.Use(recoverer.New())
	app.Use(NewRequestLogger())
	app.Use(MetricsMiddleware())

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", MetricsHandler())

	// Result table page
	app.Get("/", s.TablePage)

	api := app.Group("/api")

	api.Post("/run", s.StartRun)
	api.Get("/results", s.GetResults)

	api.Get("/quota", s.GetQuota)
	api.Get("/quota/log", s.GetQuotaLog)
	api.Post("/quota/estimate", s.EstimateQuota)

	api.Get("/credential", s.GetCredential)
	api.Put("/credential", s.PutCredential)
	api.Delete("/credential", s.DeleteCredential)

	api.Post("/translate", s.TranslateKeywords)

	api.Get("/export", s.ExportXLSX)
	api.Get("/transcripts/:id", s.GetTranscriptSRT)
	api.Post("/transcripts/zip", s.PostTranscriptZip)
}

// errorJSON is the uniform error envelope.
func errorJSON(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"code": code, "message": message},
	})
}
