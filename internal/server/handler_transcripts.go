package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

// GetTranscriptSRT handles GET /api/transcripts/:id — one SRT file. The :id
// may carry an ".srt" suffix; ?lang= sets the preferred caption language.
func (s *Server) GetTranscriptSRT(c fiber.Ctx) error {
	videoID := strings.TrimSuffix(c.Params("id"), ".srt")
	if videoID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "video id is required")
	}
	lang := fiber.Query[string](c, "lang")

	srt, err := engine.FetchSRT(c.Context(), videoID, lang)
	if err != nil {
		if errors.Is(err, engine.ErrNoCaptions) {
			return errorJSON(c, fiber.StatusNotFound, "NO_CAPTIONS", "no public captions for this video")
		}
		return errorJSON(c, fiber.StatusBadGateway, "TRANSCRIPT_FAILED", err.Error())
	}

	c.Set("Content-Type", "application/x-subrip")
	c.Set("Content-Disposition", `attachment; filename=`+engine.SafeFilename(videoID)+`.srt`)
	return c.SendString(srt)
}

type transcriptZipRequest struct {
	Items []engine.ZipItem `json:"items"`
	Lang  string           `json:"lang"`
}

// PostTranscriptZip handles POST /api/transcripts/zip — a ZIP of SRT files
// for the selected videos, with a README manifest of items lacking captions.
func (s *Server) PostTranscriptZip(c fiber.Ctx) error {
	var req transcriptZipRequest
	if err := c.Bind().Body(&req); err != nil || len(req.Items) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "items are required")
	}

	data, err := engine.BuildTranscriptZip(c.Context(), req.Items, req.Lang)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "ZIP_FAILED", err.Error())
	}
	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", `attachment; filename=transcripts_selected.zip`)
	return c.Send(data)
}
