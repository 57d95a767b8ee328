package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

// RunRequest carries one collection run's inputs. Keyword and channel fields
// are free-form operator text: commas, spaces and newlines all separate.
// Omitted settings fall back to the persisted configuration.
type RunRequest struct {
	Keywords string `json:"keywords"`
	Channels string `json:"channels"`

	RunMode        string   `json:"run_mode,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	SourceLang     string   `json:"source_lang,omitempty"`
	TargetLang     string   `json:"target_lang,omitempty"`
	UseTranslation *bool    `json:"use_translation,omitempty"`

	FormFactor      string   `json:"form_factor,omitempty"`
	ShortsSec       int      `json:"shorts_sec,omitempty"`
	DaysBack        int      `json:"days_back,omitempty"`
	PerChannelMax   int      `json:"per_channel_max,omitempty"`
	PerKeywordMax   int      `json:"per_keyword_max,omitempty"`
	MinViewsPerHour *float64 `json:"min_vph,omitempty"`
	WaitMinutes     *float64 `json:"wait_minutes,omitempty"`
	IgnoreFilters   bool     `json:"ignore_filters,omitempty"`
	StrictKeywords  *bool    `json:"strict_keywords,omitempty"`
	KeywordMode     string   `json:"keyword_mode,omitempty"`
}

// StartRun handles POST /api/run. The run is synchronous: the response
// arrives when the pipeline finishes or fails. A second run while one is in
// flight is rejected with 409.
func (s *Server) StartRun(c fiber.Ctx) error {
	var req RunRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid run request body")
	}

	cfg := s.configSnapshot()
	if cfg.APIKey == "" {
		return errorJSON(c, fiber.StatusBadRequest, "NO_CREDENTIAL", "configure an API key first")
	}
	search := cfg.Search
	if req.RunMode != "" {
		search.RunMode = req.RunMode
	}
	if len(req.Regions) > 0 {
		search.Regions = req.Regions
	}
	if req.SourceLang != "" {
		search.Language = req.SourceLang
	}
	if req.TargetLang != "" {
		search.TranslateTo = req.TargetLang
	}
	if req.UseTranslation != nil {
		search.UseTranslation = *req.UseTranslation
	}
	if req.FormFactor != "" {
		search.FormFactor = req.FormFactor
	}
	if req.ShortsSec > 0 {
		search.ShortsSec = req.ShortsSec
	}
	if req.DaysBack > 0 {
		search.DaysBack = req.DaysBack
	}
	if req.PerChannelMax > 0 {
		search.PerChannelMax = req.PerChannelMax
	}
	if req.PerKeywordMax > 0 {
		search.PerKeywordMax = req.PerKeywordMax
	}
	if req.MinViewsPerHour != nil {
		search.MinViewsPerHour = *req.MinViewsPerHour
	}
	if req.WaitMinutes != nil {
		search.WaitMinutes = *req.WaitMinutes
	}
	if req.StrictKeywords != nil {
		search.StrictKeywords = *req.StrictKeywords
	}
	if req.KeywordMode != "" {
		search.KeywordMode = req.KeywordMode
	}

	sourceKeywords := engine.ParseListField(req.Keywords)
	effectiveKeywords := sourceKeywords
	effectiveLang := search.Language
	if search.UseTranslation && search.TranslateTo != "" {
		effectiveKeywords = engine.TranslateKeywords(c.Context(), sourceKeywords, search.Language, search.TranslateTo)
		effectiveLang = search.TranslateTo
	}

	params := engine.RunParams{
		Key:           cfg.APIKey,
		Mode:          engine.RunMode(search.RunMode),
		Channels:      engine.ParseListField(req.Channels),
		Keywords:      effectiveKeywords,
		Regions:       search.Regions,
		Language:      effectiveLang,
		DaysBack:      search.DaysBack,
		PerChannelMax: search.PerChannelMax,
		PerKeywordMax: search.PerKeywordMax,
		WaitMinutes:   search.WaitMinutes,
		Filters: engine.Filters{
			FormFactor:      engine.FormFactor(search.FormFactor),
			ShortsSec:       search.ShortsSec,
			MinViewsPerHour: search.MinViewsPerHour,
			IgnoreFilters:   req.IgnoreFilters,
			StrictKeywords:  search.StrictKeywords,
			// The effective keyword list feeds the strict filter even in
			// channel-only mode: leftover keyword text narrows channel runs.
			Keywords:    effectiveKeywords,
			KeywordMode: engine.MatchMode(search.KeywordMode),
		},
	}

	start := time.Now()
	report, err := s.runner.Run(c.Context(), params)
	if err != nil {
		var apiErr *engine.APIError
		switch {
		case errors.Is(err, engine.ErrRunInProgress):
			return errorJSON(c, fiber.StatusConflict, "RUN_IN_PROGRESS", err.Error())
		case errors.Is(err, engine.ErrNoCredential), errors.Is(err, engine.ErrNoInputs):
			return errorJSON(c, fiber.StatusBadRequest, "CONFIGURATION", err.Error())
		case errors.As(err, &apiErr):
			slog.Error("run failed", slog.Int("status", apiErr.Status), slog.String("reason", apiErr.Reason))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": fiber.Map{
					"code":     "UPSTREAM_ERROR",
					"status":   apiErr.Status,
					"reason":   apiErr.Reason,
					"body":     apiErr.Body,
					"endpoint": apiErr.Endpoint,
				},
			})
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
	}
	Metrics.RunDuration.Observe(time.Since(start).Seconds())

	return c.JSON(fiber.Map{
		"report":   report,
		"keywords": effectiveKeywords,
	})
}
