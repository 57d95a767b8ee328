package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

// GetQuota handles GET /api/quota: ledger counters, remaining budget, the
// orchestrator phase and, when the gateway is blocked, the live wait countdown.
func (s *Server) GetQuota(c fiber.Ctx) error {
	snap := s.ledger.Snapshot()
	budget := engine.Cfg.DailyQuota
	resp := fiber.Map{
		"calls":     snap.Calls,
		"units":     snap.Units,
		"budget":    budget,
		"remaining": s.ledger.Remaining(budget),
		"phase":     s.runner.Phase(),
		"running":   s.runner.Running(),
	}
	if ws, ok := s.gw.Wait(); ok {
		resp["wait"] = ws
	}
	return c.JSON(resp)
}

// GetQuotaLog handles GET /api/quota/log: the append-only spend log.
func (s *Server) GetQuotaLog(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"entries": s.ledger.Log()})
}

// EstimateRequest shapes POST /api/quota/estimate.
type EstimateRequest struct {
	Keywords      string   `json:"keywords"`
	Channels      string   `json:"channels"`
	RunMode       string   `json:"run_mode,omitempty"`
	Regions       []string `json:"regions,omitempty"`
	PerChannelMax int      `json:"per_channel_max,omitempty"`
	PerKeywordMax int      `json:"per_keyword_max,omitempty"`
}

// EstimateQuota handles POST /api/quota/estimate: a pre-run min/max unit
// projection for the given fan-out shape.
func (s *Server) EstimateQuota(c fiber.Ctx) error {
	var req EstimateRequest
	if err := c.Bind().Body(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid estimate request body")
	}
	search := s.configSnapshot().Search
	if req.RunMode == "" {
		req.RunMode = search.RunMode
	}
	if len(req.Regions) == 0 {
		req.Regions = search.Regions
	}
	if req.PerChannelMax == 0 {
		req.PerChannelMax = search.PerChannelMax
	}
	if req.PerKeywordMax == 0 {
		req.PerKeywordMax = search.PerKeywordMax
	}

	numChannels := len(engine.ParseListField(req.Channels))
	numKeywords := len(engine.ParseListField(req.Keywords))
	switch engine.RunMode(req.RunMode) {
	case engine.ModeChannels:
		numKeywords = 0
	case engine.ModeKeywords:
		numChannels = 0
	}

	est := engine.EstimateRun(numChannels, numKeywords, req.PerChannelMax, req.PerKeywordMax, len(req.Regions), engine.Cfg.DailyQuota)
	return c.JSON(est)
}
