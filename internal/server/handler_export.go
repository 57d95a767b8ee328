package server

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/xuri/excelize/v2"
)

// exportHeader lists the spreadsheet columns. Internal fields (raw
// timestamps, raw seconds, video ID, thumbnail URL) are deliberately absent.
var exportHeader = []any{
	"Channel", "Video Title", "Uploaded", "Views", "Views/hr",
	"Subscribers", "Views/Subscribers", "Duration", "URL",
}

// ExportXLSX handles GET /api/export: the published result set as a
// spreadsheet, in ranked order.
func (s *Server) ExportXLSX(c fiber.Ctx) error {
	rows := s.runner.Results()
	if len(rows) == 0 {
		return errorJSON(c, fiber.StatusNotFound, "NO_RESULTS", "no results to export; run a collection first")
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "HotVideos"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "EXPORT_FAILED", err.Error())
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "EXPORT_FAILED", err.Error())
	}
	for i, r := range rows {
		var vs any
		if r.ViewsToSubs != nil {
			vs = *r.ViewsToSubs
		}
		row := []any{
			r.Channel, r.Title, r.Uploaded, r.Views, r.ViewsPerHour,
			r.Subscribers, vs, r.Duration, r.URL,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errorJSON(c, fiber.StatusInternalServerError, "EXPORT_FAILED", err.Error())
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "EXPORT_FAILED", err.Error())
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename=youtube_hot_finder.xlsx`)
	return c.Send(buf.Bytes())
}
