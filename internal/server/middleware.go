package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
)

// NewRequestLogger returns a middleware that logs each request via slog.
func NewRequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		// Copy before Next(): fiber hands out slices backed by the fasthttp
		// buffer, which can be reused by handlers.
		method := string([]byte(c.Method()))
		path := string([]byte(c.Path()))

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("elapsed", time.Since(start)),
		}
		switch {
		case status >= 500:
			slog.Error("request", attrs...)
		case status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
		return err
	}
}
