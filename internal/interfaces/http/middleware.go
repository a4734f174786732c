package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/infrastructure/metrics"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// RequestLogger una línea por request con método, ruta, status, latencia y request id.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("actor", GetUserID(c)).
			Msg("request")
		return err
	}
}

// MetricsMiddleware cuenta requests y duración por patrón de ruta.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		m.ObserveRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
