package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// statusFor traduce un error de dominio a status HTTP y código.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError escribe dto.ErrorResponse; los 500 se loguean y no exponen el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := statusFor(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Message = ve.Message
		if body.Message == "" {
			body.Message = ve.Error()
		}
		body.Fields = ve.Fields
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		body.Message = "error interno"
	}
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// bind parsea el body JSON y aplica las validaciones del DTO.
func bind(c *fiber.Ctx, log *logger.Logger, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, invalidBody(c)
	}
	if err := dto.Validate(out); err != nil {
		return false, respondError(c, log, err)
	}
	return true, nil
}
