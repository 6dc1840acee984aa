package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain"
	domdte "github.com/dryanez/autodirectocrm/internal/domain/dte"
)

// respondError traduce los errores de dominio a respuestas HTTP. Los fallos
// del servicio de firma se distinguen de los errores propios: un rechazo
// remoto o una cuota agotada no son un 500 de esta API.
func respondError(c *fiber.Ctx, err error) error {
	var violations domdte.Violations
	if errors.As(err, &violations) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "el documento no pasa la validación local",
			Details: violations,
		})
	}

	var rejected *domain.DocumentRejectedError
	if errors.As(err, &rejected) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code:    "DOCUMENT_REJECTED",
			Message: rejected.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrBuild):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BUILD", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrFolioExhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "FOLIO_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrAuthentication):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SIGNING_AUTH", Message: err.Error()})
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SIGNING_RATE_LIMIT", Message: err.Error()})
	case errors.Is(err, domain.ErrTransport):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SIGNING_TRANSPORT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
