package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
)

// CarHandler maneja las peticiones HTTP del inventario de consignación.
type CarHandler struct {
	uc *consignment.CarUseCase
}

// NewCarHandler construye el handler.
func NewCarHandler(uc *consignment.CarUseCase) *CarHandler {
	return &CarHandler{uc: uc}
}

// Create registra un auto nuevo en consignación.
func (h *CarHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	car, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCarResponse(car))
}

// GetByID devuelve un auto.
func (h *CarHandler) GetByID(c *fiber.Ctx) error {
	car, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCarResponse(car))
}

// List lista el inventario; admite ?status=available|draft_dte|sent_dte|sold.
func (h *CarHandler) List(c *fiber.Ctx) error {
	cars, err := h.uc.List(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CarResponse, 0, len(cars))
	for _, car := range cars {
		out = append(out, dto.ToCarResponse(car))
	}
	return c.JSON(out)
}

// UpdatePricing ajusta el acuerdo de precios de un auto sin DTE firmado.
func (h *CarHandler) UpdatePricing(c *fiber.Ctx) error {
	var in dto.UpdatePricingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	car, err := h.uc.UpdatePricing(c.Context(), c.Params("id"), in.OwnerPrice, in.SellingPrice, in.CommissionRate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCarResponse(car))
}
