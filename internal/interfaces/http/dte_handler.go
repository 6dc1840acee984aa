package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
)

// DTEHandler maneja el pipeline de documentos tributarios vía HTTP.
type DTEHandler struct {
	buildUC      *appdte.BuildUseCase
	submitUC     *appdte.SubmitUseCase
	settlementUC *appdte.SettlementUseCase
}

// NewDTEHandler construye el handler.
func NewDTEHandler(buildUC *appdte.BuildUseCase, submitUC *appdte.SubmitUseCase, settlementUC *appdte.SettlementUseCase) *DTEHandler {
	return &DTEHandler{buildUC: buildUC, submitUC: submitUC, settlementUC: settlementUC}
}

// Build genera (o devuelve) el borrador de DTE para un auto.
func (h *DTEHandler) Build(c *fiber.Ctx) error {
	var in dto.BuildDTERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.buildUC.Build(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if in.DryRun {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// Submit firma el borrador de (auto, tipo) contra el servicio externo.
func (h *DTEHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitDTERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.submitUC.Submit(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Settlement descarga el estado de liquidación en PDF.
func (h *DTEHandler) Settlement(c *fiber.Ctx) error {
	carID := c.Params("id")
	pdf, err := h.settlementUC.Generate(c.Context(), carID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=liquidacion_%s.pdf", carID))
	return c.Send(pdf)
}
