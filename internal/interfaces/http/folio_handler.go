package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/simpleapi"
)

// FolioHandler gestiona los pools de folios y la carga de CAF.
type FolioHandler struct {
	folioRepo   repository.FolioRepository
	environment string
}

// NewFolioHandler construye el handler.
func NewFolioHandler(folioRepo repository.FolioRepository, environment string) *FolioHandler {
	return &FolioHandler{folioRepo: folioRepo, environment: environment}
}

// UploadCAF registra el rango de folios autorizado por un CAF del SII.
func (h *FolioHandler) UploadCAF(c *fiber.Ctx) error {
	var in dto.UploadCAFRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	pool, err := simpleapi.ParseCAF([]byte(in.CAFXML))
	if err != nil {
		return respondError(c, err)
	}
	if in.TipoDTE != 0 && in.TipoDTE != int(pool.DocType) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "el CAF no corresponde al tipo de DTE declarado",
		})
	}
	pool.ID = uuid.New().String()
	pool.Environment = in.Environment
	if pool.Environment == "" {
		pool.Environment = h.environment
	}
	if err := h.folioRepo.CreatePool(c.Context(), pool); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPoolResponse(pool))
}

// GetPool devuelve el estado del pool de un tipo de DTE.
func (h *FolioHandler) GetPool(c *fiber.Ctx) error {
	tipo, err := c.ParamsInt("tipo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo debe ser numérico"})
	}
	env := c.Query("environment", h.environment)
	pool, poolErr := h.folioRepo.GetPool(c.Context(), entity.DocumentType(tipo), env)
	if poolErr != nil {
		return respondError(c, poolErr)
	}
	if pool == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay CAF cargado para ese tipo"})
	}
	return c.JSON(toPoolResponse(pool))
}

func toPoolResponse(pool *entity.FolioPool) dto.FolioPoolResponse {
	return dto.FolioPoolResponse{
		TipoDTE:       int(pool.DocType),
		Environment:   pool.Environment,
		RangeStart:    pool.RangeStart,
		RangeEnd:      pool.RangeEnd,
		NextAvailable: pool.NextAvailable,
		Remaining:     pool.Remaining(),
		Exhausted:     pool.Exhausted(),
	}
}
