package dte

import (
	"context"
	"fmt"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

// SettlementUseCase genera el estado de liquidación en PDF que se entrega al
// dueño junto con el pago del neto.
type SettlementUseCase struct {
	carRepo  repository.CarRepository
	docRepo  repository.DocumentRepository
	renderer SettlementRenderer
}

// NewSettlementUseCase construye el caso de uso.
func NewSettlementUseCase(carRepo repository.CarRepository, docRepo repository.DocumentRepository, renderer SettlementRenderer) *SettlementUseCase {
	return &SettlementUseCase{carRepo: carRepo, docRepo: docRepo, renderer: renderer}
}

// Generate produce el PDF a partir del borrador de liquidación del auto.
func (uc *SettlementUseCase) Generate(ctx context.Context, carID string) ([]byte, error) {
	car, err := uc.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, fmt.Errorf("%w: auto %s", domain.ErrNotFound, carID)
	}
	doc, err := uc.docRepo.GetDraft(ctx, carID, entity.DocTypeLiquidacionFactura)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: el auto %s no tiene liquidación generada", domain.ErrNotFound, carID)
	}
	return uc.renderer.Render(car, doc)
}
