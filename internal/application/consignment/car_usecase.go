// Package consignment contiene los casos de uso del inventario de consignación
// (CRUD delgado) y el seguimiento de estado que el pipeline DTE conduce.
package consignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain"
	domconsignment "github.com/dryanez/autodirectocrm/internal/domain/consignment"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
	"github.com/dryanez/autodirectocrm/pkg/rut"
)

// CarUseCase CRUD del inventario. Colaborador delgado del pipeline: no
// contiene lógica tributaria, pero sí descarta borradores que un cambio de
// precio deja obsoletos.
type CarUseCase struct {
	carRepo     repository.CarRepository
	docRepo     repository.DocumentRepository
	folioRepo   repository.FolioRepository
	environment string
}

// NewCarUseCase construye el caso de uso.
func NewCarUseCase(
	carRepo repository.CarRepository,
	docRepo repository.DocumentRepository,
	folioRepo repository.FolioRepository,
	environment string,
) *CarUseCase {
	return &CarUseCase{
		carRepo:     carRepo,
		docRepo:     docRepo,
		folioRepo:   folioRepo,
		environment: environment,
	}
}

// Create registra un auto nuevo validando RUT del dueño y precios.
func (uc *CarUseCase) Create(ctx context.Context, in dto.CreateCarRequest) (*entity.Car, error) {
	if strings.TrimSpace(in.Patente) == "" || strings.TrimSpace(in.Brand) == "" || strings.TrimSpace(in.Model) == "" {
		return nil, fmt.Errorf("%w: patente, marca y modelo son obligatorios", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.OwnerName) == "" {
		return nil, fmt.Errorf("%w: falta el nombre del dueño", domain.ErrInvalidInput)
	}
	ownerRUT, err := rut.Format(in.OwnerRUT)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if in.SellingPrice.IsNegative() || in.OwnerPrice.IsNegative() {
		return nil, fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}

	rate := in.CommissionRate
	if rate.IsZero() {
		rate = domconsignment.DefaultCommissionRate
	}
	if _, err := domconsignment.Calculate(in.SellingPrice, rate); err != nil {
		return nil, err
	}

	patente := strings.ToUpper(strings.TrimSpace(in.Patente))
	if existing, err := uc.carRepo.GetByPatente(ctx, patente); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un auto con patente %s", domain.ErrDuplicate, patente)
	}

	now := time.Now()
	car := &entity.Car{
		ID:             uuid.New().String(),
		Patente:        patente,
		VIN:            strings.TrimSpace(in.VIN),
		Brand:          in.Brand,
		Model:          in.Model,
		Year:           in.Year,
		Color:          in.Color,
		OwnerName:      in.OwnerName,
		OwnerRUT:       ownerRUT,
		OwnerEmail:     in.OwnerEmail,
		OwnerPhone:     in.OwnerPhone,
		OwnerPrice:     in.OwnerPrice,
		SellingPrice:   in.SellingPrice,
		CommissionRate: rate,
		Status:         entity.CarStatusAvailable,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.carRepo.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// GetByID devuelve un auto o domain.ErrNotFound.
func (uc *CarUseCase) GetByID(ctx context.Context, id string) (*entity.Car, error) {
	car, err := uc.carRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, fmt.Errorf("%w: auto %s", domain.ErrNotFound, id)
	}
	return car, nil
}

// List lista el inventario, opcionalmente filtrado por estado.
func (uc *CarUseCase) List(ctx context.Context, status string) ([]*entity.Car, error) {
	return uc.carRepo.List(ctx, status)
}

// UpdatePricing actualiza el acuerdo de precios. El desglose de comisión nunca
// se cachea: todo borrador sin firmar queda obsoleto con el precio nuevo, así
// que se descarta (y su folio se anula) antes de grabar los valores.
func (uc *CarUseCase) UpdatePricing(ctx context.Context, id string, ownerPrice, sellingPrice, rate decimal.Decimal) (*entity.Car, error) {
	car, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.Status == entity.CarStatusSentDTE {
		return nil, fmt.Errorf("%w: el auto %s ya tiene DTE firmado", domain.ErrConflict, id)
	}
	if _, err := domconsignment.Calculate(sellingPrice, rate); err != nil {
		return nil, err
	}
	if err := uc.discardStaleDrafts(ctx, car.ID); err != nil {
		return nil, err
	}
	car.OwnerPrice = ownerPrice
	car.SellingPrice = sellingPrice
	car.CommissionRate = rate
	car.UpdatedAt = time.Now()
	if err := uc.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// discardStaleDrafts anula el folio y borra el borrador sin firmar de cada
// tipo de DTE del auto. Un documento ya firmado es inmutable y se conserva.
func (uc *CarUseCase) discardStaleDrafts(ctx context.Context, carID string) error {
	for _, docType := range []entity.DocumentType{entity.DocTypeLiquidacionFactura, entity.DocTypeGuiaDespacho} {
		draft, err := uc.docRepo.GetDraft(ctx, carID, docType)
		if err != nil {
			return err
		}
		if draft == nil {
			continue
		}
		if _, _, err := uc.docRepo.GetSigned(ctx, carID, docType); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := uc.folioRepo.Void(ctx, docType, uc.environment, draft.Header.Folio, "precio actualizado antes de firmar"); err != nil {
			return err
		}
		if err := uc.docRepo.DeleteDraft(ctx, carID, docType); err != nil {
			return err
		}
	}
	return nil
}
