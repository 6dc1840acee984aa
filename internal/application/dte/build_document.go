package dte

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain"
	domconsignment "github.com/dryanez/autodirectocrm/internal/domain/consignment"
	domdte "github.com/dryanez/autodirectocrm/internal/domain/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

// BuildUseCase construye y valida el borrador de un DTE para un auto.
// Orden de operaciones: reservar folio, construir, validar, persistir. Si la
// validación falla el folio reservado se anula (nunca se reutiliza).
type BuildUseCase struct {
	carRepo     repository.CarRepository
	folioRepo   repository.FolioRepository
	docRepo     repository.DocumentRepository
	tracker     *consignment.StatusTracker
	issuer      entity.Issuer
	environment string
	log         *logger.Logger
}

// NewBuildUseCase construye el caso de uso.
func NewBuildUseCase(
	carRepo repository.CarRepository,
	folioRepo repository.FolioRepository,
	docRepo repository.DocumentRepository,
	tracker *consignment.StatusTracker,
	issuer entity.Issuer,
	environment string,
	log *logger.Logger,
) *BuildUseCase {
	return &BuildUseCase{
		carRepo:     carRepo,
		folioRepo:   folioRepo,
		docRepo:     docRepo,
		tracker:     tracker,
		issuer:      issuer,
		environment: environment,
		log:         log.Component("dte-build"),
	}
}

// Build genera el borrador. Idempotente por (auto, tipo): si ya existe un
// borrador lo devuelve sin consumir otro folio. Con DryRun valida contra el
// próximo folio del pool sin reservarlo ni persistir nada.
func (uc *BuildUseCase) Build(ctx context.Context, in dto.BuildDTERequest) (*dto.DocumentResponse, error) {
	docType := entity.DocumentType(in.TipoDTE)
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: tipo de DTE %d no soportado", domain.ErrInvalidInput, in.TipoDTE)
	}

	car, err := uc.carRepo.GetByID(ctx, in.CarID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, fmt.Errorf("%w: auto %s", domain.ErrNotFound, in.CarID)
	}

	if existing, err := uc.docRepo.GetDraft(ctx, car.ID, docType); err != nil {
		return nil, err
	} else if existing != nil && !in.DryRun {
		uc.log.Info().Str("car_id", car.ID).Int64("folio", existing.Header.Folio).
			Msg("borrador ya existente, se reutiliza")
		return uc.respond(car, existing), nil
	}

	pool, err := uc.folioRepo.GetPool(ctx, docType, uc.environment)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: no hay CAF cargado para tipo %d en %s", domain.ErrNotFound, docType, uc.environment)
	}

	var folio int64
	if in.DryRun {
		if pool.Exhausted() {
			return nil, fmt.Errorf("%w: tipo %d en %s", domain.ErrFolioExhausted, docType, uc.environment)
		}
		folio = pool.NextAvailable
	} else {
		folio, err = uc.folioRepo.Reserve(ctx, docType, uc.environment)
		if err != nil {
			return nil, err
		}
	}

	doc, err := uc.build(car, docType, folio, in.IndTraslado)
	if err != nil {
		uc.voidIfReserved(ctx, docType, folio, in.DryRun, "fallo de construcción: "+err.Error())
		return nil, err
	}
	if violations := domdte.ValidateDocument(doc, pool); len(violations) > 0 {
		uc.voidIfReserved(ctx, docType, folio, in.DryRun, "borrador inválido")
		return nil, violations
	}

	if in.DryRun {
		uc.log.Info().Str("car_id", car.ID).Int("tipo", in.TipoDTE).Msg("dry-run válido, folio no consumido")
		return uc.respond(car, doc), nil
	}

	doc.ID = uuid.New().String()
	doc.CarID = car.ID
	doc.CreatedAt = time.Now()
	if err := uc.docRepo.SaveDraft(ctx, doc); err != nil {
		uc.voidIfReserved(ctx, docType, folio, in.DryRun, "no se pudo persistir el borrador")
		return nil, err
	}
	if docType == entity.DocTypeLiquidacionFactura {
		if err := uc.tracker.Advance(ctx, car.ID, entity.CarStatusDraftDTE); err != nil {
			// El ciclo de vida del auto no admite el borrador: se descarta todo.
			uc.voidIfReserved(ctx, docType, folio, in.DryRun, "estado del auto no admite borrador: "+err.Error())
			if delErr := uc.docRepo.DeleteDraft(ctx, car.ID, docType); delErr != nil {
				uc.log.Error().Err(delErr).Str("car_id", car.ID).Msg("no se pudo descartar el borrador huérfano")
			}
			return nil, err
		}
	}

	uc.log.Info().Str("car_id", car.ID).Int("tipo", in.TipoDTE).Int64("folio", folio).
		Msg("borrador de DTE generado")
	return uc.respond(car, doc), nil
}

func (uc *BuildUseCase) build(car *entity.Car, docType entity.DocumentType, folio int64, indTraslado int) (*entity.Document, error) {
	now := time.Now()
	switch docType {
	case entity.DocTypeLiquidacionFactura:
		breakdown, err := domconsignment.Calculate(car.SellingPrice, car.CommissionRate)
		if err != nil {
			return nil, err
		}
		return domdte.BuildLiquidacionFactura(car, breakdown, folio, uc.issuer, now)
	case entity.DocTypeGuiaDespacho:
		if indTraslado == 0 {
			indTraslado = entity.IndTrasladoConsignacion
		}
		return domdte.BuildGuiaDespacho(car, folio, uc.issuer, indTraslado, now)
	default:
		return nil, fmt.Errorf("%w: tipo de DTE %d no soportado", domain.ErrInvalidInput, docType)
	}
}

// voidIfReserved anula un folio reservado cuando el borrador no llegó a
// persistirse. El cursor del pool nunca retrocede.
func (uc *BuildUseCase) voidIfReserved(ctx context.Context, docType entity.DocumentType, folio int64, dryRun bool, reason string) {
	if dryRun {
		return
	}
	if err := uc.folioRepo.Void(ctx, docType, uc.environment, folio, reason); err != nil {
		uc.log.Error().Err(err).Int64("folio", folio).Msg("no se pudo anular el folio reservado")
	}
}

func (uc *BuildUseCase) respond(car *entity.Car, doc *entity.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:       doc.ID,
		TipoDTE:  int(doc.Header.DocType),
		Folio:    doc.Header.Folio,
		FchEmis:  doc.Header.IssueDate.Format("2006-01-02"),
		Document: doc,
		Warnings: doc.Warnings,
	}
	if doc.Header.DocType == entity.DocTypeLiquidacionFactura {
		if b, err := domconsignment.Calculate(car.SellingPrice, car.CommissionRate); err == nil {
			resp.Breakdown = &dto.BreakdownResponse{
				SellingPrice:    b.SellingPrice,
				CommissionRate:  b.CommissionRate,
				Commission:      b.Commission,
				IVA:             b.IVA,
				GrossCommission: b.GrossCommission,
				NetToOwner:      b.NetToOwner,
			}
		}
	}
	return resp
}
