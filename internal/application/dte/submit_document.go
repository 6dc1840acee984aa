package dte

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain"
	domdte "github.com/dryanez/autodirectocrm/internal/domain/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

// SubmitUseCase envía un borrador validado al servicio de firma y registra el
// resultado. El folio se commitea solo con firma exitosa; cualquier fallo
// terminal del envío anula el folio y descarta el borrador, que deberá
// regenerarse con un folio nuevo (los folios anulados nunca se reutilizan).
type SubmitUseCase struct {
	carRepo     repository.CarRepository
	folioRepo   repository.FolioRepository
	docRepo     repository.DocumentRepository
	subRepo     repository.SubmissionRepository
	submitter   Submitter
	tracker     *consignment.StatusTracker
	environment string
	log         *logger.Logger
}

// NewSubmitUseCase construye el caso de uso.
func NewSubmitUseCase(
	carRepo repository.CarRepository,
	folioRepo repository.FolioRepository,
	docRepo repository.DocumentRepository,
	subRepo repository.SubmissionRepository,
	submitter Submitter,
	tracker *consignment.StatusTracker,
	environment string,
	log *logger.Logger,
) *SubmitUseCase {
	return &SubmitUseCase{
		carRepo:     carRepo,
		folioRepo:   folioRepo,
		docRepo:     docRepo,
		subRepo:     subRepo,
		submitter:   submitter,
		tracker:     tracker,
		environment: environment,
		log:         log.Component("dte-submit"),
	}
}

// Submit firma el borrador de (auto, tipo). Idempotente: si el último envío ya
// está firmado devuelve esa confirmación sin tocar el servicio remoto.
func (uc *SubmitUseCase) Submit(ctx context.Context, in dto.SubmitDTERequest) (*dto.SubmissionResponse, error) {
	docType := entity.DocumentType(in.TipoDTE)
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: tipo de DTE %d no soportado", domain.ErrInvalidInput, in.TipoDTE)
	}

	if latest, err := uc.subRepo.GetLatest(ctx, in.CarID, docType); err != nil {
		return nil, err
	} else if latest != nil && latest.Status == entity.SubmissionStatusSigned {
		uc.log.Info().Str("car_id", in.CarID).Int64("folio", latest.Folio).
			Str("track_id", latest.TrackID).Msg("envío ya firmado, se reutiliza")
		return toSubmissionResponse(latest), nil
	}

	draft, err := uc.docRepo.GetDraft(ctx, in.CarID, docType)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: no existe borrador de tipo %d para el auto %s", domain.ErrNotFound, in.TipoDTE, in.CarID)
	}

	// Revalidación defensiva contra el pool vigente antes de gastar un envío.
	pool, err := uc.folioRepo.GetPool(ctx, docType, uc.environment)
	if err != nil {
		return nil, err
	}
	if violations := domdte.ValidateDocument(draft, pool); len(violations) > 0 {
		return nil, violations
	}

	sub := &entity.Submission{
		ID:         uuid.New().String(),
		DocumentID: draft.ID,
		CarID:      in.CarID,
		DocType:    docType,
		Folio:      draft.Header.Folio,
		Status:     entity.SubmissionStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := uc.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	result, submitErr := uc.submitter.Submit(ctx, draft)
	sub.AttemptCount++
	sub.UpdatedAt = time.Now()

	if submitErr != nil {
		return uc.recordFailure(ctx, sub, docType, submitErr)
	}

	if err := uc.docRepo.SaveSigned(ctx, draft.ID, result.TrackID, result.SignedPayload); err != nil {
		return nil, err
	}
	if err := uc.folioRepo.Commit(ctx, docType, uc.environment, draft.Header.Folio); err != nil {
		return nil, err
	}
	sub.Status = entity.SubmissionStatusSigned
	sub.TrackID = result.TrackID
	sub.SignedPayload = result.SignedPayload
	if err := uc.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	// El avance de estado no puede deshacer la firma: si falla queda en el log
	// y un reintento idempotente del pipeline lo completa.
	if docType == entity.DocTypeLiquidacionFactura {
		if err := uc.tracker.Advance(ctx, in.CarID, entity.CarStatusSentDTE); err != nil {
			uc.log.Error().Err(err).Str("car_id", in.CarID).Msg("DTE firmado pero el estado no avanzó")
		}
	}

	uc.log.Info().Str("car_id", in.CarID).Int64("folio", sub.Folio).
		Str("track_id", sub.TrackID).Msg("DTE firmado y timbrado")
	return toSubmissionResponse(sub), nil
}

// recordFailure clasifica el error del envío. Todo fallo terminal anula el
// folio y descarta el borrador: un folio reservado para un envío fallido no
// puede reenviarse (el SII admite saltos en el rango pero no reutilización),
// así que el reintento pasa por reconstruir el documento con folio fresco.
func (uc *SubmitUseCase) recordFailure(ctx context.Context, sub *entity.Submission, docType entity.DocumentType, submitErr error) (*dto.SubmissionResponse, error) {
	sub.LastError = submitErr.Error()

	if errors.Is(submitErr, domain.ErrRateLimitExceeded) {
		sub.Status = entity.SubmissionStatusRateLimited
	} else {
		sub.Status = entity.SubmissionStatusFailed
	}

	if err := uc.folioRepo.Void(ctx, docType, uc.environment, sub.Folio, sub.LastError); err != nil {
		uc.log.Error().Err(err).Int64("folio", sub.Folio).Msg("no se pudo anular el folio del envío fallido")
	}
	if err := uc.docRepo.DeleteDraft(ctx, sub.CarID, docType); err != nil {
		uc.log.Error().Err(err).Str("car_id", sub.CarID).Msg("no se pudo descartar el borrador del envío fallido")
	}

	if err := uc.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	uc.log.Warn().Err(submitErr).Str("car_id", sub.CarID).Int64("folio", sub.Folio).
		Str("status", sub.Status).Msg("envío al servicio de firma falló")
	return toSubmissionResponse(sub), submitErr
}

func toSubmissionResponse(sub *entity.Submission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:         sub.ID,
		DocumentID: sub.DocumentID,
		Folio:      sub.Folio,
		Status:     sub.Status,
		TrackID:    sub.TrackID,
		Attempts:   sub.AttemptCount,
		LastError:  sub.LastError,
		UpdatedAt:  sub.UpdatedAt,
	}
}
