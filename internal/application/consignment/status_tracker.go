package consignment

import (
	"context"
	"fmt"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

// transitions orden legal de estados: available → draft_dte → sent_dte.
var transitions = map[string]string{
	entity.CarStatusAvailable: entity.CarStatusDraftDTE,
	entity.CarStatusDraftDTE:  entity.CarStatusSentDTE,
}

// StatusTracker avanza el estado de un auto dentro del pipeline DTE.
// Idempotente: re-invocar con el estado actual es un no-op, lo que permite
// reintentar el pipeline completo tras un crash entre la firma y el update.
type StatusTracker struct {
	carRepo repository.CarRepository
	log     *logger.Logger
}

// NewStatusTracker construye el tracker.
func NewStatusTracker(carRepo repository.CarRepository, log *logger.Logger) *StatusTracker {
	return &StatusTracker{carRepo: carRepo, log: log.Component("status-tracker")}
}

// Advance mueve el auto a target respetando el orden legal. Saltarse un estado
// o retroceder falla con domain.ErrInvalidTransition.
func (t *StatusTracker) Advance(ctx context.Context, carID, target string) error {
	car, err := t.carRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	if car == nil {
		return fmt.Errorf("%w: auto %s", domain.ErrNotFound, carID)
	}
	if car.Status == target {
		t.log.Debug().Str("car_id", carID).Str("status", target).Msg("estado ya aplicado, no-op")
		return nil
	}
	if transitions[car.Status] != target {
		return fmt.Errorf("%w: auto %s no puede pasar de %q a %q", domain.ErrInvalidTransition, carID, car.Status, target)
	}
	if err := t.carRepo.UpdateStatus(ctx, carID, target); err != nil {
		return err
	}
	t.log.Info().Str("car_id", carID).Str("from", car.Status).Str("to", target).Msg("estado avanzado")
	return nil
}
