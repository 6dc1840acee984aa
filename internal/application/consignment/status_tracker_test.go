package consignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/memory"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func seedCar(t *testing.T, store *memory.CarStore, status string) *entity.Car {
	t.Helper()
	car := &entity.Car{
		ID:        "car-1",
		Patente:   "ABCD12",
		Brand:     "Toyota",
		Model:     "Corolla",
		OwnerName: "Juan Pérez",
		OwnerRUT:  "12345678-5",
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Create(context.Background(), car))
	return car
}

func TestStatusTracker_AvanceCompleto(t *testing.T) {
	store := memory.NewCarStore()
	car := seedCar(t, store, entity.CarStatusAvailable)
	tracker := NewStatusTracker(store, testLogger())
	ctx := context.Background()

	require.NoError(t, tracker.Advance(ctx, car.ID, entity.CarStatusDraftDTE))
	require.NoError(t, tracker.Advance(ctx, car.ID, entity.CarStatusSentDTE))

	updated, err := store.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CarStatusSentDTE, updated.Status)
}

func TestStatusTracker_MismoEstadoEsNoOp(t *testing.T) {
	store := memory.NewCarStore()
	car := seedCar(t, store, entity.CarStatusDraftDTE)
	tracker := NewStatusTracker(store, testLogger())

	err := tracker.Advance(context.Background(), car.ID, entity.CarStatusDraftDTE)
	assert.NoError(t, err, "reaplicar el estado actual debe ser idempotente")
}

func TestStatusTracker_NoSePuedeSaltarEstados(t *testing.T) {
	store := memory.NewCarStore()
	car := seedCar(t, store, entity.CarStatusAvailable)
	tracker := NewStatusTracker(store, testLogger())

	err := tracker.Advance(context.Background(), car.ID, entity.CarStatusSentDTE)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStatusTracker_NoSePuedeRetroceder(t *testing.T) {
	store := memory.NewCarStore()
	car := seedCar(t, store, entity.CarStatusSentDTE)
	tracker := NewStatusTracker(store, testLogger())

	err := tracker.Advance(context.Background(), car.ID, entity.CarStatusDraftDTE)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStatusTracker_AutoInexistente(t *testing.T) {
	tracker := NewStatusTracker(memory.NewCarStore(), testLogger())
	err := tracker.Advance(context.Background(), "no-existe", entity.CarStatusDraftDTE)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
