package consignment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/memory"
)

type carFixture struct {
	cars   *memory.CarStore
	docs   *memory.DocumentStore
	folios *memory.FolioLedger
	uc     *CarUseCase
}

func newCarFixture(t *testing.T) *carFixture {
	t.Helper()
	cars := memory.NewCarStore()
	docs := memory.NewDocumentStore()
	folios := memory.NewFolioLedger()
	require.NoError(t, folios.CreatePool(context.Background(), &entity.FolioPool{
		ID:          "pool-43",
		DocType:     entity.DocTypeLiquidacionFactura,
		Environment: entity.EnvCertificacion,
		RangeStart:  500,
		RangeEnd:    599,
	}))
	require.NoError(t, folios.CreatePool(context.Background(), &entity.FolioPool{
		ID:          "pool-52",
		DocType:     entity.DocTypeGuiaDespacho,
		Environment: entity.EnvCertificacion,
		RangeStart:  1,
		RangeEnd:    50,
	}))
	return &carFixture{
		cars:   cars,
		docs:   docs,
		folios: folios,
		uc:     NewCarUseCase(cars, docs, folios, entity.EnvCertificacion),
	}
}

func (f *carFixture) seedCar(t *testing.T, status string) *entity.Car {
	t.Helper()
	car := &entity.Car{
		ID:             "car-1",
		Patente:        "ABCD12",
		Brand:          "Toyota",
		Model:          "Corolla",
		Year:           2020,
		OwnerName:      "Juan Pérez",
		OwnerRUT:       "12345678-5",
		OwnerPrice:     decimal.NewFromInt(8_500_000),
		SellingPrice:   decimal.NewFromInt(10_000_000),
		CommissionRate: decimal.RequireFromString("0.10"),
		Status:         status,
	}
	require.NoError(t, f.cars.Create(context.Background(), car))
	return car
}

// seedDraft reserva un folio y persiste un borrador mínimo para el auto.
func (f *carFixture) seedDraft(t *testing.T, carID string, docType entity.DocumentType, docID string) *entity.Document {
	t.Helper()
	ctx := context.Background()
	folio, err := f.folios.Reserve(ctx, docType, entity.EnvCertificacion)
	require.NoError(t, err)
	doc := &entity.Document{
		ID:    docID,
		CarID: carID,
		Header: entity.Header{
			DocType: docType,
			Folio:   folio,
		},
	}
	require.NoError(t, f.docs.SaveDraft(ctx, doc))
	return doc
}

func TestUpdatePricing_DescartaElBorradorObsoleto(t *testing.T) {
	f := newCarFixture(t)
	car := f.seedCar(t, entity.CarStatusDraftDTE)
	f.seedDraft(t, car.ID, entity.DocTypeLiquidacionFactura, "doc-43")
	ctx := context.Background()

	updated, err := f.uc.UpdatePricing(ctx, car.ID,
		decimal.NewFromInt(9_000_000), decimal.NewFromInt(12_000_000), decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	assert.True(t, updated.SellingPrice.Equal(decimal.NewFromInt(12_000_000)))

	// El borrador construido con el precio anterior no puede sobrevivir al
	// cambio: se descarta y su folio queda anulado.
	draft, draftErr := f.docs.GetDraft(ctx, car.ID, entity.DocTypeLiquidacionFactura)
	require.NoError(t, draftErr)
	assert.Nil(t, draft)

	allocs, allocErr := f.folios.Allocations(ctx, "pool-43")
	require.NoError(t, allocErr)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusVoided, allocs[0].Status)
}

func TestUpdatePricing_ConservaLaGuiaFirmada(t *testing.T) {
	f := newCarFixture(t)
	car := f.seedCar(t, entity.CarStatusAvailable)
	doc := f.seedDraft(t, car.ID, entity.DocTypeGuiaDespacho, "doc-52")
	ctx := context.Background()
	require.NoError(t, f.docs.SaveSigned(ctx, doc.ID, "TRK-52", "<DTE/>"))
	require.NoError(t, f.folios.Commit(ctx, entity.DocTypeGuiaDespacho, entity.EnvCertificacion, doc.Header.Folio))

	_, err := f.uc.UpdatePricing(ctx, car.ID,
		decimal.NewFromInt(9_000_000), decimal.NewFromInt(12_000_000), decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	// Un documento firmado es inmutable: ni el borrador ni su folio se tocan.
	draft, draftErr := f.docs.GetDraft(ctx, car.ID, entity.DocTypeGuiaDespacho)
	require.NoError(t, draftErr)
	require.NotNil(t, draft)

	allocs, allocErr := f.folios.Allocations(ctx, "pool-52")
	require.NoError(t, allocErr)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusCommitted, allocs[0].Status)
}

func TestUpdatePricing_BloqueadoConDTEFirmado(t *testing.T) {
	f := newCarFixture(t)
	car := f.seedCar(t, entity.CarStatusSentDTE)

	_, err := f.uc.UpdatePricing(context.Background(), car.ID,
		decimal.NewFromInt(9_000_000), decimal.NewFromInt(12_000_000), decimal.RequireFromString("0.10"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}
