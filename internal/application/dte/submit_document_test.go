package dte

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/memory"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

// fakeSubmitter guioniza las respuestas del servicio de firma.
type fakeSubmitter struct {
	calls  int
	result *SignedResult
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ *entity.Document) (*SignedResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type submitFixture struct {
	*buildFixture
	subs      *memory.SubmissionStore
	submitter *fakeSubmitter
	uc        *SubmitUseCase
}

func newSubmitFixture(t *testing.T) *submitFixture {
	t.Helper()
	bf := newBuildFixture(t)
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	subs := memory.NewSubmissionStore()
	submitter := &fakeSubmitter{result: &SignedResult{TrackID: "TRK-1001", SignedPayload: "<DTE/>"}}
	tracker := consignment.NewStatusTracker(bf.cars, log)
	return &submitFixture{
		buildFixture: bf,
		subs:         subs,
		submitter:    submitter,
		uc: NewSubmitUseCase(bf.cars, bf.folios, bf.docs, subs, submitter, tracker,
			entity.EnvCertificacion, log),
	}
}

// buildDraft genera el borrador de liquidación para el auto sembrado.
func (f *submitFixture) buildDraft(t *testing.T, carID string) {
	t.Helper()
	_, err := f.buildFixture.uc.Build(context.Background(), dto.BuildDTERequest{CarID: carID, TipoDTE: 43})
	require.NoError(t, err)
}

func TestSubmit_FirmaExitosa(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)
	f.buildDraft(t, car.ID)
	ctx := context.Background()

	resp, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	require.NoError(t, err)

	assert.Equal(t, entity.SubmissionStatusSigned, resp.Status)
	assert.Equal(t, "TRK-1001", resp.TrackID)
	assert.Equal(t, int64(500), resp.Folio)

	// Folio commiteado, estado avanzado, firma persistida.
	allocs, err := f.folios.Allocations(ctx, "pool-43")
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusCommitted, allocs[0].Status)

	updated, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CarStatusSentDTE, updated.Status)

	trackID, payload, err := f.docs.GetSigned(ctx, car.ID, entity.DocTypeLiquidacionFactura)
	require.NoError(t, err)
	assert.Equal(t, "TRK-1001", trackID)
	assert.Equal(t, "<DTE/>", payload)
}

func TestSubmit_IdempotenteTrasFirma(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)
	f.buildDraft(t, car.ID)
	ctx := context.Background()

	first, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	require.NoError(t, err)
	second, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	require.NoError(t, err)

	assert.Equal(t, first.TrackID, second.TrackID)
	assert.Equal(t, 1, f.submitter.calls, "el segundo submit no toca el servicio remoto")
}

func TestSubmit_SinBorrador(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)

	_, err := f.uc.Submit(context.Background(), dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.submitter.calls)
}

func TestSubmit_RechazoAnulaElFolio(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)
	f.buildDraft(t, car.ID)
	f.submitter.err = &domain.DocumentRejectedError{RemoteCode: 400, Message: "RUT receptor inválido"}
	ctx := context.Background()

	resp, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, entity.SubmissionStatusFailed, resp.Status)

	allocs, allocErr := f.folios.Allocations(ctx, "pool-43")
	require.NoError(t, allocErr)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusVoided, allocs[0].Status, "documento rechazado quema su folio")

	draft, draftErr := f.docs.GetDraft(ctx, car.ID, entity.DocTypeLiquidacionFactura)
	require.NoError(t, draftErr)
	assert.Nil(t, draft, "el borrador rechazado se descarta")
}

func TestSubmit_RateLimitAnulaElFolioYSeReconstruye(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)
	f.buildDraft(t, car.ID)
	f.submitter.err = domain.ErrRateLimitExceeded
	ctx := context.Background()

	resp, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
	require.NotNil(t, resp)
	assert.Equal(t, entity.SubmissionStatusRateLimited, resp.Status)
	assert.Equal(t, int64(500), resp.Folio)

	// El folio 500 queda anulado (salto legal en el rango, nunca reutilizado)
	// y el borrador descartado: el reintento reconstruye con folio fresco.
	allocs, allocErr := f.folios.Allocations(ctx, "pool-43")
	require.NoError(t, allocErr)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusVoided, allocs[0].Status)

	f.submitter.err = nil
	f.buildDraft(t, car.ID)
	retried, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	require.NoError(t, err)
	assert.Equal(t, int64(501), retried.Folio)
	assert.Equal(t, entity.SubmissionStatusSigned, retried.Status)
}

func TestSubmit_ErrorDeTransporteAnulaElFolio(t *testing.T) {
	f := newSubmitFixture(t)
	car := f.seedCar(t)
	f.buildDraft(t, car.ID)
	f.submitter.err = domain.ErrTransport
	ctx := context.Background()

	resp, err := f.uc.Submit(ctx, dto.SubmitDTERequest{CarID: car.ID, TipoDTE: 43})
	assert.ErrorIs(t, err, domain.ErrTransport)
	require.NotNil(t, resp)
	assert.Equal(t, entity.SubmissionStatusFailed, resp.Status)

	allocs, allocErr := f.folios.Allocations(ctx, "pool-43")
	require.NoError(t, allocErr)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusVoided, allocs[0].Status)

	draft, draftErr := f.docs.GetDraft(ctx, car.ID, entity.DocTypeLiquidacionFactura)
	require.NoError(t, draftErr)
	assert.Nil(t, draft)
}
