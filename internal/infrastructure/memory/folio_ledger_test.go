package memory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

func newTestLedger(t *testing.T, start, end int64) (*FolioLedger, string) {
	t.Helper()
	ledger := NewFolioLedger()
	pool := &entity.FolioPool{
		ID:          "pool-43",
		DocType:     entity.DocTypeLiquidacionFactura,
		Environment: entity.EnvCertificacion,
		RangeStart:  start,
		RangeEnd:    end,
	}
	require.NoError(t, ledger.CreatePool(context.Background(), pool))
	return ledger, pool.ID
}

func TestFolioLedger_ReservaConcurrenteSinDuplicados(t *testing.T) {
	ledger, _ := newTestLedger(t, 100, 199)
	ctx := context.Background()

	const workers = 50
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			folio, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
			assert.NoError(t, err)
			results <- folio
		}()
	}
	wg.Wait()
	close(results)

	var folios []int64
	for f := range results {
		folios = append(folios, f)
	}
	sort.Slice(folios, func(i, j int) bool { return folios[i] < folios[j] })

	require.Len(t, folios, workers)
	for i, f := range folios {
		// Sin huecos ni duplicados: 100, 101, ... 149.
		assert.Equal(t, int64(100+i), f)
	}

	pool, err := ledger.GetPool(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)
	assert.Equal(t, int64(150), pool.NextAvailable)
	assert.Equal(t, int64(50), pool.Remaining())
}

func TestFolioLedger_RangoAgotado(t *testing.T) {
	ledger, _ := newTestLedger(t, 1, 2)
	ctx := context.Background()

	f1, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f1)

	f2, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f2)

	_, err = ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	assert.ErrorIs(t, err, domain.ErrFolioExhausted)
}

func TestFolioLedger_VoidNoRetrocedeElCursor(t *testing.T) {
	ledger, _ := newTestLedger(t, 10, 20)
	ctx := context.Background()

	f1, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)
	require.NoError(t, ledger.Void(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion, f1, "borrador inválido"))

	f2, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)
	assert.Equal(t, f1+1, f2, "el folio anulado no debe reutilizarse")
}

func TestFolioLedger_CommitIdempotenteYConflictos(t *testing.T) {
	ledger, poolID := newTestLedger(t, 1, 10)
	ctx := context.Background()

	folio, err := ledger.Reserve(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion)
	require.NoError(t, err)

	require.NoError(t, ledger.Commit(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion, folio))
	require.NoError(t, ledger.Commit(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion, folio), "commit repetido es no-op")

	err = ledger.Void(ctx, entity.DocTypeLiquidacionFactura, entity.EnvCertificacion, folio, "tarde")
	assert.ErrorIs(t, err, domain.ErrConflict, "no se anula un folio ya consumido")

	allocs, err := ledger.Allocations(ctx, poolID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, entity.FolioStatusCommitted, allocs[0].Status)
}

func TestFolioLedger_PoolInexistente(t *testing.T) {
	ledger := NewFolioLedger()
	_, err := ledger.Reserve(context.Background(), entity.DocTypeGuiaDespacho, entity.EnvProduccion)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolioLedger_PoolDuplicado(t *testing.T) {
	ledger, _ := newTestLedger(t, 1, 10)
	err := ledger.CreatePool(context.Background(), &entity.FolioPool{
		DocType:     entity.DocTypeLiquidacionFactura,
		Environment: entity.EnvCertificacion,
		RangeStart:  11,
		RangeEnd:    20,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
