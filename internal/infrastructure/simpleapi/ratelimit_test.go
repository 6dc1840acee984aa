package simpleapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualLimiter_BloqueaAlAgotarElCupoPorSegundo(t *testing.T) {
	// Cupo por minuto holgado para aislar el cupo fino.
	lim := newDualLimiter(2, 6000)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, lim.Wait(ctx))
	require.NoError(t, lim.Wait(ctx))
	burst := time.Since(start)
	assert.Less(t, burst, 200*time.Millisecond, "el burst inicial no debe bloquear")

	// La tercera llamada espera el siguiente token (cada 500ms a 2 req/s).
	require.NoError(t, lim.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond,
		"agotado el burst, Wait debe bloquear hasta liberar un token")
}

func TestDualLimiter_CupoPorMinutoTambienLimita(t *testing.T) {
	// Cupo por segundo holgado: solo el presupuesto por minuto frena.
	lim := newDualLimiter(1000, 2)
	require.NoError(t, lim.Wait(context.Background()))
	require.NoError(t, lim.Wait(context.Background()))

	// El próximo token por minuto tarda ~30s; con un deadline corto Wait
	// falla de inmediato en vez de colgarse.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := lim.Wait(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDualLimiter_ContextoCanceladoAbortaLaEspera(t *testing.T) {
	lim := newDualLimiter(1, 6000)
	require.NoError(t, lim.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := lim.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 900*time.Millisecond,
		"la cancelación debe cortar la espera antes del próximo token")
}
