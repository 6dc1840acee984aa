// Package retry implementa una política de reintentos acotada con backoff fijo
// y predicado de reintentabilidad, reutilizable para fallas de red y de cuota.
package retry

import (
	"context"
	"time"
)

// Policy parametriza los reintentos: intentos totales, espera entre intentos y
// qué errores ameritan reintentar. Un error no reintentable corta de inmediato.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// Do ejecuta fn hasta MaxAttempts veces. Entre intentos duerme Backoff
// respetando la cancelación del contexto. Devuelve nil al primer éxito, el
// error original si no es reintentable, o el último error tras agotar intentos.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, p.Backoff); err != nil {
			return err
		}
	}
	return last
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
