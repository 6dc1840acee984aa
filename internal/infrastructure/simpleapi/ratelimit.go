package simpleapi

import (
	"context"

	"golang.org/x/time/rate"
)

// dualLimiter encadena el cupo por segundo y por minuto del servicio de firma.
// Wait bloquea hasta que ambos cupos tengan token; así el cliente casi nunca
// recibe un 429 real.
type dualLimiter struct {
	perSecond *rate.Limiter
	perMinute *rate.Limiter
}

func newDualLimiter(perSecond, perMinute int) *dualLimiter {
	return &dualLimiter{
		perSecond: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		perMinute: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

// Wait consume un token de cada cupo, en orden minuto → segundo para que el
// cupo fino no se gaste mientras se espera el grueso.
func (d *dualLimiter) Wait(ctx context.Context) error {
	if err := d.perMinute.Wait(ctx); err != nil {
		return err
	}
	return d.perSecond.Wait(ctx)
}
