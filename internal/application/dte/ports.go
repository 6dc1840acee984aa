// Package dte orquesta el pipeline de documentos tributarios: construcción de
// borradores, validación, asignación de folios y envío al servicio de firma.
package dte

import (
	"context"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// SignedResult es la confirmación del servicio de firma.
type SignedResult struct {
	TrackID       string
	SignedPayload string // XML firmado y timbrado, opaco para el pipeline
}

// Submitter envía un documento validado al servicio externo de firma.
// La implementación es responsable del rate limiting y de los reintentos de
// transporte; los errores que devuelve son terminales para el intento.
type Submitter interface {
	Submit(ctx context.Context, doc *entity.Document) (*SignedResult, error)
}

// SettlementRenderer genera el estado de liquidación en PDF para el dueño.
type SettlementRenderer interface {
	Render(car *entity.Car, doc *entity.Document) ([]byte, error)
}
