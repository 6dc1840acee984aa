package repository

import (
	"context"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// DocumentRepository persiste borradores y resultados firmados, uno por
// (auto, tipo de documento), para que una corrida interrumpida se retome sin
// rederivar el documento.
type DocumentRepository interface {
	SaveDraft(ctx context.Context, doc *entity.Document) error
	GetDraft(ctx context.Context, carID string, docType entity.DocumentType) (*entity.Document, error)
	// DeleteDraft descarta el borrador de (auto, tipo). No-op si no existe.
	DeleteDraft(ctx context.Context, carID string, docType entity.DocumentType) error
	// SaveSigned guarda el XML firmado y el track ID junto al borrador.
	SaveSigned(ctx context.Context, docID, trackID, signedPayload string) error
	GetSigned(ctx context.Context, carID string, docType entity.DocumentType) (trackID, signedPayload string, err error)
}
