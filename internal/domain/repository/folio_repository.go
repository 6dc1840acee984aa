package repository

import (
	"context"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// FolioRepository es el ledger de folios: la única sección crítica real del
// sistema. Reserve debe ser atómico entre procesos concurrentes; un folio
// jamás se reutiliza, aunque quede sin firmar (void, nunca rollback).
type FolioRepository interface {
	// CreatePool registra el rango autorizado de un CAF. Falla con
	// domain.ErrDuplicate si ya existe un pool para (tipo, ambiente).
	CreatePool(ctx context.Context, pool *entity.FolioPool) error
	GetPool(ctx context.Context, docType entity.DocumentType, environment string) (*entity.FolioPool, error)

	// Reserve asigna atómicamente el siguiente folio disponible y avanza el
	// cursor. Falla con domain.ErrFolioExhausted si el rango se agotó y con
	// domain.ErrNotFound si el pool no existe.
	Reserve(ctx context.Context, docType entity.DocumentType, environment string) (int64, error)

	// Commit marca un folio reservado como consumido por un envío firmado.
	// Idempotente: commitear dos veces es un no-op.
	Commit(ctx context.Context, docType entity.DocumentType, environment string, folio int64) error

	// Void registra un folio reservado como saltado (nunca decrementa el
	// cursor). Idempotente sobre folios ya anulados; falla con
	// domain.ErrConflict si el folio ya fue commiteado.
	Void(ctx context.Context, docType entity.DocumentType, environment string, folio int64, reason string) error

	// Allocations lista el registro de auditoría de un pool.
	Allocations(ctx context.Context, poolID string) ([]*entity.FolioAllocation, error)
}
