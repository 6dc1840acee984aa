package repository

import (
	"context"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// SubmissionRepository persiste el ciclo de vida de los envíos al servicio de
// firma. Las transiciones de estado son las únicas mutaciones.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *entity.Submission) error
	Update(ctx context.Context, sub *entity.Submission) error
	GetByID(ctx context.Context, id string) (*entity.Submission, error)
	// GetLatest devuelve el envío más reciente para (auto, tipo), o nil si no hay.
	GetLatest(ctx context.Context, carID string, docType entity.DocumentType) (*entity.Submission, error)
}
