package repository

import (
	"context"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// CarRepository puerto de persistencia del inventario de autos en consignación.
// El pipeline DTE lo usa en modo lectura salvo UpdateStatus.
type CarRepository interface {
	Create(ctx context.Context, car *entity.Car) error
	GetByID(ctx context.Context, id string) (*entity.Car, error)
	GetByPatente(ctx context.Context, patente string) (*entity.Car, error)
	List(ctx context.Context, status string) ([]*entity.Car, error)
	Update(ctx context.Context, car *entity.Car) error
	// UpdateStatus cambia solo el estado; la legalidad de la transición la
	// decide el StatusTracker, no el repositorio.
	UpdateStatus(ctx context.Context, id, status string) error
}
