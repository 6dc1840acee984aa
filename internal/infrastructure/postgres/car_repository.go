package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

var _ repository.CarRepository = (*CarRepo)(nil)

const carColumns = `id, patente, vin, brand, model, year, color,
	owner_name, owner_rut, owner_email, owner_phone,
	owner_price, selling_price, commission_rate, status, notes, created_at, updated_at`

// CarRepo implementación del puerto CarRepository sobre PostgreSQL (usable con pool o tx).
type CarRepo struct {
	q Querier
}

// NewCarRepository construye el adaptador del inventario. Pasar pool o tx (Querier).
func NewCarRepository(q Querier) *CarRepo {
	return &CarRepo{q: q}
}

// Create persiste un auto nuevo.
func (r *CarRepo) Create(ctx context.Context, car *entity.Car) error {
	query := `
		INSERT INTO cars (` + carColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		car.ID, car.Patente, car.VIN, car.Brand, car.Model, car.Year, car.Color,
		car.OwnerName, car.OwnerRUT, car.OwnerEmail, car.OwnerPhone,
		car.OwnerPrice, car.SellingPrice, car.CommissionRate, car.Status, car.Notes,
		car.CreatedAt, car.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: patente %s", domain.ErrDuplicate, car.Patente)
		}
		return fmt.Errorf("insert car: %w", err)
	}
	return nil
}

// GetByID obtiene un auto por ID, o nil si no existe.
func (r *CarRepo) GetByID(ctx context.Context, id string) (*entity.Car, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByPatente obtiene un auto por patente, o nil si no existe.
func (r *CarRepo) GetByPatente(ctx context.Context, patente string) (*entity.Car, error) {
	return r.getBy(ctx, "patente = $1", patente)
}

func (r *CarRepo) getBy(ctx context.Context, where string, arg any) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE ` + where
	car, err := scanCar(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get car: %w", err)
	}
	return car, nil
}

// List lista el inventario, opcionalmente filtrado por estado.
func (r *CarRepo) List(ctx context.Context, status string) ([]*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var out []*entity.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		out = append(out, car)
	}
	return out, rows.Err()
}

// Update reescribe todos los campos mutables del auto.
func (r *CarRepo) Update(ctx context.Context, car *entity.Car) error {
	query := `
		UPDATE cars SET
			patente = $2, vin = $3, brand = $4, model = $5, year = $6, color = $7,
			owner_name = $8, owner_rut = $9, owner_email = $10, owner_phone = $11,
			owner_price = $12, selling_price = $13, commission_rate = $14,
			status = $15, notes = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		car.ID, car.Patente, car.VIN, car.Brand, car.Model, car.Year, car.Color,
		car.OwnerName, car.OwnerRUT, car.OwnerEmail, car.OwnerPhone,
		car.OwnerPrice, car.SellingPrice, car.CommissionRate,
		car.Status, car.Notes, car.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: auto %s", domain.ErrNotFound, car.ID)
	}
	return nil
}

// UpdateStatus cambia solo el estado del auto.
func (r *CarRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE cars SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update car status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: auto %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanCar(row pgx.Row) (*entity.Car, error) {
	var c entity.Car
	err := row.Scan(
		&c.ID, &c.Patente, &c.VIN, &c.Brand, &c.Model, &c.Year, &c.Color,
		&c.OwnerName, &c.OwnerRUT, &c.OwnerEmail, &c.OwnerPhone,
		&c.OwnerPrice, &c.SellingPrice, &c.CommissionRate, &c.Status, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
