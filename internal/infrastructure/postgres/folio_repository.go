package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo ledger de folios sobre PostgreSQL. La reserva es un único
// UPDATE … RETURNING sobre folio_pools: esa fila es la exclusión mutua entre
// procesos, no hay sección crítica en memoria.
type FolioRepo struct {
	pool *pgxpool.Pool
}

// NewFolioRepository construye el ledger. Requiere el pool (no un tx) porque
// Reserve abre su propia transacción corta.
func NewFolioRepository(pool *pgxpool.Pool) *FolioRepo {
	return &FolioRepo{pool: pool}
}

// CreatePool registra el rango autorizado de un CAF.
func (r *FolioRepo) CreatePool(ctx context.Context, p *entity.FolioPool) error {
	next := p.NextAvailable
	if next == 0 {
		next = p.RangeStart
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO folio_pools (id, doc_type, environment, range_start, range_end, next_available, authorized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		p.ID, int(p.DocType), p.Environment, p.RangeStart, p.RangeEnd, next, p.AuthorizedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya hay un pool para tipo %d en %s", domain.ErrDuplicate, p.DocType, p.Environment)
		}
		return fmt.Errorf("insert folio pool: %w", err)
	}
	return nil
}

// GetPool devuelve el pool de (tipo, ambiente), o nil si no existe.
func (r *FolioRepo) GetPool(ctx context.Context, docType entity.DocumentType, environment string) (*entity.FolioPool, error) {
	var p entity.FolioPool
	var dt int
	err := r.pool.QueryRow(ctx, `
		SELECT id, doc_type, environment, range_start, range_end, next_available, authorized_at, created_at, updated_at
		FROM folio_pools WHERE doc_type = $1 AND environment = $2`,
		int(docType), environment,
	).Scan(&p.ID, &dt, &p.Environment, &p.RangeStart, &p.RangeEnd, &p.NextAvailable,
		&p.AuthorizedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folio pool: %w", err)
	}
	p.DocType = entity.DocumentType(dt)
	return &p, nil
}

// Reserve asigna atómicamente el siguiente folio y registra la asignación.
// El UPDATE condicional solo afecta la fila si quedan folios; dos procesos
// concurrentes jamás obtienen el mismo número.
func (r *FolioRepo) Reserve(ctx context.Context, docType entity.DocumentType, environment string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var poolID string
	var folio int64
	err = tx.QueryRow(ctx, `
		UPDATE folio_pools
		SET next_available = next_available + 1, updated_at = now()
		WHERE doc_type = $1 AND environment = $2 AND next_available <= range_end
		RETURNING id, next_available - 1`,
		int(docType), environment,
	).Scan(&poolID, &folio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyEmptyReserve(ctx, docType, environment)
		}
		return 0, fmt.Errorf("reserve folio: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO folio_allocations (pool_id, folio, status, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())`,
		poolID, folio, entity.FolioStatusReserved,
	)
	if err != nil {
		return 0, fmt.Errorf("insert folio allocation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return folio, nil
}

// classifyEmptyReserve distingue pool inexistente de rango agotado.
func (r *FolioRepo) classifyEmptyReserve(ctx context.Context, docType entity.DocumentType, environment string) error {
	pool, err := r.GetPool(ctx, docType, environment)
	if err != nil {
		return err
	}
	if pool == nil {
		return fmt.Errorf("%w: pool tipo %d en %s", domain.ErrNotFound, docType, environment)
	}
	return fmt.Errorf("%w: tipo %d en %s (rango %d-%d)", domain.ErrFolioExhausted,
		docType, environment, pool.RangeStart, pool.RangeEnd)
}

// Commit marca un folio como consumido. Idempotente sobre folios ya
// commiteados; es un conflicto si el folio fue anulado.
func (r *FolioRepo) Commit(ctx context.Context, docType entity.DocumentType, environment string, folio int64) error {
	return r.resolve(ctx, docType, environment, folio, entity.FolioStatusCommitted, "")
}

// Void marca un folio reservado como saltado. El cursor nunca retrocede, el
// folio queda fuera de uso para siempre.
func (r *FolioRepo) Void(ctx context.Context, docType entity.DocumentType, environment string, folio int64, reason string) error {
	return r.resolve(ctx, docType, environment, folio, entity.FolioStatusVoided, reason)
}

func (r *FolioRepo) resolve(ctx context.Context, docType entity.DocumentType, environment string, folio int64, target, reason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `
		SELECT a.status
		FROM folio_allocations a
		JOIN folio_pools p ON p.id = a.pool_id
		WHERE p.doc_type = $1 AND p.environment = $2 AND a.folio = $3
		FOR UPDATE OF a`,
		int(docType), environment, folio,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: folio %d no fue reservado", domain.ErrNotFound, folio)
		}
		return fmt.Errorf("lock folio allocation: %w", err)
	}

	switch {
	case current == target:
		return nil // idempotente
	case current != entity.FolioStatusReserved:
		return fmt.Errorf("%w: folio %d está %s", domain.ErrConflict, folio, current)
	}

	_, err = tx.Exec(ctx, `
		UPDATE folio_allocations a
		SET status = $4, reason = $5, updated_at = now()
		FROM folio_pools p
		WHERE a.pool_id = p.id AND p.doc_type = $1 AND p.environment = $2 AND a.folio = $3`,
		int(docType), environment, folio, target, reason,
	)
	if err != nil {
		return fmt.Errorf("resolve folio allocation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Allocations lista el registro de auditoría de un pool, en orden de folio.
func (r *FolioRepo) Allocations(ctx context.Context, poolID string) ([]*entity.FolioAllocation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pool_id, folio, status, reason, created_at, updated_at
		FROM folio_allocations WHERE pool_id = $1 ORDER BY folio`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("list folio allocations: %w", err)
	}
	defer rows.Close()

	var out []*entity.FolioAllocation
	for rows.Next() {
		var a entity.FolioAllocation
		if err := rows.Scan(&a.PoolID, &a.Folio, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan folio allocation: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
