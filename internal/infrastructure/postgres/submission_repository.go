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

var _ repository.SubmissionRepository = (*SubmissionRepo)(nil)

const submissionColumns = `id, document_id, car_id, doc_type, folio, status,
	attempt_count, last_error, track_id, signed_payload, created_at, updated_at`

// SubmissionRepo historial de envíos al servicio de firma sobre PostgreSQL.
type SubmissionRepo struct {
	q Querier
}

// NewSubmissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubmissionRepository(q Querier) *SubmissionRepo {
	return &SubmissionRepo{q: q}
}

// Create persiste un intento de envío nuevo.
func (r *SubmissionRepo) Create(ctx context.Context, sub *entity.Submission) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dte_submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sub.ID, sub.DocumentID, sub.CarID, int(sub.DocType), sub.Folio, sub.Status,
		sub.AttemptCount, sub.LastError, sub.TrackID, sub.SignedPayload,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Update reescribe el estado del envío.
func (r *SubmissionRepo) Update(ctx context.Context, sub *entity.Submission) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE dte_submissions SET
			status = $2, attempt_count = $3, last_error = $4,
			track_id = $5, signed_payload = $6, updated_at = $7
		WHERE id = $1`,
		sub.ID, sub.Status, sub.AttemptCount, sub.LastError,
		sub.TrackID, sub.SignedPayload, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: envío %s", domain.ErrNotFound, sub.ID)
	}
	return nil
}

// GetByID devuelve un envío por ID, o nil si no existe.
func (r *SubmissionRepo) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetLatest devuelve el envío más reciente de (auto, tipo), o nil si no hay.
func (r *SubmissionRepo) GetLatest(ctx context.Context, carID string, docType entity.DocumentType) (*entity.Submission, error) {
	return r.getBy(ctx, `WHERE car_id = $1 AND doc_type = $2 ORDER BY created_at DESC LIMIT 1`, carID, int(docType))
}

func (r *SubmissionRepo) getBy(ctx context.Context, clause string, args ...any) (*entity.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM dte_submissions ` + clause
	var s entity.Submission
	var dt int
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.DocumentID, &s.CarID, &dt, &s.Folio, &s.Status,
		&s.AttemptCount, &s.LastError, &s.TrackID, &s.SignedPayload,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	s.DocType = entity.DocumentType(dt)
	return &s, nil
}
