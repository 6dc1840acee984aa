package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo persiste borradores como JSONB y, junto a ellos, el XML firmado
// que devuelve el servicio de firma. Un borrador por (auto, tipo).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// SaveDraft inserta o reemplaza el borrador de (auto, tipo).
func (r *DocumentRepo) SaveDraft(ctx context.Context, doc *entity.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO dte_documents (id, car_id, doc_type, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (car_id, doc_type) DO UPDATE
		SET id = EXCLUDED.id, payload = EXCLUDED.payload, updated_at = now()`,
		doc.ID, doc.CarID, int(doc.Header.DocType), payload, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

// GetDraft devuelve el borrador de (auto, tipo), o nil si no existe.
func (r *DocumentRepo) GetDraft(ctx context.Context, carID string, docType entity.DocumentType) (*entity.Document, error) {
	var payload []byte
	err := r.q.QueryRow(ctx, `
		SELECT payload FROM dte_documents WHERE car_id = $1 AND doc_type = $2`,
		carID, int(docType),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var doc entity.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("deserializar borrador: %w", err)
	}
	return &doc, nil
}

// DeleteDraft descarta el borrador de (auto, tipo). No-op si no existe.
func (r *DocumentRepo) DeleteDraft(ctx context.Context, carID string, docType entity.DocumentType) error {
	_, err := r.q.Exec(ctx, `
		DELETE FROM dte_documents WHERE car_id = $1 AND doc_type = $2 AND signed_payload IS NULL`,
		carID, int(docType),
	)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// SaveSigned guarda el track ID y el XML firmado junto al borrador.
func (r *DocumentRepo) SaveSigned(ctx context.Context, docID, trackID, signedPayload string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE dte_documents SET track_id = $2, signed_payload = $3, updated_at = now()
		WHERE id = $1`,
		docID, trackID, signedPayload,
	)
	if err != nil {
		return fmt.Errorf("save signed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: documento %s", domain.ErrNotFound, docID)
	}
	return nil
}

// GetSigned devuelve la firma persistida de (auto, tipo).
func (r *DocumentRepo) GetSigned(ctx context.Context, carID string, docType entity.DocumentType) (string, string, error) {
	var trackID, payload *string
	err := r.q.QueryRow(ctx, `
		SELECT track_id, signed_payload FROM dte_documents
		WHERE car_id = $1 AND doc_type = $2`,
		carID, int(docType),
	).Scan(&trackID, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("%w: sin borrador para el auto %s", domain.ErrNotFound, carID)
		}
		return "", "", fmt.Errorf("get signed: %w", err)
	}
	if payload == nil {
		return "", "", fmt.Errorf("%w: documento del auto %s sin firmar", domain.ErrNotFound, carID)
	}
	track := ""
	if trackID != nil {
		track = *trackID
	}
	return track, *payload, nil
}
