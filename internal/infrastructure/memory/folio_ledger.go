// Package memory provee adaptadores en memoria para desarrollo, dry-run y
// tests. El ledger de folios replica el contrato de atomicidad del adaptador
// PostgreSQL con un mutex de proceso.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioLedger)(nil)

type poolKey struct {
	docType     entity.DocumentType
	environment string
}

// FolioLedger implementación en memoria del ledger de folios.
type FolioLedger struct {
	mu          sync.Mutex
	pools       map[poolKey]*entity.FolioPool
	allocations map[string][]*entity.FolioAllocation // por pool ID
}

// NewFolioLedger crea un ledger vacío.
func NewFolioLedger() *FolioLedger {
	return &FolioLedger{
		pools:       make(map[poolKey]*entity.FolioPool),
		allocations: make(map[string][]*entity.FolioAllocation),
	}
}

// CreatePool registra el rango autorizado de un CAF.
func (l *FolioLedger) CreatePool(_ context.Context, pool *entity.FolioPool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := poolKey{pool.DocType, pool.Environment}
	if _, ok := l.pools[key]; ok {
		return fmt.Errorf("%w: ya hay un pool para tipo %d en %s", domain.ErrDuplicate, pool.DocType, pool.Environment)
	}
	cp := *pool
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.NextAvailable == 0 {
		cp.NextAvailable = cp.RangeStart
	}
	l.pools[key] = &cp
	return nil
}

// GetPool devuelve una copia del pool, o nil si no existe.
func (l *FolioLedger) GetPool(_ context.Context, docType entity.DocumentType, environment string) (*entity.FolioPool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pool, ok := l.pools[poolKey{docType, environment}]
	if !ok {
		return nil, nil
	}
	cp := *pool
	return &cp, nil
}

// Reserve asigna el siguiente folio y avanza el cursor bajo el mutex.
func (l *FolioLedger) Reserve(_ context.Context, docType entity.DocumentType, environment string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pool, ok := l.pools[poolKey{docType, environment}]
	if !ok {
		return 0, fmt.Errorf("%w: pool tipo %d en %s", domain.ErrNotFound, docType, environment)
	}
	if pool.NextAvailable > pool.RangeEnd {
		return 0, fmt.Errorf("%w: tipo %d en %s (rango %d-%d)", domain.ErrFolioExhausted, docType, environment, pool.RangeStart, pool.RangeEnd)
	}
	folio := pool.NextAvailable
	pool.NextAvailable++
	now := time.Now()
	l.allocations[pool.ID] = append(l.allocations[pool.ID], &entity.FolioAllocation{
		PoolID:    pool.ID,
		Folio:     folio,
		Status:    entity.FolioStatusReserved,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return folio, nil
}

// Commit marca un folio como consumido. Idempotente.
func (l *FolioLedger) Commit(_ context.Context, docType entity.DocumentType, environment string, folio int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	alloc, err := l.find(docType, environment, folio)
	if err != nil {
		return err
	}
	switch alloc.Status {
	case entity.FolioStatusCommitted:
		return nil
	case entity.FolioStatusVoided:
		return fmt.Errorf("%w: folio %d ya fue anulado", domain.ErrConflict, folio)
	}
	alloc.Status = entity.FolioStatusCommitted
	alloc.UpdatedAt = time.Now()
	return nil
}

// Void marca un folio como saltado sin retroceder el cursor. Idempotente.
func (l *FolioLedger) Void(_ context.Context, docType entity.DocumentType, environment string, folio int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	alloc, err := l.find(docType, environment, folio)
	if err != nil {
		return err
	}
	switch alloc.Status {
	case entity.FolioStatusVoided:
		return nil
	case entity.FolioStatusCommitted:
		return fmt.Errorf("%w: folio %d ya fue consumido por un envío firmado", domain.ErrConflict, folio)
	}
	alloc.Status = entity.FolioStatusVoided
	alloc.Reason = reason
	alloc.UpdatedAt = time.Now()
	return nil
}

// Allocations devuelve el registro de auditoría del pool.
func (l *FolioLedger) Allocations(_ context.Context, poolID string) ([]*entity.FolioAllocation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.allocations[poolID]
	out := make([]*entity.FolioAllocation, len(src))
	for i, a := range src {
		cp := *a
		out[i] = &cp
	}
	return out, nil
}

// find localiza la asignación de un folio. Requiere el mutex tomado.
func (l *FolioLedger) find(docType entity.DocumentType, environment string, folio int64) (*entity.FolioAllocation, error) {
	pool, ok := l.pools[poolKey{docType, environment}]
	if !ok {
		return nil, fmt.Errorf("%w: pool tipo %d en %s", domain.ErrNotFound, docType, environment)
	}
	for _, a := range l.allocations[pool.ID] {
		if a.Folio == folio {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: folio %d no fue reservado", domain.ErrNotFound, folio)
}
