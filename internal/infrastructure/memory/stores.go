package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

var (
	_ repository.CarRepository        = (*CarStore)(nil)
	_ repository.DocumentRepository   = (*DocumentStore)(nil)
	_ repository.SubmissionRepository = (*SubmissionStore)(nil)
)

// CarStore inventario en memoria.
type CarStore struct {
	mu   sync.RWMutex
	cars map[string]*entity.Car
}

// NewCarStore crea un inventario vacío.
func NewCarStore() *CarStore {
	return &CarStore{cars: make(map[string]*entity.Car)}
}

func (s *CarStore) Create(_ context.Context, car *entity.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[car.ID]; ok {
		return fmt.Errorf("%w: auto %s", domain.ErrDuplicate, car.ID)
	}
	cp := *car
	s.cars[car.ID] = &cp
	return nil
}

func (s *CarStore) GetByID(_ context.Context, id string) (*entity.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	car, ok := s.cars[id]
	if !ok {
		return nil, nil
	}
	cp := *car
	return &cp, nil
}

func (s *CarStore) GetByPatente(_ context.Context, patente string) (*entity.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, car := range s.cars {
		if car.Patente == patente {
			cp := *car
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *CarStore) List(_ context.Context, status string) ([]*entity.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Car
	for _, car := range s.cars {
		if status == "" || car.Status == status {
			cp := *car
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *CarStore) Update(_ context.Context, car *entity.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[car.ID]; !ok {
		return fmt.Errorf("%w: auto %s", domain.ErrNotFound, car.ID)
	}
	cp := *car
	s.cars[car.ID] = &cp
	return nil
}

func (s *CarStore) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		return fmt.Errorf("%w: auto %s", domain.ErrNotFound, id)
	}
	car.Status = status
	return nil
}

type draftKey struct {
	carID   string
	docType entity.DocumentType
}

type signedRecord struct {
	trackID string
	payload string
}

// DocumentStore borradores y firmas en memoria.
type DocumentStore struct {
	mu     sync.RWMutex
	drafts map[draftKey]*entity.Document
	signed map[string]signedRecord // por document ID
}

// NewDocumentStore crea un almacén vacío.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		drafts: make(map[draftKey]*entity.Document),
		signed: make(map[string]signedRecord),
	}
}

func (s *DocumentStore) SaveDraft(_ context.Context, doc *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.drafts[draftKey{doc.CarID, doc.Header.DocType}] = &cp
	return nil
}

func (s *DocumentStore) GetDraft(_ context.Context, carID string, docType entity.DocumentType) (*entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.drafts[draftKey{carID, docType}]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (s *DocumentStore) DeleteDraft(_ context.Context, carID string, docType entity.DocumentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := draftKey{carID, docType}
	if doc, ok := s.drafts[key]; ok {
		if _, firmado := s.signed[doc.ID]; firmado {
			return nil
		}
		delete(s.drafts, key)
	}
	return nil
}

func (s *DocumentStore) SaveSigned(_ context.Context, docID, trackID, signedPayload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signed[docID] = signedRecord{trackID: trackID, payload: signedPayload}
	return nil
}

func (s *DocumentStore) GetSigned(_ context.Context, carID string, docType entity.DocumentType) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.drafts[draftKey{carID, docType}]
	if !ok {
		return "", "", fmt.Errorf("%w: sin borrador para el auto %s", domain.ErrNotFound, carID)
	}
	rec, ok := s.signed[doc.ID]
	if !ok {
		return "", "", fmt.Errorf("%w: documento %s sin firmar", domain.ErrNotFound, doc.ID)
	}
	return rec.trackID, rec.payload, nil
}

// SubmissionStore historial de envíos en memoria.
type SubmissionStore struct {
	mu   sync.RWMutex
	subs []*entity.Submission
}

// NewSubmissionStore crea un historial vacío.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{}
}

func (s *SubmissionStore) Create(_ context.Context, sub *entity.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs = append(s.subs, &cp)
	return nil
}

func (s *SubmissionStore) Update(_ context.Context, sub *entity.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subs {
		if existing.ID == sub.ID {
			cp := *sub
			s.subs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: envío %s", domain.ErrNotFound, sub.ID)
}

func (s *SubmissionStore) GetByID(_ context.Context, id string) (*entity.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.ID == id {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *SubmissionStore) GetLatest(_ context.Context, carID string, docType entity.DocumentType) (*entity.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.subs) - 1; i >= 0; i-- {
		if s.subs[i].CarID == carID && s.subs[i].DocType == docType {
			cp := *s.subs[i]
			return &cp, nil
		}
	}
	return nil, nil
}
