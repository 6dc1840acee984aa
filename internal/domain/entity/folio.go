package entity

import "time"

// Ambientes del SII para los que se emiten CAF independientes.
const (
	EnvCertificacion = "certificacion"
	EnvProduccion    = "produccion"
)

// Estados de un folio asignado. Un folio jamás vuelve al pool: si no llega a
// firmarse queda voided (el SII acepta saltos de folio, nunca reutilización).
const (
	FolioStatusReserved  = "reserved"
	FolioStatusCommitted = "committed"
	FolioStatusVoided    = "voided"
)

// FolioPool es el rango de folios autorizado por un CAF para un tipo de
// documento y ambiente. Solo el ledger muta NextAvailable, y solo hacia adelante.
type FolioPool struct {
	ID            string
	DocType       DocumentType
	Environment   string
	RangeStart    int64
	RangeEnd      int64
	NextAvailable int64 // invariante: RangeStart <= NextAvailable <= RangeEnd+1
	AuthorizedAt  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Exhausted indica que no quedan folios por asignar.
func (p *FolioPool) Exhausted() bool {
	return p.NextAvailable > p.RangeEnd
}

// Remaining devuelve cuántos folios quedan disponibles.
func (p *FolioPool) Remaining() int64 {
	if p.Exhausted() {
		return 0
	}
	return p.RangeEnd - p.NextAvailable + 1
}

// Contains indica si el folio cae dentro del rango autorizado.
func (p *FolioPool) Contains(folio int64) bool {
	return folio >= p.RangeStart && folio <= p.RangeEnd
}

// FolioAllocation es el registro de auditoría de un folio asignado.
type FolioAllocation struct {
	PoolID    string
	Folio     int64
	Status    string
	Reason    string // motivo del void, vacío en otro caso
	CreatedAt time.Time
	UpdatedAt time.Time
}
