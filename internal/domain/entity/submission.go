package entity

import "time"

// Estados de un intento de envío al servicio de firma. Todo estado distinto
// de PENDING es terminal para ese intento; un reintento crea otro registro.
const (
	SubmissionStatusPending     = "PENDING"
	SubmissionStatusRateLimited = "RATE_LIMITED"
	SubmissionStatusFailed      = "FAILED"
	SubmissionStatusSigned      = "SIGNED"
)

// Submission rastrea un intento de firma de un documento. Las transiciones de
// Status son las únicas mutaciones después de creado.
type Submission struct {
	ID            string
	DocumentID    string
	CarID         string
	DocType       DocumentType
	Folio         int64
	Status        string
	AttemptCount  int
	LastError     string
	TrackID       string // identificador de confirmación del servicio de firma
	SignedPayload string // XML firmado, opaco, presente solo en SIGNED
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
