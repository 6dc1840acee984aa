package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// BuildDTERequest entrada para generar el borrador de un DTE.
type BuildDTERequest struct {
	CarID       string `json:"car_id" validate:"required"`
	TipoDTE     int    `json:"tipo_dte" validate:"required"`
	IndTraslado int    `json:"ind_traslado"`
	DryRun      bool   `json:"dry_run"`
}

// SubmitDTERequest entrada para firmar un borrador ya construido. Se dirige
// por (auto, tipo) igual que el almacén de borradores.
type SubmitDTERequest struct {
	CarID   string `json:"car_id" validate:"required"`
	TipoDTE int    `json:"tipo_dte" validate:"required"`
}

// BreakdownResponse desglose de comisión de una venta en consignación.
type BreakdownResponse struct {
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Commission      decimal.Decimal `json:"commission"`
	IVA             decimal.Decimal `json:"iva"`
	GrossCommission decimal.Decimal `json:"gross_commission"`
	NetToOwner      decimal.Decimal `json:"net_to_owner"`
}

// DocumentResponse salida de un DTE construido.
type DocumentResponse struct {
	ID        string             `json:"id"`
	TipoDTE   int                `json:"tipo_dte"`
	Folio     int64              `json:"folio"`
	FchEmis   string             `json:"fch_emis"`
	Breakdown *BreakdownResponse `json:"breakdown,omitempty"`
	Document  *entity.Document   `json:"document"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// SubmissionResponse salida de un intento de firma.
type SubmissionResponse struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Folio      int64     `json:"folio"`
	Status     string    `json:"status"`
	TrackID    string    `json:"track_id,omitempty"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
