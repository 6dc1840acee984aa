package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// CreateCarRequest entrada para registrar un auto en consignación.
type CreateCarRequest struct {
	Patente        string          `json:"patente" validate:"required"`
	VIN            string          `json:"vin"`
	Brand          string          `json:"brand" validate:"required"`
	Model          string          `json:"model" validate:"required"`
	Year           int             `json:"year"`
	Color          string          `json:"color"`
	OwnerName      string          `json:"owner_name" validate:"required"`
	OwnerRUT       string          `json:"owner_rut" validate:"required"`
	OwnerEmail     string          `json:"owner_email"`
	OwnerPhone     string          `json:"owner_phone"`
	OwnerPrice     decimal.Decimal `json:"owner_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Notes          string          `json:"notes"`
}

// UpdatePricingRequest entrada para ajustar el acuerdo de precios.
type UpdatePricingRequest struct {
	OwnerPrice     decimal.Decimal `json:"owner_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// CarResponse salida de un auto.
type CarResponse struct {
	ID             string          `json:"id"`
	Patente        string          `json:"patente"`
	VIN            string          `json:"vin,omitempty"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Year           int             `json:"year"`
	Color          string          `json:"color,omitempty"`
	OwnerName      string          `json:"owner_name"`
	OwnerRUT       string          `json:"owner_rut"`
	OwnerPrice     decimal.Decimal `json:"owner_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCarResponse mapea la entidad a su representación HTTP.
func ToCarResponse(c *entity.Car) CarResponse {
	return CarResponse{
		ID:             c.ID,
		Patente:        c.Patente,
		VIN:            c.VIN,
		Brand:          c.Brand,
		Model:          c.Model,
		Year:           c.Year,
		Color:          c.Color,
		OwnerName:      c.OwnerName,
		OwnerRUT:       c.OwnerRUT,
		OwnerPrice:     c.OwnerPrice,
		SellingPrice:   c.SellingPrice,
		CommissionRate: c.CommissionRate,
		Status:         c.Status,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
