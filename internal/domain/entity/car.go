package entity

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de consignación de un auto. El pipeline DTE es el único
// escritor de draft_dte y sent_dte; el resto lo maneja el inventario.
const (
	CarStatusAvailable = "available" // publicado, sin documento tributario
	CarStatusDraftDTE  = "draft_dte" // borrador de DTE generado y validado
	CarStatusSentDTE   = "sent_dte"  // DTE firmado por el servicio externo
	CarStatusSold      = "sold"      // cerrado comercialmente
)

// Car representa un vehículo en consignación junto con la identidad del
// consignante (dueño) y el acuerdo de precios.
type Car struct {
	ID             string
	Patente        string // placa patente única (ej: "ABCD12")
	VIN            string
	Brand          string
	Model          string
	Year           int
	Color          string
	OwnerName      string
	OwnerRUT       string // RUT chileno con dígito verificador (ej: "12345678-5")
	OwnerEmail     string
	OwnerPhone     string
	OwnerPrice     decimal.Decimal // lo que el dueño quiere recibir (CLP)
	SellingPrice   decimal.Decimal // precio de venta al público (CLP)
	CommissionRate decimal.Decimal // fracción, ej 0.10
	Status         string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Label devuelve la descripción comercial del vehículo ("Toyota Corolla 2020").
func (c *Car) Label() string {
	label := c.Brand + " " + c.Model
	if c.Year > 0 {
		label += " " + strconv.Itoa(c.Year)
	}
	return label
}
