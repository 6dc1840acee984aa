// Package consignment contiene la lógica financiera de la consignación:
// comisión sobre el precio de venta e IVA (19%) solo sobre la comisión,
// tratamiento propio de la Liquidación Factura chilena.
package consignment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/domain"
)

// IVARate tasa de IVA vigente en Chile (19%).
var IVARate = decimal.New(19, -2)

// DefaultCommissionRate comisión por defecto cuando el registro no define una.
var DefaultCommissionRate = decimal.New(10, -2)

// Breakdown es el desglose financiero de una consignación. Todos los montos
// son CLP enteros. Invariante: Commission + IVA + NetToOwner == SellingPrice.
type Breakdown struct {
	SellingPrice    decimal.Decimal // precio de venta al público
	CommissionRate  decimal.Decimal // fracción aplicada
	Commission      decimal.Decimal // comisión de la automotora
	IVA             decimal.Decimal // 19% sobre la comisión
	GrossCommission decimal.Decimal // Commission + IVA: costo total para el dueño
	NetToOwner      decimal.Decimal // lo que recibe el dueño
}

// Calculate computa el desglose a partir del precio de venta y la tasa de
// comisión. Pura y determinista, sin I/O.
//
// Redondeo: comisión e IVA se redondean al peso (mitad hacia arriba); el neto
// se deriva por resta y nunca se redondea aparte, de modo que las tres partes
// suman exactamente el precio de venta.
func Calculate(sellingPrice, commissionRate decimal.Decimal) (*Breakdown, error) {
	if sellingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio de venta negativo (%s)", domain.ErrInvalidInput, sellingPrice)
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.New(1, 0)) {
		return nil, fmt.Errorf("%w: tasa de comisión %s fuera de [0,1]", domain.ErrInvalidInput, commissionRate)
	}

	commission := sellingPrice.Mul(commissionRate).Round(0)
	iva := commission.Mul(IVARate).Round(0)
	gross := commission.Add(iva)
	net := sellingPrice.Sub(gross)

	return &Breakdown{
		SellingPrice:    sellingPrice,
		CommissionRate:  commissionRate,
		Commission:      commission,
		IVA:             iva,
		GrossCommission: gross,
		NetToOwner:      net,
	}, nil
}
