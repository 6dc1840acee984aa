// Package dte contiene la construcción y validación de dominio de los DTE de
// consignación: Liquidación Factura (43) y Guía de Despacho (52).
package dte

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/consignment"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// BuildLiquidacionFactura arma una Liquidación Factura (43) a partir del auto,
// el desglose de comisión y un folio ya reservado. El receptor es el dueño
// (consignante). Transformación pura: la persistencia es del caller.
//
// Líneas: Venta (+precio), Comisión (−comisión), IVA Comisión (−IVA).
// Totales: Net = neto al dueño, Tax = IVA sobre la comisión, Gross = Σ líneas.
func BuildLiquidacionFactura(car *entity.Car, breakdown *consignment.Breakdown, folio int64, issuer entity.Issuer, issueDate time.Time) (*entity.Document, error) {
	if err := checkRequired(car, issuer); err != nil {
		return nil, err
	}
	if breakdown == nil {
		return nil, fmt.Errorf("%w: falta el desglose de comisión", domain.ErrBuild)
	}

	one := decimal.New(1, 0)
	saleDesc := fmt.Sprintf("Venta en consignación %s — Patente %s", car.Label(), car.Patente)
	commDesc := fmt.Sprintf("Comisión %s%% sobre el precio de venta",
		breakdown.CommissionRate.Mul(decimal.New(100, 0)).String())

	doc := &entity.Document{
		CarID: car.ID,
		Header: entity.Header{
			DocType:   entity.DocTypeLiquidacionFactura,
			Folio:     folio,
			IssueDate: issueDate,
			Issuer:    issuer,
			Receiver:  receiverFromOwner(car),
		},
		Lines: []entity.Line{
			{
				Number:      1,
				Name:        "Venta",
				Description: saleDesc,
				Quantity:    one,
				UnitPrice:   breakdown.SellingPrice,
				Amount:      breakdown.SellingPrice,
			},
			{
				Number:      2,
				Name:        "Comisión",
				Description: commDesc,
				Quantity:    one,
				UnitPrice:   breakdown.Commission.Neg(),
				Amount:      breakdown.Commission.Neg(),
			},
			{
				Number:      3,
				Name:        "IVA Comisión",
				Description: "IVA 19% sobre la comisión",
				Quantity:    one,
				UnitPrice:   breakdown.IVA.Neg(),
				Amount:      breakdown.IVA.Neg(),
			},
		},
		Totals: entity.Totals{
			Net:   breakdown.NetToOwner,
			Tax:   breakdown.IVA,
			Gross: breakdown.NetToOwner, // Σ líneas = neto a pagar al consignante
		},
		CreatedAt: issueDate,
	}

	// El neto puede quedar bajo el precio acordado con el dueño; no bloquea la
	// emisión pero el vendedor debe renegociar antes de firmar.
	if car.OwnerPrice.IsPositive() && breakdown.NetToOwner.LessThan(car.OwnerPrice) {
		deficit := car.OwnerPrice.Sub(breakdown.NetToOwner)
		doc.Warnings = append(doc.Warnings,
			fmt.Sprintf("el neto al dueño queda $%s bajo el precio acordado", deficit.String()))
	}

	return doc, nil
}

// BuildGuiaDespacho arma una Guía de Despacho (52) para el traslado físico del
// vehículo. Sin líneas de impuesto; el total es el valor declarado (precio de
// venta) solo como referencia de traslado, no de cobro.
func BuildGuiaDespacho(car *entity.Car, folio int64, issuer entity.Issuer, indTraslado int, issueDate time.Time) (*entity.Document, error) {
	if err := checkRequired(car, issuer); err != nil {
		return nil, err
	}
	if _, ok := entity.IndTrasladoLabels[indTraslado]; !ok {
		return nil, fmt.Errorf("%w: IndTraslado %d no reconocido", domain.ErrBuild, indTraslado)
	}

	declared := car.SellingPrice
	desc := fmt.Sprintf("Patente: %s | VIN: %s | Motivo: %s",
		car.Patente, orNA(car.VIN), entity.IndTrasladoLabels[indTraslado])

	return &entity.Document{
		CarID: car.ID,
		Header: entity.Header{
			DocType:     entity.DocTypeGuiaDespacho,
			Folio:       folio,
			IssueDate:   issueDate,
			IndTraslado: indTraslado,
			Issuer:      issuer,
			Receiver:    receiverFromOwner(car),
		},
		Lines: []entity.Line{
			{
				Number:      1,
				Name:        "Traslado vehículo: " + car.Label(),
				Description: desc,
				Quantity:    decimal.New(1, 0),
				UnitPrice:   declared,
				Amount:      declared,
			},
		},
		Totals: entity.Totals{
			Net:   declared,
			Tax:   decimal.Zero,
			Gross: declared,
		},
		CreatedAt: issueDate,
	}, nil
}

func checkRequired(car *entity.Car, issuer entity.Issuer) error {
	if car == nil {
		return fmt.Errorf("%w: auto nulo", domain.ErrBuild)
	}
	if strings.TrimSpace(car.OwnerRUT) == "" {
		return fmt.Errorf("%w: falta el RUT del dueño (auto %s)", domain.ErrBuild, car.ID)
	}
	if strings.TrimSpace(car.Patente) == "" {
		return fmt.Errorf("%w: falta la patente (auto %s)", domain.ErrBuild, car.ID)
	}
	if strings.TrimSpace(issuer.RUT) == "" {
		return fmt.Errorf("%w: falta el RUT del emisor", domain.ErrBuild)
	}
	return nil
}

func receiverFromOwner(car *entity.Car) entity.Receiver {
	dir := strings.TrimSpace(car.Notes)
	if dir == "" {
		dir = "Sin dirección registrada"
	}
	return entity.Receiver{
		RUT:         car.OwnerRUT,
		RazonSocial: car.OwnerName,
		Direccion:   dir,
		Comuna:      "Santiago",
		Ciudad:      "Santiago",
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
