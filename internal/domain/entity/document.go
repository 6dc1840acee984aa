package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType es el tipo de DTE según la codificación del SII.
type DocumentType int

const (
	// DocTypeLiquidacionFactura (43) liquida una venta en consignación: documenta
	// la venta, descuenta comisión e IVA sobre la comisión, y fija el neto al dueño.
	DocTypeLiquidacionFactura DocumentType = 43
	// DocTypeGuiaDespacho (52) respalda el traslado físico del vehículo.
	// Sin líneas de impuesto; el total es el valor declarado del vehículo.
	DocTypeGuiaDespacho DocumentType = 52
)

// Name devuelve el nombre legal del tipo de documento.
func (t DocumentType) Name() string {
	switch t {
	case DocTypeLiquidacionFactura:
		return "Liquidación Factura Electrónica"
	case DocTypeGuiaDespacho:
		return "Guía de Despacho Electrónica"
	default:
		return "Desconocido"
	}
}

// Valid indica si el tipo está soportado por el pipeline.
func (t DocumentType) Valid() bool {
	return t == DocTypeLiquidacionFactura || t == DocTypeGuiaDespacho
}

// Códigos IndTraslado del SII para la Guía de Despacho.
const (
	IndTrasladoVenta          = 1
	IndTrasladoVentaPendiente = 2
	IndTrasladoConsignacion   = 3
	IndTrasladoGratuito       = 4
	IndTrasladoInterno        = 5
	IndTrasladoOtros          = 6
	IndTrasladoDevolucion     = 7
)

// IndTrasladoLabels etiquetas legibles para los motivos de traslado.
var IndTrasladoLabels = map[int]string{
	IndTrasladoVenta:          "Operación constituye venta",
	IndTrasladoVentaPendiente: "Ventas por efectuar",
	IndTrasladoConsignacion:   "Consignaciones",
	IndTrasladoGratuito:       "Entrega gratuita",
	IndTrasladoInterno:        "Traslados internos",
	IndTrasladoOtros:          "Otros traslados no venta",
	IndTrasladoDevolucion:     "Guía de devolución",
}

// Issuer es el emisor del DTE (la automotora consignataria).
type Issuer struct {
	RUT         string `json:"rut"`
	RazonSocial string `json:"razon_social"`
	Giro        string `json:"giro"`
	Direccion   string `json:"direccion"`
	Comuna      string `json:"comuna"`
	Ciudad      string `json:"ciudad"`
}

// Receiver es el receptor del DTE. En la liquidación factura es el dueño del
// auto (consignante); en la guía de despacho, el destinatario del traslado.
type Receiver struct {
	RUT         string `json:"rut"`
	RazonSocial string `json:"razon_social"`
	Direccion   string `json:"direccion"`
	Comuna      string `json:"comuna"`
	Ciudad      string `json:"ciudad"`
}

// Header es el encabezado del DTE: identificación, emisor y receptor.
type Header struct {
	DocType     DocumentType `json:"doc_type"`
	Folio       int64        `json:"folio"`
	IssueDate   time.Time    `json:"issue_date"`
	IndTraslado int          `json:"ind_traslado,omitempty"` // solo guía de despacho
	Issuer      Issuer       `json:"issuer"`
	Receiver    Receiver     `json:"receiver"`
}

// Line es una línea de detalle. En la liquidación las líneas de descuento
// (comisión, IVA comisión) llevan monto negativo.
type Line struct {
	Number      int             `json:"number"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Totals montos del documento en CLP enteros. Invariante: Gross == Σ Lines.Amount.
// En la liquidación factura Net es el neto a pagar al consignante y Tax el IVA
// sobre la comisión; en la guía de despacho Tax es cero y Net == Gross.
type Totals struct {
	Net   decimal.Decimal `json:"net"`
	Tax   decimal.Decimal `json:"tax"`
	Gross decimal.Decimal `json:"gross"`
}

// Document es el DTE estructurado. Inmutable una vez validado: el cliente de
// envío solo lo lee.
type Document struct {
	ID        string    `json:"id"`
	CarID     string    `json:"car_id"`
	Header    Header    `json:"header"`
	Lines     []Line    `json:"lines"`
	Totals    Totals    `json:"totals"`
	Warnings  []string  `json:"warnings,omitempty"` // no bloquean el envío (ej: neto < precio acordado)
	CreatedAt time.Time `json:"created_at"`
}

// LineSum devuelve la suma de los montos de las líneas.
func (d *Document) LineSum() decimal.Decimal {
	var sum decimal.Decimal
	for _, l := range d.Lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}
