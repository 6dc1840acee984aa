// Package pdf genera el estado de liquidación en PDF que la automotora entrega
// al consignante junto con el pago del neto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUT  │  Liquidación N° + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONSIGNANTE: Nombre + RUT                                   │
//	│  VEHÍCULO: Marca Modelo Año | Patente | VIN                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Detalle | Monto (venta / comisión / IVA comisión)    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: IVA comisión / NETO AL CONSIGNANTE                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Leyenda legal SII                                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ appdte.SettlementRenderer = (*SettlementGenerator)(nil)

// SettlementGenerator implementa dte.SettlementRenderer usando Maroto v2.
type SettlementGenerator struct{}

// NewSettlementGenerator construye el generador.
func NewSettlementGenerator() *SettlementGenerator { return &SettlementGenerator{} }

// Render genera el PDF de la liquidación y devuelve sus bytes.
func (g *SettlementGenerator) Render(car *entity.Car, doc *entity.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Liquidación Factura Electrónica", true).
		WithAuthor(doc.Header.Issuer.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(consignanteRow(doc))
	m.AddRows(vehiculoRow(car))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(doc.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Totals))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(legalFooterRow())

	result, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return result.GetBytes(), nil
}

// headerRow: razón social + RUT (izq) y folio + fecha de emisión (der).
func headerRow(doc *entity.Document) core.Row {
	issuer := doc.Header.Issuer
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer.RazonSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUT: "+issuer.RUT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LIQUIDACIÓN FACTURA ELECTRÓNICA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", doc.Header.Folio), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+doc.Header.IssueDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// consignanteRow: datos del dueño del vehículo (receptor del DTE).
func consignanteRow(doc *entity.Document) core.Row {
	recv := doc.Header.Receiver
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CONSIGNANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(recv.RazonSocial, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RUT: %s   |   %s, %s",
				recv.RUT, nonEmpty(recv.Comuna, "—"), nonEmpty(recv.Ciudad, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// vehiculoRow: identificación del vehículo liquidado.
func vehiculoRow(car *entity.Car) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("VEHÍCULO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Patente: %s   |   VIN: %s",
				car.Label(), car.Patente, nonEmpty(car.VIN, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("N°", 1, align.Center),
		h("Detalle", 8, align.Left),
		h("Monto", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del DTE; los descuentos van en negativo.
func tableDetailRows(lines []entity.Line) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Number),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(8).Add(text.New(
				l.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				formatCLP(l.Amount.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: IVA de la comisión y neto a pagar al consignante.
func totalsRow(totals entity.Totals) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	// Top separa la línea del neto de la del IVA dentro de la misma celda.
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 8,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 8,
		})
	}

	return row.New(20).Add(
		col.New(4),
		col.New(4).Add(
			label("IVA comisión (19%):"),
			grandLabel("NETO AL CONSIGNANTE:"),
		),
		col.New(4).Add(
			value(formatCLP(totals.Tax.StringFixed(0))),
			grandValue(formatCLP(totals.Net.StringFixed(0))),
		),
	)
}

func legalFooterRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Liquidación factura electrónica emitida conforme a la Resolución "+
				"Exenta SII N° 108/2005. Conserve este documento como respaldo "+
				"del pago de su consignación.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatCLP antepone $ e inserta puntos de miles, respetando el signo.
// Ej: "25000" → "$25.000", "-190000" → "-$190.000"
func formatCLP(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	n := len(s)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if neg {
		return "-$" + string(buf)
	}
	return "$" + string(buf)
}
