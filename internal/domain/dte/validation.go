package dte

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dryanez/autodirectocrm/internal/domain/consignment"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/pkg/rut"
)

// ValidationError describe una violación estructural o aritmética del DTE.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Violations agrupa todas las violaciones de un documento para reportarlas juntas.
type Violations []ValidationError

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("documento inválido (%d violaciones): %s", len(v), strings.Join(msgs, "; "))
}

// roundingTolerance un peso chileno de tolerancia en cruces aritméticos.
var roundingTolerance = decimal.New(1, 0)

// ValidateDocument revisa el documento completo y devuelve TODAS las
// violaciones encontradas (no corta en la primera) para que el caller pueda
// reportarlas de una vez. No muta nada. pool puede ser nil cuando el rango de
// folios no está disponible (ej: validación local de un borrador en archivo).
//
// Chequeos: campos obligatorios, dígito verificador de los RUT, Gross == Σ
// líneas (exacto), IVA = 19% de la comisión (±1 CLP, solo liquidación) y folio
// dentro del rango del pool.
func ValidateDocument(doc *entity.Document, pool *entity.FolioPool) Violations {
	if doc == nil {
		return Violations{{Field: "document", Message: "documento nulo"}}
	}

	var out Violations
	add := func(field, format string, args ...any) {
		out = append(out, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// ── Encabezado ────────────────────────────────────────────────────────
	h := doc.Header
	if !h.DocType.Valid() {
		add("header.doc_type", "tipo de DTE %d no soportado", h.DocType)
	}
	if h.Folio <= 0 {
		add("header.folio", "folio %d debe ser positivo", h.Folio)
	}
	if h.IssueDate.IsZero() {
		add("header.issue_date", "falta la fecha de emisión")
	}
	checkParty(&out, "header.issuer", h.Issuer.RUT, h.Issuer.RazonSocial, h.Issuer.Direccion, h.Issuer.Comuna)
	checkParty(&out, "header.receiver", h.Receiver.RUT, h.Receiver.RazonSocial, h.Receiver.Direccion, h.Receiver.Comuna)
	if h.DocType == entity.DocTypeLiquidacionFactura && strings.TrimSpace(h.Issuer.Giro) == "" {
		add("header.issuer.giro", "falta el giro del emisor")
	}
	if h.DocType == entity.DocTypeGuiaDespacho {
		if _, ok := entity.IndTrasladoLabels[h.IndTraslado]; !ok {
			add("header.ind_traslado", "código de traslado %d no reconocido", h.IndTraslado)
		}
	}

	// ── Líneas ────────────────────────────────────────────────────────────
	if len(doc.Lines) == 0 {
		add("lines", "el documento debe tener al menos una línea")
	}
	for i, l := range doc.Lines {
		if l.Number != i+1 {
			add(fmt.Sprintf("lines[%d].number", i), "numeración no consecutiva: %d", l.Number)
		}
		if strings.TrimSpace(l.Name) == "" {
			add(fmt.Sprintf("lines[%d].name", i), "falta el nombre del ítem")
		}
		if !l.Quantity.IsPositive() {
			add(fmt.Sprintf("lines[%d].quantity", i), "cantidad %s debe ser positiva", l.Quantity)
		}
		if !l.Amount.Equal(l.Quantity.Mul(l.UnitPrice)) {
			add(fmt.Sprintf("lines[%d].amount", i), "monto %s no es cantidad × precio unitario", l.Amount)
		}
	}

	// ── Totales ───────────────────────────────────────────────────────────
	if doc.Totals.Net.IsNegative() {
		add("totals.net", "neto negativo: %s", doc.Totals.Net)
	}
	if doc.Totals.Tax.IsNegative() {
		add("totals.tax", "impuesto negativo: %s", doc.Totals.Tax)
	}
	if doc.Totals.Gross.IsNegative() {
		add("totals.gross", "total negativo: %s", doc.Totals.Gross)
	}
	if sum := doc.LineSum(); !doc.Totals.Gross.Equal(sum) {
		add("totals.gross", "total %s no coincide con la suma de líneas %s", doc.Totals.Gross, sum)
	}

	if h.DocType == entity.DocTypeLiquidacionFactura {
		validateLiquidacionMath(doc, add)
	}

	// ── Folio dentro del pool ─────────────────────────────────────────────
	if pool != nil && !pool.Contains(h.Folio) {
		add("header.folio", "folio %d fuera del rango autorizado [%d, %d]", h.Folio, pool.RangeStart, pool.RangeEnd)
	}

	return out
}

// validateLiquidacionMath cruza las líneas de comisión e IVA de la liquidación:
// la línea de IVA debe ser el 19% de la línea de comisión con ±1 CLP de
// tolerancia de redondeo.
func validateLiquidacionMath(doc *entity.Document, add func(string, string, ...any)) {
	var commission, iva decimal.Decimal
	var haveCommission, haveIVA bool
	for _, l := range doc.Lines {
		switch l.Name {
		case "Comisión":
			commission = l.Amount.Neg() // la línea es deducción, monto negativo
			haveCommission = true
		case "IVA Comisión":
			iva = l.Amount.Neg()
			haveIVA = true
		}
	}
	if !haveCommission || !haveIVA {
		add("lines", "la liquidación requiere líneas de Comisión e IVA Comisión")
		return
	}
	expected := commission.Mul(consignment.IVARate).Round(0)
	if iva.Sub(expected).Abs().GreaterThan(roundingTolerance) {
		add("lines.iva", "IVA %s no es el 19%% de la comisión %s (esperado %s ±1)", iva, commission, expected)
	}
	if !doc.Totals.Tax.Equal(iva) {
		add("totals.tax", "impuesto %s no coincide con la línea de IVA %s", doc.Totals.Tax, iva)
	}
}

func checkParty(out *Violations, prefix, taxID, name, address, comuna string) {
	if strings.TrimSpace(taxID) == "" {
		*out = append(*out, ValidationError{Field: prefix + ".rut", Message: "falta el RUT"})
	} else if err := rut.Validate(taxID); err != nil {
		*out = append(*out, ValidationError{Field: prefix + ".rut", Message: err.Error()})
	}
	if strings.TrimSpace(name) == "" {
		*out = append(*out, ValidationError{Field: prefix + ".razon_social", Message: "falta la razón social"})
	}
	if strings.TrimSpace(address) == "" {
		*out = append(*out, ValidationError{Field: prefix + ".direccion", Message: "falta la dirección"})
	}
	if strings.TrimSpace(comuna) == "" {
		*out = append(*out, ValidationError{Field: prefix + ".comuna", Message: "falta la comuna"})
	}
}
