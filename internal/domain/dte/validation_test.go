package dte_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain/consignment"
	"github.com/dryanez/autodirectocrm/internal/domain/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// buildValidLiquidacion arma una liquidación estructuralmente sana vía el builder.
func buildValidLiquidacion(t *testing.T) *entity.Document {
	t.Helper()
	car := testCar()
	b, err := consignment.Calculate(car.SellingPrice, car.CommissionRate)
	require.NoError(t, err)
	doc, err := dte.BuildLiquidacionFactura(car, b, 5, testIssuer, testDate())
	require.NoError(t, err)
	return doc
}

func TestValidateDocument_DocumentoSanoSinViolaciones(t *testing.T) {
	doc := buildValidLiquidacion(t)
	assert.Empty(t, dte.ValidateDocument(doc, nil))
}

func TestValidateDocument_TotalNoCoincideConLineas(t *testing.T) {
	doc := buildValidLiquidacion(t)
	doc.Totals.Gross = doc.Totals.Gross.Add(decimal.NewFromInt(1))

	violations := dte.ValidateDocument(doc, nil)
	require.NotEmpty(t, violations)
	found := false
	for _, v := range violations {
		if v.Field == "totals.gross" {
			found = true
			assert.Contains(t, v.Message, "no coincide con la suma de líneas")
		}
	}
	assert.True(t, found, "debe nombrar el descuadre de totals.gross: %v", violations)
}

func TestValidateDocument_IVAFueraDeTolerancia(t *testing.T) {
	doc := buildValidLiquidacion(t)
	// IVA esperado 190.000; ±1 CLP tolerado, ±2 no.
	doc.Lines[2].Amount = decimal.NewFromInt(-190_002)
	doc.Lines[2].UnitPrice = doc.Lines[2].Amount
	doc.Totals.Tax = decimal.NewFromInt(190_002)
	doc.Totals.Gross = doc.LineSum()

	violations := dte.ValidateDocument(doc, nil)
	fields := fieldSet(violations)
	assert.Contains(t, fields, "lines.iva")
}

func TestValidateDocument_IVADentroDeTolerancia(t *testing.T) {
	doc := buildValidLiquidacion(t)
	doc.Lines[2].Amount = decimal.NewFromInt(-189_999) // 1 CLP bajo el exacto
	doc.Lines[2].UnitPrice = doc.Lines[2].Amount
	doc.Totals.Tax = decimal.NewFromInt(189_999)
	doc.Totals.Gross = doc.LineSum()
	doc.Totals.Net = doc.LineSum()

	assert.Empty(t, dte.ValidateDocument(doc, nil))
}

func TestValidateDocument_ReportaTodasLasViolaciones(t *testing.T) {
	doc := buildValidLiquidacion(t)
	doc.Header.Receiver.RUT = "12345678-9" // DV incorrecto
	doc.Header.Receiver.RazonSocial = ""
	doc.Totals.Gross = decimal.NewFromInt(1)

	violations := dte.ValidateDocument(doc, nil)
	fields := fieldSet(violations)
	assert.Contains(t, fields, "header.receiver.rut")
	assert.Contains(t, fields, "header.receiver.razon_social")
	assert.Contains(t, fields, "totals.gross")
	assert.GreaterOrEqual(t, len(violations), 3, "no debe cortar en la primera violación")
}

func TestValidateDocument_FolioFueraDelRango(t *testing.T) {
	doc := buildValidLiquidacion(t)
	pool := &entity.FolioPool{
		DocType:       entity.DocTypeLiquidacionFactura,
		Environment:   entity.EnvCertificacion,
		RangeStart:    10,
		RangeEnd:      20,
		NextAvailable: 10,
	}
	// folio 5 < rangeStart
	violations := dte.ValidateDocument(doc, pool)
	fields := fieldSet(violations)
	assert.Contains(t, fields, "header.folio")

	doc.Header.Folio = 15
	assert.Empty(t, dte.ValidateDocument(doc, pool))
}

func TestValidateDocument_DocumentoNulo(t *testing.T) {
	violations := dte.ValidateDocument(nil, nil)
	require.Len(t, violations, 1)
	assert.Equal(t, "document", violations[0].Field)
}

func TestViolations_Error(t *testing.T) {
	v := dte.Violations{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}
	assert.Contains(t, v.Error(), "2 violaciones")
	assert.Contains(t, v.Error(), "a: x")
}

func fieldSet(violations dte.Violations) map[string]bool {
	out := make(map[string]bool, len(violations))
	for _, v := range violations {
		out[v.Field] = true
	}
	return out
}
