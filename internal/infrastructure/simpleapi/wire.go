package simpleapi

import (
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// Estructuras del JSON que consume el endpoint de generación de DTE.
// Los nombres de campo siguen el schema del SII (Encabezado/Detalle).

type requestBody struct {
	Documento           documento `json:"documento"`
	Certificado         string    `json:"certificado,omitempty"` // .pfx en base64
	CertificadoPassword string    `json:"certificado_password"`
	CAF                 string    `json:"caf,omitempty"` // XML del CAF
}

type documento struct {
	Encabezado encabezado `json:"Encabezado"`
	Detalle    []detalle  `json:"Detalle"`
}

type encabezado struct {
	IdDoc    idDoc    `json:"IdDoc"`
	Emisor   emisor   `json:"Emisor"`
	Receptor receptor `json:"Receptor"`
	Totales  totales  `json:"Totales"`
}

type idDoc struct {
	TipoDTE     int    `json:"TipoDTE"`
	Folio       int64  `json:"Folio"`
	FchEmis     string `json:"FchEmis"`
	IndServicio int    `json:"IndServicio,omitempty"` // 1 = afecto a IVA (liquidación)
	IndTraslado int    `json:"IndTraslado,omitempty"` // solo guía de despacho
}

type emisor struct {
	RUTEmisor    string `json:"RUTEmisor"`
	RznSoc       string `json:"RznSoc"`
	GiroEmis     string `json:"GiroEmis"`
	DirOrigen    string `json:"DirOrigen"`
	CmnaOrigen   string `json:"CmnaOrigen"`
	CiudadOrigen string `json:"CiudadOrigen"`
}

type receptor struct {
	RUTRecep    string `json:"RUTRecep"`
	RznSocRecep string `json:"RznSocRecep"`
	DirRecep    string `json:"DirRecep"`
	CmnaRecep   string `json:"CmnaRecep"`
	CiudadRecep string `json:"CiudadRecep"`
}

type totales struct {
	MntNeto  int64 `json:"MntNeto"`
	TasaIVA  int   `json:"TasaIVA,omitempty"`
	IVA      int64 `json:"IVA,omitempty"`
	MntTotal int64 `json:"MntTotal"`
}

type detalle struct {
	NroLinDet int    `json:"NroLinDet"`
	NmbItem   string `json:"NmbItem"`
	DscItem   string `json:"DscItem,omitempty"`
	QtyItem   int64  `json:"QtyItem"`
	PrcItem   int64  `json:"PrcItem"`
	MontoItem int64  `json:"MontoItem"`
}

// encodeDocumento mapea el documento de dominio al JSON del SII. Los montos
// son CLP enteros, así que IntPart no pierde información.
func encodeDocumento(doc *entity.Document) documento {
	h := doc.Header
	id := idDoc{
		TipoDTE: int(h.DocType),
		Folio:   h.Folio,
		FchEmis: h.IssueDate.Format("2006-01-02"),
	}
	switch h.DocType {
	case entity.DocTypeLiquidacionFactura:
		id.IndServicio = 1
	case entity.DocTypeGuiaDespacho:
		id.IndTraslado = h.IndTraslado
	}

	tot := totales{
		MntNeto:  doc.Totals.Net.IntPart(),
		MntTotal: doc.Totals.Gross.IntPart(),
	}
	if doc.Totals.Tax.IsPositive() {
		tot.TasaIVA = 19
		tot.IVA = doc.Totals.Tax.IntPart()
	}

	lines := make([]detalle, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, detalle{
			NroLinDet: l.Number,
			NmbItem:   l.Name,
			DscItem:   l.Description,
			QtyItem:   l.Quantity.IntPart(),
			PrcItem:   l.UnitPrice.IntPart(),
			MontoItem: l.Amount.IntPart(),
		})
	}

	return documento{
		Encabezado: encabezado{
			IdDoc: id,
			Emisor: emisor{
				RUTEmisor:    h.Issuer.RUT,
				RznSoc:       h.Issuer.RazonSocial,
				GiroEmis:     h.Issuer.Giro,
				DirOrigen:    h.Issuer.Direccion,
				CmnaOrigen:   h.Issuer.Comuna,
				CiudadOrigen: h.Issuer.Ciudad,
			},
			Receptor: receptor{
				RUTRecep:    h.Receiver.RUT,
				RznSocRecep: h.Receiver.RazonSocial,
				DirRecep:    h.Receiver.Direccion,
				CmnaRecep:   h.Receiver.Comuna,
				CiudadRecep: h.Receiver.Ciudad,
			},
			Totales: tot,
		},
		Detalle: lines,
	}
}
