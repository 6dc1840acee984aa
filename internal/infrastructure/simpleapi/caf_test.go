package simpleapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

const cafEjemplo = `<?xml version="1.0"?>
<AUTORIZACION>
  <CAF version="1.0">
    <DA>
      <RE>76000000-0</RE>
      <RS>AUTODIRECTO SPA</RS>
      <TD>43</TD>
      <RNG><D>500</D><H>599</H></RNG>
      <FA>2026-01-15</FA>
      <RSAPK><M>0a1b</M><E>Aw==</E></RSAPK>
      <IDK>100</IDK>
    </DA>
    <FRMA algoritmo="SHA1withRSA">firma==</FRMA>
  </CAF>
</AUTORIZACION>`

func TestParseCAF_RangoAutorizado(t *testing.T) {
	pool, err := ParseCAF([]byte(cafEjemplo))
	require.NoError(t, err)

	assert.Equal(t, entity.DocTypeLiquidacionFactura, pool.DocType)
	assert.Equal(t, int64(500), pool.RangeStart)
	assert.Equal(t, int64(599), pool.RangeEnd)
	assert.Equal(t, int64(500), pool.NextAvailable)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), pool.AuthorizedAt)
	assert.Equal(t, int64(100), pool.Remaining())
}

func TestParseCAF_Invalidos(t *testing.T) {
	cases := []struct {
		name string
		xml  string
	}{
		{"no es XML", "esto no es un caf"},
		{"sin bloque DA", `<AUTORIZACION><CAF version="1.0"></CAF></AUTORIZACION>`},
		{"tipo no soportado", `<AUTORIZACION><CAF><DA><TD>33</TD><RNG><D>1</D><H>10</H></RNG></DA></CAF></AUTORIZACION>`},
		{"rango invertido", `<AUTORIZACION><CAF><DA><TD>43</TD><RNG><D>100</D><H>50</H></RNG></DA></CAF></AUTORIZACION>`},
		{"folio no numérico", `<AUTORIZACION><CAF><DA><TD>43</TD><RNG><D>uno</D><H>50</H></RNG></DA></CAF></AUTORIZACION>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCAF([]byte(tc.xml))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
