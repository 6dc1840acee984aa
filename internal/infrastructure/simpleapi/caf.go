package simpleapi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
)

// ParseCAF lee el XML de un CAF del SII y extrae el rango de folios
// autorizado. Solo se interesa por el bloque DA (datos de autorización); la
// firma del CAF la consume el servicio de firma, no este sistema.
//
// Estructura relevante:
//
//	<AUTORIZACION><CAF version="1.0"><DA>
//	  <RE>76000000-0</RE> <TD>43</TD>
//	  <RNG><D>500</D><H>599</H></RNG>
//	  <FA>2026-01-15</FA>
//	</DA></CAF></AUTORIZACION>
func ParseCAF(raw []byte) (*entity.FolioPool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: CAF no es XML válido: %v", domain.ErrInvalidInput, err)
	}

	da := doc.FindElement("//AUTORIZACION/CAF/DA")
	if da == nil {
		da = doc.FindElement("//CAF/DA")
	}
	if da == nil {
		return nil, fmt.Errorf("%w: el CAF no contiene el bloque DA", domain.ErrInvalidInput)
	}

	td, err := childInt(da, "TD")
	if err != nil {
		return nil, err
	}
	docType := entity.DocumentType(td)
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: el CAF autoriza el tipo %d, no soportado", domain.ErrInvalidInput, td)
	}

	rng := da.FindElement("RNG")
	if rng == nil {
		return nil, fmt.Errorf("%w: el CAF no declara rango RNG", domain.ErrInvalidInput)
	}
	start, err := childInt(rng, "D")
	if err != nil {
		return nil, err
	}
	end, err := childInt(rng, "H")
	if err != nil {
		return nil, err
	}
	if start <= 0 || end < start {
		return nil, fmt.Errorf("%w: rango de folios inválido %d-%d", domain.ErrInvalidInput, start, end)
	}

	pool := &entity.FolioPool{
		DocType:       docType,
		RangeStart:    start,
		RangeEnd:      end,
		NextAvailable: start,
	}
	if fa := da.FindElement("FA"); fa != nil {
		if ts, err := time.Parse("2006-01-02", fa.Text()); err == nil {
			pool.AuthorizedAt = ts
		}
	}
	return pool, nil
}

func childInt(parent *etree.Element, name string) (int64, error) {
	el := parent.FindElement(name)
	if el == nil {
		return 0, fmt.Errorf("%w: el CAF no contiene <%s>", domain.ErrInvalidInput, name)
	}
	v, err := strconv.ParseInt(el.Text(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: <%s> no es numérico: %q", domain.ErrInvalidInput, name, el.Text())
	}
	return v, nil
}
