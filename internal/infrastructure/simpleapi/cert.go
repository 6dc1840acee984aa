package simpleapi

import (
	"fmt"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/dryanez/autodirectocrm/internal/domain"
)

// VerifyCertificate valida localmente la contraseña del .pfx y su vigencia
// antes de gastar una llamada al servicio de firma. Una contraseña incorrecta
// se reporta igual que un 401 remoto.
func VerifyCertificate(pfx []byte, password string, now time.Time) (expiresAt time.Time, err error) {
	_, cert, err := pkcs12.Decode(pfx, password)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: no se pudo abrir el certificado .pfx: %v", domain.ErrAuthentication, err)
	}
	if now.After(cert.NotAfter) {
		return cert.NotAfter, fmt.Errorf("%w: el certificado venció el %s", domain.ErrAuthentication,
			cert.NotAfter.Format("2006-01-02"))
	}
	return cert.NotAfter, nil
}
