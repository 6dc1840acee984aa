package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrUnauthorized   = errors.New("no autorizado")

	// ErrBuild indica que faltan campos obligatorios para armar un DTE
	// (RUT del dueño, patente). El dato de origen debe corregirse antes de reintentar.
	ErrBuild = errors.New("datos insuficientes para construir el documento")

	// ErrFolioExhausted indica que el rango de folios del CAF se agotó.
	// No es reintentable: requiere cargar un CAF nuevo desde el SII.
	ErrFolioExhausted = errors.New("rango de folios agotado")

	// ErrInvalidTransition indica un cambio de estado fuera del orden
	// available → draft_dte → sent_dte.
	ErrInvalidTransition = errors.New("transición de estado inválida")

	// ErrAuthentication indica credenciales inválidas ante el servicio de firma
	// (API key o contraseña del certificado). No se reintenta.
	ErrAuthentication = errors.New("credenciales inválidas para el servicio de firma")

	// ErrRateLimitExceeded indica que el servicio de firma rechazó por cuota
	// incluso después de agotar los reintentos locales.
	ErrRateLimitExceeded = errors.New("cuota del servicio de firma excedida")

	// ErrTransport indica un fallo de red o timeout persistente tras agotar reintentos.
	ErrTransport = errors.New("error de transporte con el servicio de firma")
)

// DocumentRejectedError es un rechazo semántico del servicio de firma: el DTE
// llegó pero fue rechazado con un código remoto. No se reintenta — indica un
// hueco del validador local que debe corregirse antes de reenviar.
type DocumentRejectedError struct {
	RemoteCode int
	Message    string
}

func (e *DocumentRejectedError) Error() string {
	return fmt.Sprintf("documento rechazado por el servicio de firma (código %d): %s", e.RemoteCode, e.Message)
}
