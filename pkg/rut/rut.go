// Package rut implementa la validación del RUT chileno con su dígito
// verificador módulo 11 (algoritmo del Registro Civil / SII).
package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// Validate verifica que el RUT tenga formato razonable y dígito verificador
// correcto. Acepta "12345678-5", "12.345.678-5" o "123456785"; el verificador
// puede ser 'K' o 'k'.
func Validate(taxID string) error {
	body, dv, err := split(taxID)
	if err != nil {
		return err
	}
	expected := verifierDigit(body)
	if dv != expected {
		return fmt.Errorf("rut: dígito verificador inválido en %q: esperado %c, recibido %c", taxID, expected, dv)
	}
	return nil
}

// VerifierDigit calcula el dígito verificador para el cuerpo del RUT
// (solo dígitos, sin DV). Devuelve '0'..'9' o 'K'.
func VerifierDigit(body string) (byte, error) {
	digits := extractDigits(body)
	if len(digits) < 7 || len(digits) > 8 {
		return 0, fmt.Errorf("rut: el cuerpo debe tener 7 u 8 dígitos, se encontraron %d", len(digits))
	}
	return verifierDigit(digits), nil
}

// Format normaliza un RUT válido a la forma canónica "12345678-5".
func Format(taxID string) (string, error) {
	if err := Validate(taxID); err != nil {
		return "", err
	}
	body, dv, _ := split(taxID)
	return string(body) + "-" + string(dv), nil
}

// verifierDigit aplica módulo 11 con pesos 2..7 cíclicos desde el dígito menos
// significativo. Resto 0 → '0'; resto 1 → 'K'; otro → '0'+(11-resto).
func verifierDigit(body []byte) byte {
	weight := 2
	var sum int
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// split separa cuerpo y dígito verificador, tolerando puntos y guion.
func split(taxID string) (body []byte, dv byte, err error) {
	clean := strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, taxID)
	if len(clean) < 2 {
		return nil, 0, fmt.Errorf("rut: %q demasiado corto", taxID)
	}
	last := clean[len(clean)-1]
	if last == 'k' {
		last = 'K'
	}
	if last != 'K' && (last < '0' || last > '9') {
		return nil, 0, fmt.Errorf("rut: dígito verificador %q no reconocido", string(clean[len(clean)-1]))
	}
	body = extractDigits(clean[:len(clean)-1])
	if len(body) < 7 || len(body) > 8 {
		return nil, 0, fmt.Errorf("rut: el cuerpo debe tener 7 u 8 dígitos, se encontraron %d", len(body))
	}
	return body, last, nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
