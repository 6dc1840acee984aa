package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/pkg/rut"
)

// Vectores conocidos del algoritmo módulo 11 chileno.
func TestValidate_RUTsValidos(t *testing.T) {
	for _, id := range []string{
		"11111111-1",
		"12345678-5",
		"76000000-0",
		"76123456-0",
		"12.345.678-5",
		"10000013-K",
		"10000013-k",
	} {
		assert.NoError(t, rut.Validate(id), "el RUT %q debe ser válido", id)
	}
}

func TestValidate_DigitoIncorrecto(t *testing.T) {
	err := rut.Validate("12345678-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dígito verificador inválido")
}

func TestValidate_FormatoInvalido(t *testing.T) {
	assert.Error(t, rut.Validate(""))
	assert.Error(t, rut.Validate("1-9"))
	assert.Error(t, rut.Validate("123456789012-3"))
	assert.Error(t, rut.Validate("12345678-X"))
}

func TestVerifierDigit_Calculo(t *testing.T) {
	dv, err := rut.VerifierDigit("12345678")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), dv)

	dv, err = rut.VerifierDigit("76000000")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), dv)

	dv, err = rut.VerifierDigit("10000013")
	require.NoError(t, err)
	assert.Equal(t, byte('K'), dv)
}

func TestFormat_Canonico(t *testing.T) {
	got, err := rut.Format("12.345.678-5")
	require.NoError(t, err)
	assert.Equal(t, "12345678-5", got)
}
