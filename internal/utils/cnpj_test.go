package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCNPJ(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid digits", "11222333000181", true},
		{"valid formatted", "11.222.333/0001-81", true},
		{"wrong check digit", "11222333000182", false},
		{"all same digit", "11111111111111", false},
		{"too short", "1122233300018", false},
		{"alphanumeric", "12ABC34501DE35", true},
		{"alphanumeric formatted", "12.ABC.345/01DE-35", true},
		{"alphanumeric wrong check digit", "12.ABC.345/01DE-36", false},
		{"lowercase letters", "12abc34501de35", false},
		{"letter in check digits", "12ABC34501DE3A", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCNPJ(tt.input))
		})
	}
}

func TestIsValidCPF(t *testing.T) {
	assert.True(t, IsValidCPF("529.982.247-25"))
	assert.False(t, IsValidCPF("529.982.247-24"))
	assert.False(t, IsValidCPF("000.000.000-00"))
}

func TestFormatCNPJ(t *testing.T) {
	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11222333000181"))
	assert.Equal(t, "123", FormatCNPJ("123"))
	assert.Equal(t, "12.ABC.345/01DE-35", FormatCNPJ("12ABC34501DE35"))
}

func TestNormalizeTaxID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantValid bool
	}{
		{"empty stays empty", "", "", true},
		{"formatted cnpj", "11.222.333/0001-81", "11222333000181", true},
		{"formatted cpf", "529.982.247-25", "52998224725", true},
		{"blank becomes empty", "  ", "", true},
		{"alphanumeric cnpj", "12.ABC.345/01DE-35", "12ABC34501DE35", true},
		{"invalid is kept as received", "12.345.678/0001-00", "12.345.678/0001-00", false},
		{"letters are never dropped", "12.ABC.345/01DE-36", "12.ABC.345/01DE-36", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := NormalizeTaxID(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}
