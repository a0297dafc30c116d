package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var formatting = regexp.MustCompile(`[\s./-]`)

// CleanCNPJ removes the mask characters (dots, slash, dash and whitespace) from a CNPJ or CPF.
// Letters are kept: alphanumeric CNPJs carry them in the first twelve positions.
func CleanCNPJ(cnpj string) string {
	return formatting.ReplaceAllString(cnpj, "")
}

// FormatCNPJ formats CNPJ with dots, slash and dash (XX.XXX.XXX/XXXX-XX)
func FormatCNPJ(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return cnpj // Return original if invalid length
	}

	return cleaned[:2] + "." + cleaned[2:5] + "." + cleaned[5:8] + "/" + cleaned[8:12] + "-" + cleaned[12:14]
}

// IsValidCNPJ validates CNPJ using the official algorithm. The root and branch may hold
// uppercase letters (alphanumeric CNPJ), the two check digits are always numeric.
func IsValidCNPJ(cnpj string) bool {
	cleaned := CleanCNPJ(cnpj)

	if len(cleaned) != 14 {
		return false
	}

	if isAllSameDigit(cleaned) {
		return false
	}

	digits, ok := toAlphanumeric(cleaned[:12])
	if !ok {
		return false
	}
	checks, ok := toDigits(cleaned[12:])
	if !ok {
		return false
	}
	digits = append(digits, checks...)

	if !isValidCheckDigit(digits[:12], digits[12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) {
		return false
	}

	return isValidCheckDigit(digits[:13], digits[13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
}

// IsValidCPF validates an individual taxpayer number. The distribution API also accepts
// a CPF in cnpjConsulta for autonomous service providers.
func IsValidCPF(cpf string) bool {
	cleaned := CleanCNPJ(cpf)

	if len(cleaned) != 11 || isAllSameDigit(cleaned) {
		return false
	}

	digits, ok := toDigits(cleaned)
	if !ok {
		return false
	}

	if !isValidCheckDigit(digits[:9], digits[9], []int{10, 9, 8, 7, 6, 5, 4, 3, 2}) {
		return false
	}

	return isValidCheckDigit(digits[:10], digits[10], []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})
}

// NormalizeTaxID strips the mask from a valid CNPJ or CPF. Anything else is returned
// exactly as given and reported as invalid. A blank input becomes empty and is valid.
func NormalizeTaxID(id string) (string, bool) {
	if strings.TrimSpace(id) == "" {
		return "", true
	}
	cleaned := CleanCNPJ(id)
	if IsValidCNPJ(cleaned) || IsValidCPF(cleaned) {
		return cleaned, true
	}
	return id, false
}

// isAllSameDigit checks if all digits in the string are the same
func isAllSameDigit(s string) bool {
	if len(s) == 0 {
		return false
	}

	first := s[0]
	for _, char := range s {
		if byte(char) != first {
			return false
		}
	}
	return true
}

func toDigits(s string) ([]int, bool) {
	digits := make([]int, len(s))
	for i, char := range s {
		digit, err := strconv.Atoi(string(char))
		if err != nil {
			return nil, false
		}
		digits[i] = digit
	}
	return digits, true
}

// toAlphanumeric maps 0-9 and A-Z to their ASCII code minus 48
func toAlphanumeric(s string) ([]int, bool) {
	values := make([]int, len(s))
	for i, char := range s {
		switch {
		case char >= '0' && char <= '9', char >= 'A' && char <= 'Z':
			values[i] = int(char - '0')
		default:
			return nil, false
		}
	}
	return values, true
}

// isValidCheckDigit validates a check digit using the given weights
func isValidCheckDigit(digits []int, checkDigit int, weights []int) bool {
	sum := 0
	for i, digit := range digits {
		sum += digit * weights[i]
	}

	remainder := sum % 11
	expectedDigit := 0
	if remainder >= 2 {
		expectedDigit = 11 - remainder
	}

	return expectedDigit == checkDigit
}
