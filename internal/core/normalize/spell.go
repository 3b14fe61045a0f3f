package normalize

import (
	"strconv"
	"strings"
)

// =============================================================================
// Spelled-Out Numbers
// =============================================================================

var units = [30]string{
	"CERO", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO",
	"NUEVE", "DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
	"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE", "VEINTE",
	"VEINTIUNO", "VEINTIDOS", "VEINTITRES", "VEINTICUATRO", "VEINTICINCO",
	"VEINTISEIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var tens = [10]string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA",
	"OCHENTA", "NOVENTA",
}

var hundreds = [10]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
	"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

// SpellNumber renders 0..999999 in uppercase Spanish words. Out-of-range
// values fall back to their digit string.
func SpellNumber(n int) string {
	if n < 0 || n > 999999 {
		return strconv.Itoa(n)
	}
	if n < 1000 {
		return spellBelowThousand(n)
	}
	thousands := n / 1000
	rest := n % 1000
	var head string
	if thousands == 1 {
		head = "MIL"
	} else {
		head = spellBelowThousand(thousands) + " MIL"
	}
	if rest == 0 {
		return head
	}
	return head + " " + spellBelowThousand(rest)
}

func spellBelowThousand(n int) string {
	if n < 30 {
		return units[n]
	}
	if n < 100 {
		t := tens[n/10]
		if n%10 == 0 {
			return t
		}
		return t + " Y " + units[n%10]
	}
	if n == 100 {
		return "CIEN"
	}
	h := hundreds[n/100]
	if n%100 == 0 {
		return h
	}
	return h + " " + spellBelowThousand(n%100)
}

// SpellDecimal renders a canonical decimal string as legal text, e.g.
// "120.50" -> "CIENTO VEINTE PUNTO CINCUENTA". A zero or absent fraction is
// omitted. Non-numeric input returns "".
func SpellDecimal(canonical string) string {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return ""
	}
	intPart := canonical
	fracPart := ""
	if i := strings.Index(canonical, "."); i >= 0 {
		intPart, fracPart = canonical[:i], canonical[i+1:]
	}
	n, err := strconv.Atoi(intPart)
	if err != nil {
		return ""
	}
	out := SpellNumber(n)
	if fracPart != "" {
		// Fraction digits are read as one number: ".50" is CINCUENTA.
		f, err := strconv.Atoi(fracPart)
		if err != nil {
			return ""
		}
		if f != 0 {
			out += " PUNTO " + SpellNumber(f)
		}
	}
	return out
}
