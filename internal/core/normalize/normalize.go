// Package normalize provides pure conversions between raw form input and
// the canonical/display representations used by requests, contracts and
// generated documents. Every function is total: bad input yields a zero
// value or an empty string, never an error or a panic.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Dates
// =============================================================================

// StorageLayout is the canonical on-disk date form.
const StorageLayout = "2006-01-02"

// ShortLayout is the display form used in short document fields.
const ShortLayout = "02-01-2006"

// dateLayouts are tried in order. Day-first layouts come before year-first
// ones so an ambiguous "03-04-2024" resolves as 3 April, not 4 March.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"2006/01/02",
	"2-1-2006",
	"2/1/2006",
	"02.01.2006",
	time.RFC3339,
}

// months holds the uppercase month names used in long-form legal dates.
var months = [12]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// ParseDate parses text against the supported layouts in priority order.
// Returns ok=false when no layout matches.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToStorage renders a date in the canonical YYYY-MM-DD form.
func ToStorage(t time.Time) string {
	return t.Format(StorageLayout)
}

// ToShortForm renders a date as DD-MM-YYYY.
func ToShortForm(t time.Time) string {
	return t.Format(ShortLayout)
}

// ToLongForm renders a date as "D DE <MONTH> DE YYYY".
func ToLongForm(t time.Time) string {
	return fmt.Sprintf("%d DE %s DE %d", t.Day(), months[t.Month()-1], t.Year())
}

// IsDateShaped reports whether text parses as a supported date.
func IsDateShaped(text string) bool {
	_, ok := ParseDate(text)
	return ok
}

// =============================================================================
// Money and Decimals
// =============================================================================

// Money strips currency symbols, separators and spaces from text and returns
// a fixed 2-decimal string. Returns "" when no digits remain; callers treat
// "" as unset.
func Money(text string) string {
	cleaned := cleanNumeric(text)
	if cleaned == "" {
		return ""
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Decimal normalizes text like Money but at the given precision, then trims
// trailing zeros and a trailing dot.
func Decimal(text string, precision int) string {
	cleaned := cleanNumeric(text)
	if cleaned == "" {
		return ""
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// DisplayMoney renders a canonical 2-decimal money string with thousands
// separators, e.g. "1234567.50" -> "1,234,567.50". Non-canonical input is
// re-normalized first; "" stays "".
func DisplayMoney(canonical string) string {
	canonical = Money(canonical)
	if canonical == "" {
		return ""
	}
	intPart := canonical
	fracPart := ""
	if i := strings.Index(canonical, "."); i >= 0 {
		intPart, fracPart = canonical[:i], canonical[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + fracPart
}

// cleanNumeric removes everything except digits and the decimal point.
// Money amounts are non-negative; a minus sign is stripped like any other
// symbol.
func cleanNumeric(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if strings.Count(s, ".") > 1 {
		// Thousands written with dots; keep the last as the decimal point.
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}
	if s == "" || s == "." {
		return ""
	}
	if !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	return s
}

// =============================================================================
// Generic Display
// =============================================================================

// Display coerces an arbitrary scalar to its document display string.
// Booleans become SI/NO, numbers a trimmed fixed string, date-shaped
// strings their short form, everything else a plain string cast.
func Display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "SI"
		}
		return "NO"
	case string:
		if d, ok := ParseDate(t); ok && looksCanonical(t) {
			return ToShortForm(d)
		}
		return t
	case float64:
		return trimFloat(t)
	case float32:
		return trimFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// looksCanonical reports whether a string is in storage date form. Display
// only reshapes canonical dates; free text that happens to parse under a
// lenient layout is passed through untouched.
func looksCanonical(s string) bool {
	_, err := time.Parse(StorageLayout, strings.TrimSpace(s))
	return err == nil
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
