package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ParseDate Tests
// =============================================================================

func TestParseDate_DayFirstDash(t *testing.T) {
	d, ok := ParseDate("15-04-2024")
	require.True(t, ok)
	assert.Equal(t, "2024-04-15", ToStorage(d))
}

func TestParseDate_DayFirstSlash(t *testing.T) {
	d, ok := ParseDate("15/04/2024")
	require.True(t, ok)
	assert.Equal(t, "2024-04-15", ToStorage(d))
}

func TestParseDate_ISO(t *testing.T) {
	d, ok := ParseDate("2024-04-15")
	require.True(t, ok)
	assert.Equal(t, "2024-04-15", ToStorage(d))
}

func TestParseDate_YearFirstSlash(t *testing.T) {
	d, ok := ParseDate("2024/04/15")
	require.True(t, ok)
	assert.Equal(t, "2024-04-15", ToStorage(d))
}

func TestParseDate_AmbiguousResolvesDayFirst(t *testing.T) {
	d, ok := ParseDate("03-04-2024")
	require.True(t, ok)
	assert.Equal(t, time.April, d.Month())
	assert.Equal(t, 3, d.Day())
}

func TestParseDate_Garbage(t *testing.T) {
	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}

func TestParseDate_Empty(t *testing.T) {
	_, ok := ParseDate("   ")
	assert.False(t, ok)
}

// Round-trip: parse -> storage -> parse yields the same calendar date.
func TestParseDate_RoundTrip(t *testing.T) {
	inputs := []string{
		"15-04-2024", "15/04/2024", "2024-04-15", "2024/04/15",
		"1-1-2000", "31/12/1999", "29-02-2024",
	}
	for _, in := range inputs {
		d1, ok := ParseDate(in)
		require.True(t, ok, in)
		d2, ok := ParseDate(ToStorage(d1))
		require.True(t, ok, in)
		assert.Equal(t, ToStorage(d1), ToStorage(d2), in)
	}
}

// =============================================================================
// Date Formatting Tests
// =============================================================================

func TestToLongForm(t *testing.T) {
	d, _ := ParseDate("2024-05-01")
	assert.Equal(t, "1 DE MAYO DE 2024", ToLongForm(d))
}

func TestToLongForm_December(t *testing.T) {
	d, _ := ParseDate("1999-12-31")
	assert.Equal(t, "31 DE DICIEMBRE DE 1999", ToLongForm(d))
}

func TestToShortForm(t *testing.T) {
	d, _ := ParseDate("2024-05-01")
	assert.Equal(t, "01-05-2024", ToShortForm(d))
}

// =============================================================================
// Money Tests
// =============================================================================

func TestMoney_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "12500", "12500.00"},
		{"already canonical", "12500.00", "12500.00"},
		{"commas", "1,250,000.50", "1250000.50"},
		{"currency symbol", "$ 980.5", "980.50"},
		{"spaces", " 1 200 ", "1200.00"},
		{"rounding precision", "10.005", "10.01"},
		{"no digits", "N/A", ""},
		{"empty", "", ""},
		{"lone symbol", "$", ""},
		{"dot thousands", "1.250.000", "1250000.00"},
		{"minus stripped", "-5", "5.00"},
		{"minus with separators", "-1,250.75", "1250.75"},
		{"lone minus", "-", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasPrefix(got, "-"))
		})
	}
}

func TestDecimal_TrimsTrailingZeros(t *testing.T) {
	assert.Equal(t, "120.5", Decimal("120.500", 3))
	assert.Equal(t, "120", Decimal("120.000", 3))
	assert.Equal(t, "0.125", Decimal("0.125", 3))
}

func TestDecimal_NoDigits(t *testing.T) {
	assert.Equal(t, "", Decimal("---", 2))
}

func TestDisplayMoney(t *testing.T) {
	assert.Equal(t, "1,234,567.50", DisplayMoney("1234567.50"))
	assert.Equal(t, "980.50", DisplayMoney("980.5"))
	assert.Equal(t, "100.00", DisplayMoney("100"))
	assert.Equal(t, "", DisplayMoney(""))
}

// =============================================================================
// Display Tests
// =============================================================================

func TestDisplay_Bool(t *testing.T) {
	assert.Equal(t, "SI", Display(true))
	assert.Equal(t, "NO", Display(false))
}

func TestDisplay_Float(t *testing.T) {
	assert.Equal(t, "120.5", Display(120.50))
	assert.Equal(t, "120", Display(120.0))
}

func TestDisplay_Int(t *testing.T) {
	assert.Equal(t, "5", Display(5))
}

func TestDisplay_CanonicalDate(t *testing.T) {
	assert.Equal(t, "01-05-2024", Display("2024-05-01"))
}

func TestDisplay_FreeText(t *testing.T) {
	assert.Equal(t, "CALLE 5 NORTE", Display("CALLE 5 NORTE"))
}

func TestDisplay_Nil(t *testing.T) {
	assert.Equal(t, "", Display(nil))
}

// =============================================================================
// Spelling Tests
// =============================================================================

func TestSpellNumber_TableDriven(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "CERO"},
		{7, "SIETE"},
		{16, "DIECISEIS"},
		{21, "VEINTIUNO"},
		{30, "TREINTA"},
		{45, "CUARENTA Y CINCO"},
		{100, "CIEN"},
		{120, "CIENTO VEINTE"},
		{305, "TRESCIENTOS CINCO"},
		{1000, "MIL"},
		{1500, "MIL QUINIENTOS"},
		{12500, "DOCE MIL QUINIENTOS"},
		{999999, "NOVECIENTOS NOVENTA Y NUEVE MIL NOVECIENTOS NOVENTA Y NUEVE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SpellNumber(tt.in), "n=%d", tt.in)
	}
}

func TestSpellDecimal(t *testing.T) {
	assert.Equal(t, "CIENTO VEINTE PUNTO CINCUENTA", SpellDecimal("120.50"))
	assert.Equal(t, "CIENTO VEINTE", SpellDecimal("120.00"))
	assert.Equal(t, "CIENTO VEINTE", SpellDecimal("120"))
	assert.Equal(t, "", SpellDecimal("abc"))
	assert.Equal(t, "", SpellDecimal(""))
}
