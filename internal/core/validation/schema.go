// Package validation computes the set of missing fields blocking a request's
// submission and provides the typed field schema used to coerce raw form
// input. All functions are pure: no I/O, no side effects.
package validation

import (
	"strconv"
	"strings"

	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/normalize"
)

// =============================================================================
// Field Schema
// =============================================================================

// Kind classifies a form field and selects its coercion rule.
type Kind int

const (
	KindText Kind = iota
	KindUpper
	KindDate
	KindInt
	KindFloat
	KindMoney
	KindEmail
	KindPhone
	KindBool
)

// FieldRule describes one form field of the request or contract forms.
type FieldRule struct {
	Code        string // field code reported to clients, e.g. "birth_date"
	Kind        Kind
	ZeroIsUnset bool // money/float fields where 0 means "not provided"
}

// Rules is the field catalog, keyed by field code.
var Rules = map[string]FieldRule{
	"client_name":           {Code: "client_name", Kind: KindUpper},
	"birth_date":            {Code: "birth_date", Kind: KindDate},
	"birth_place":           {Code: "birth_place", Kind: KindUpper},
	"nationality":           {Code: "nationality", Kind: KindUpper},
	"marital_status":        {Code: "marital_status", Kind: KindUpper},
	"occupation":            {Code: "occupation", Kind: KindUpper},
	"gender":                {Code: "gender", Kind: KindUpper},
	"phone":                 {Code: "phone", Kind: KindPhone},
	"email":                 {Code: "email", Kind: KindEmail},
	"address":               {Code: "address", Kind: KindUpper},
	"identification_type":   {Code: "identification_type", Kind: KindText},
	"national_id_number":    {Code: "national_id_number", Kind: KindUpper},
	"id_number":             {Code: "id_number", Kind: KindUpper},
	"tax_id":                {Code: "tax_id", Kind: KindUpper},
	"price":                 {Code: "price", Kind: KindMoney, ZeroIsUnset: true},
	"down_payment":          {Code: "down_payment", Kind: KindMoney, ZeroIsUnset: true},
	"monthly_payment":       {Code: "monthly_payment", Kind: KindMoney, ZeroIsUnset: true},
	"term_months":           {Code: "term_months", Kind: KindInt},
	"contract_date":         {Code: "contract_date", Kind: KindDate},
	"annual_payment_amount": {Code: "annual_payment_amount", Kind: KindMoney, ZeroIsUnset: true},
	"annual_payment_date":   {Code: "annual_payment_date", Kind: KindDate},
	"annual_payment_term":   {Code: "annual_payment_term", Kind: KindInt},
	"executor_name":         {Code: "executor_name", Kind: KindUpper},
	"executor_age":          {Code: "executor_age", Kind: KindInt},
	"executor_relationship": {Code: "executor_relationship", Kind: KindUpper},
	"executor_phone":        {Code: "executor_phone", Kind: KindPhone},
}

// Coerce normalizes a raw form value according to its rule. Unknown or
// malformed input degrades to a cleaned string rather than an error; the
// missing-field scan decides whether that blocks submission.
func Coerce(rule FieldRule, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch rule.Kind {
	case KindUpper:
		return strings.ToUpper(raw)
	case KindDate:
		if d, ok := normalize.ParseDate(raw); ok {
			return normalize.ToStorage(d)
		}
		return ""
	case KindMoney:
		return normalize.Money(raw)
	case KindFloat:
		return normalize.Decimal(raw, 2)
	case KindInt:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		if digits == "" {
			return ""
		}
		n, _ := strconv.Atoi(digits)
		return strconv.Itoa(n)
	case KindEmail:
		return strings.ToLower(raw)
	case KindPhone:
		return strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '+' {
				return r
			}
			return -1
		}, raw)
	case KindBool:
		switch strings.ToLower(raw) {
		case "1", "true", "si", "on", "yes":
			return "1"
		}
		return ""
	default:
		return raw
	}
}

// =============================================================================
// Unset Predicate
// =============================================================================

// IsUnset is the single definition of "effectively empty" used across the
// workflow: blank after trimming, the document sentinel, or — when the
// field's rule says zero means unprovided — a value that parses to zero.
func IsUnset(rule FieldRule, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || value == domain.Sentinel {
		return true
	}
	if rule.ZeroIsUnset {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f == 0 {
			return true
		}
	}
	return false
}

// isBlank applies IsUnset with the field's catalog rule, treating unknown
// codes as plain text.
func isBlank(code, value string) bool {
	return IsUnset(Rules[code], value)
}
