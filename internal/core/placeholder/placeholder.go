// Package placeholder flattens a contract aggregate into the namespaced
// placeholder map consumed by template substitution. Keys match
// ^[A-Z0-9_]+$, values are display strings, and the map is ephemeral: it is
// derived on demand and never persisted.
package placeholder

import (
	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/normalize"
)

// =============================================================================
// Flatten
// =============================================================================

// Flatten derives the placeholder map for an aggregate in two passes.
//
// Pass 1 applies the explicit table: bespoke formatting per legal-document
// placeholder, with every explicit key always present — as an empty string
// when its source value is empty — so substitution never leaves a token
// unresolved. Pass 2 walks the remaining fields of every segment generically
// as <SEGMENT>_<FIELD>, never overwriting a pass-1 key. Flatten never fails;
// malformed values coerce to "".
func Flatten(agg *domain.Aggregate) map[string]string {
	out := make(map[string]string, 96)
	if agg == nil {
		agg = &domain.Aggregate{}
	}

	for _, e := range explicitTable {
		out[e.key] = e.value(agg)
	}

	walk(out, "", buildTree(agg))

	return out
}

// =============================================================================
// Explicit Table
// =============================================================================

type entry struct {
	key   string
	value func(*domain.Aggregate) string
}

// honorific maps the closed gender vocabulary to the fixed form of address
// used in legal documents. Unrecognized codes map to the empty string.
func honorific(code string) string {
	switch code {
	case "M":
		return "SEÑOR"
	case "F":
		return "SEÑORA"
	}
	return ""
}

func shortDate(canonical string) string {
	if d, ok := normalize.ParseDate(canonical); ok {
		return normalize.ToShortForm(d)
	}
	return ""
}

// explicitTable lists every bespoke legal-document placeholder. Money fields
// emit a thousands-separated display key plus a raw value key; date fields a
// short key plus a long-form text key.
var explicitTable = []entry{
	// Client
	{"CLIENT_NAME", func(a *domain.Aggregate) string { return a.Client.Name }},
	{"CLIENT_HONORIFIC", func(a *domain.Aggregate) string { return honorific(a.Client.Gender) }},
	{"CLIENT_BIRTH_DATE", func(a *domain.Aggregate) string { return shortDate(a.Client.BirthDate) }},
	{"CLIENT_BIRTH_DATE_TEXT", func(a *domain.Aggregate) string { return a.Client.BirthDateText }},
	{"CLIENT_BIRTH_PLACE", func(a *domain.Aggregate) string { return a.Client.BirthPlace }},
	{"CLIENT_NATIONALITY", func(a *domain.Aggregate) string { return a.Client.Nationality }},
	{"CLIENT_MARITAL_STATUS", func(a *domain.Aggregate) string { return a.Client.MaritalStatus }},
	{"CLIENT_OCCUPATION", func(a *domain.Aggregate) string { return a.Client.Occupation }},
	{"CLIENT_ADDRESS", func(a *domain.Aggregate) string { return a.Client.Address }},
	{"CLIENT_PHONE", func(a *domain.Aggregate) string { return a.Client.Phone }},
	{"CLIENT_EMAIL", func(a *domain.Aggregate) string { return a.Client.Email }},
	{"CLIENT_TAX_ID", func(a *domain.Aggregate) string { return a.Client.TaxID }},
	{"CLIENT_ID_NUMBER", func(a *domain.Aggregate) string { return a.Client.IDNumber }},

	// Development
	{"DEVELOPMENT_NAME", func(a *domain.Aggregate) string { return a.Development.Name }},
	{"DEVELOPMENT_LOCATION", func(a *domain.Aggregate) string { return a.Development.Location }},
	{"DEVELOPMENT_LOT", func(a *domain.Aggregate) string { return a.Development.Lot }},
	{"DEVELOPMENT_BLOCK", func(a *domain.Aggregate) string { return a.Development.Block }},
	{"DEVELOPMENT_AREA", func(a *domain.Aggregate) string { return a.Development.AreaM2 }},
	{"DEVELOPMENT_AREA_TEXT", func(a *domain.Aggregate) string { return normalize.SpellDecimal(a.Development.AreaM2) }},
	{"DEVELOPMENT_DEED_NUMBER", func(a *domain.Aggregate) string { return a.Development.DeedNumber }},
	{"DEVELOPMENT_DEED_DATE", func(a *domain.Aggregate) string { return shortDate(a.Development.DeedDate) }},
	{"DEVELOPMENT_DEED_DATE_TEXT", func(a *domain.Aggregate) string { return a.Development.DeedDateText }},
	{"DEVELOPMENT_NOTARY_NAME", func(a *domain.Aggregate) string { return a.Development.NotaryName }},
	{"DEVELOPMENT_NOTARY_NUMBER", func(a *domain.Aggregate) string { return a.Development.NotaryNumber }},

	// Contract
	{"CONTRACT_FOLIO", func(a *domain.Aggregate) string { return a.Contract.Folio }},
	{"CONTRACT_DATE", func(a *domain.Aggregate) string { return shortDate(a.Contract.Date) }},
	{"CONTRACT_DATE_TEXT", func(a *domain.Aggregate) string { return a.Contract.DateText }},
	{"CONTRACT_PRICE", func(a *domain.Aggregate) string { return normalize.DisplayMoney(a.Contract.Price) }},
	{"CONTRACT_PRICE_VALUE", func(a *domain.Aggregate) string { return a.Contract.Price }},
	{"CONTRACT_DOWN_PAYMENT", func(a *domain.Aggregate) string { return normalize.DisplayMoney(a.Contract.DownPayment) }},
	{"CONTRACT_DOWN_PAYMENT_VALUE", func(a *domain.Aggregate) string { return a.Contract.DownPayment }},
	{"CONTRACT_BALANCE", func(a *domain.Aggregate) string { return normalize.DisplayMoney(a.Contract.Balance) }},
	{"CONTRACT_BALANCE_VALUE", func(a *domain.Aggregate) string { return a.Contract.Balance }},
	{"CONTRACT_MONTHLY_PAYMENT", func(a *domain.Aggregate) string { return normalize.DisplayMoney(a.Contract.MonthlyPayment) }},
	{"CONTRACT_MONTHLY_PAYMENT_VALUE", func(a *domain.Aggregate) string { return a.Contract.MonthlyPayment }},
	{"CONTRACT_TERM_MONTHS", func(a *domain.Aggregate) string { return a.Contract.TermMonths }},
	{"CONTRACT_START_DAY", func(a *domain.Aggregate) string { return a.Contract.StartDay }},
	{"CONTRACT_FIRST_PAYMENT_DATE", func(a *domain.Aggregate) string { return shortDate(a.Contract.FirstPaymentDate) }},
	{"CONTRACT_FIRST_PAYMENT_DATE_TEXT", func(a *domain.Aggregate) string { return a.Contract.FirstPaymentDateText }},
	{"CONTRACT_PAYMENT_PLACE", func(a *domain.Aggregate) string { return a.Contract.PaymentPlace }},

	// Request
	{"REQUEST_ANNUAL_PAYMENT", func(a *domain.Aggregate) string { return a.Request.AnnualPaymentEnabled }},
	{"REQUEST_ANNUAL_PAYMENT_AMOUNT", func(a *domain.Aggregate) string { return normalize.DisplayMoney(a.Request.AnnualPaymentAmount) }},
	{"REQUEST_ANNUAL_PAYMENT_AMOUNT_VALUE", func(a *domain.Aggregate) string { return a.Request.AnnualPaymentAmount }},
	{"REQUEST_ANNUAL_PAYMENT_DATE", func(a *domain.Aggregate) string { return shortDate(a.Request.AnnualPaymentDate) }},
	{"REQUEST_ANNUAL_PAYMENT_DATE_TEXT", func(a *domain.Aggregate) string { return a.Request.AnnualPaymentDateText }},
	{"REQUEST_ANNUAL_PAYMENT_TERM", func(a *domain.Aggregate) string { return a.Request.AnnualPaymentTerm }},
	{"REQUEST_EXECUTOR", func(a *domain.Aggregate) string { return a.Request.ExecutorActive }},
	{"REQUEST_EXECUTOR_NAME", func(a *domain.Aggregate) string { return a.Request.ExecutorName }},
	{"REQUEST_EXECUTOR_AGE", func(a *domain.Aggregate) string { return a.Request.ExecutorAge }},
	{"REQUEST_EXECUTOR_RELATIONSHIP", func(a *domain.Aggregate) string { return a.Request.ExecutorRelationship }},
	{"REQUEST_EXECUTOR_PHONE", func(a *domain.Aggregate) string { return a.Request.ExecutorPhone }},
}
