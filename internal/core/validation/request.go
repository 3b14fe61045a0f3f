package validation

import (
	"strconv"

	"github.com/ventaro/deedflow/internal/core/domain"
)

// =============================================================================
// Identification Types
// =============================================================================

const (
	IdentificationINE      = "ine"       // national voter ID card
	IdentificationPassport = "passport"
	IdentificationCedula   = "cedula" // professional ID
)

// =============================================================================
// Required Field Scan
// =============================================================================

// requiredAlways lists the unconditional required fields, in report order.
var requiredAlways = []string{
	"client_name",
	"birth_date",
	"nationality",
	"marital_status",
	"occupation",
	"phone",
	"email",
	"address",
	"price",
	"down_payment",
	"monthly_payment",
}

// MissingFields returns the ordered, deduplicated field codes that block the
// request's submission. An empty result means the request is submittable.
// A non-empty result never blocks saving the draft itself.
func MissingFields(req *domain.Request) []string {
	var missing []string
	seen := make(map[string]bool)
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			missing = append(missing, code)
		}
	}

	values := map[string]string{
		"client_name":     req.ClientName,
		"birth_date":      req.BirthDate,
		"nationality":     req.Nationality,
		"marital_status":  req.MaritalStatus,
		"occupation":      req.Occupation,
		"phone":           req.Phone,
		"email":           req.Email,
		"address":         req.Address,
		"price":           req.Price,
		"down_payment":    req.DownPayment,
		"monthly_payment": req.MonthlyPayment,
	}
	for _, code := range requiredAlways {
		if isBlank(code, values[code]) {
			add(code)
		}
	}

	// Identification branch: which number is mandatory depends on the type.
	switch req.IdentificationType {
	case IdentificationINE:
		if isBlank("national_id_number", req.NationalIDNumber) {
			add("national_id_number")
		}
	case IdentificationPassport, IdentificationCedula:
		if isBlank("id_number", req.IDNumber) {
			add("id_number")
		}
	default:
		if isBlank("national_id_number", req.NationalIDNumber) &&
			isBlank("id_number", req.IDNumber) {
			add("id_number")
		}
	}

	if req.AnnualPayment.Enabled {
		if isBlank("annual_payment_amount", req.AnnualPayment.Amount) {
			add("annual_payment_amount")
		}
		if isBlank("annual_payment_date", req.AnnualPayment.Date) {
			add("annual_payment_date")
		}
		if req.AnnualPayment.TermYears <= 0 {
			add("annual_payment_term")
		}
	}

	if req.Executor.Active {
		if isBlank("executor_name", req.Executor.Name) {
			add("executor_name")
		}
		if isBlank("executor_age", req.Executor.Age) {
			add("executor_age")
		}
		if isBlank("executor_relationship", req.Executor.Relationship) {
			add("executor_relationship")
		}
		if isBlank("executor_phone", req.Executor.Phone) {
			add("executor_phone")
		}
	}

	return missing
}

// =============================================================================
// Sentinels
// =============================================================================

// sentinelFields are the optional fields that receive the document sentinel
// when still blank at submission time.
var sentinelFields = []string{
	"birth_place",
	"gender",
	"tax_id",
}

// ApplySentinels stores the sentinel in the optional fields that are still
// blank. Called only after MissingFields came back empty so a confirmed
// submission never prints an empty gap in generated documents.
func ApplySentinels(req *domain.Request) {
	set := func(field *string, code string) {
		if isBlank(code, *field) {
			*field = domain.Sentinel
		}
	}
	set(&req.BirthPlace, "birth_place")
	set(&req.Gender, "gender")
	set(&req.TaxID, "tax_id")
}

// =============================================================================
// Form Application
// =============================================================================

// ApplyForm coerces and writes the provided form fields onto the request.
// Only keys present in the form are touched; absent keys keep their prior
// values. Unknown keys are ignored.
func ApplyForm(req *domain.Request, form map[string]string) {
	for code, raw := range form {
		rule, ok := Rules[code]
		val := raw
		if ok {
			val = Coerce(rule, raw)
		}
		switch code {
		case "client_name":
			req.ClientName = val
		case "birth_date":
			req.BirthDate = val
		case "birth_place":
			req.BirthPlace = val
		case "nationality":
			req.Nationality = val
		case "marital_status":
			req.MaritalStatus = val
		case "occupation":
			req.Occupation = val
		case "gender":
			req.Gender = val
		case "phone":
			req.Phone = val
		case "email":
			req.Email = val
		case "address":
			req.Address = val
		case "identification_type":
			req.IdentificationType = raw
		case "national_id_number":
			req.NationalIDNumber = val
		case "id_number":
			req.IDNumber = val
		case "tax_id":
			req.TaxID = val
		case "development_id":
			req.DevelopmentID = raw
		case "price":
			req.Price = val
		case "down_payment":
			req.DownPayment = val
		case "monthly_payment":
			req.MonthlyPayment = val
		case "term_months":
			req.TermMonths = atoiSafe(val)
		case "contract_date":
			req.ContractDate = val
		case "executor_active":
			req.Executor.Active = Coerce(FieldRule{Kind: KindBool}, raw) == "1"
		case "executor_name":
			req.Executor.Name = val
		case "executor_age":
			req.Executor.Age = val
		case "executor_relationship":
			req.Executor.Relationship = val
		case "executor_phone":
			req.Executor.Phone = val
		case "annual_payment_enabled":
			req.AnnualPayment.Enabled = Coerce(FieldRule{Kind: KindBool}, raw) == "1"
		case "annual_payment_amount":
			req.AnnualPayment.Amount = val
		case "annual_payment_date":
			req.AnnualPayment.Date = val
		case "annual_payment_term":
			req.AnnualPayment.TermYears = atoiSafe(val)
		}
	}
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
