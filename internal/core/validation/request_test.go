package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventaro/deedflow/internal/core/domain"
)

// completeRequest returns a request with every unconditional field filled
// and the identification branch satisfied.
func completeRequest() *domain.Request {
	req := domain.NewRequest("user-1")
	req.ClientName = "MARIA LOPEZ"
	req.BirthDate = "1990-03-12"
	req.Nationality = "MEXICANA"
	req.MaritalStatus = "SOLTERA"
	req.Occupation = "COMERCIANTE"
	req.Phone = "5512345678"
	req.Email = "maria@example.com"
	req.Address = "CALLE 5 NORTE 123"
	req.Price = "480000.00"
	req.DownPayment = "48000.00"
	req.MonthlyPayment = "6000.00"
	req.IdentificationType = IdentificationINE
	req.NationalIDNumber = "IDMEX1234567890"
	return req
}

// =============================================================================
// MissingFields Tests
// =============================================================================

func TestMissingFields_Complete(t *testing.T) {
	assert.Empty(t, MissingFields(completeRequest()))
}

func TestMissingFields_BlankRequest(t *testing.T) {
	missing := MissingFields(domain.NewRequest("user-1"))

	assert.Contains(t, missing, "client_name")
	assert.Contains(t, missing, "birth_date")
	assert.Contains(t, missing, "price")
	assert.Contains(t, missing, "id_number")
}

func TestMissingFields_Ordered(t *testing.T) {
	missing := MissingFields(domain.NewRequest("user-1"))

	// Unconditional fields report in catalog order.
	assert.Equal(t, "client_name", missing[0])
	assert.Equal(t, "birth_date", missing[1])
}

func TestMissingFields_SentinelCountsAsMissing(t *testing.T) {
	req := completeRequest()
	req.ClientName = domain.Sentinel

	assert.Contains(t, MissingFields(req), "client_name")
}

func TestMissingFields_ZeroMoneyCountsAsMissing(t *testing.T) {
	req := completeRequest()
	req.Price = "0.00"

	assert.Contains(t, MissingFields(req), "price")
}

func TestMissingFields_IdentificationINE(t *testing.T) {
	req := completeRequest()
	req.IdentificationType = IdentificationINE
	req.NationalIDNumber = ""
	req.IDNumber = "P1234567" // irrelevant for ine

	assert.Contains(t, MissingFields(req), "national_id_number")
}

func TestMissingFields_IdentificationPassport(t *testing.T) {
	req := completeRequest()
	req.IdentificationType = IdentificationPassport
	req.NationalIDNumber = "" // irrelevant for passport
	req.IDNumber = ""

	missing := MissingFields(req)
	assert.Contains(t, missing, "id_number")
	assert.NotContains(t, missing, "national_id_number")
}

func TestMissingFields_IdentificationCedula(t *testing.T) {
	req := completeRequest()
	req.IdentificationType = IdentificationCedula
	req.IDNumber = "CED-9987"
	req.NationalIDNumber = ""

	assert.Empty(t, MissingFields(req))
}

func TestMissingFields_IdentificationUnknown_EitherSuffices(t *testing.T) {
	req := completeRequest()
	req.IdentificationType = ""
	req.NationalIDNumber = ""
	req.IDNumber = ""
	assert.Contains(t, MissingFields(req), "id_number")

	req.NationalIDNumber = "IDMEX1234567890"
	assert.Empty(t, MissingFields(req))

	req.NationalIDNumber = ""
	req.IDNumber = "P1234567"
	assert.Empty(t, MissingFields(req))
}

func TestMissingFields_AnnualPaymentDisabledIgnored(t *testing.T) {
	req := completeRequest()
	req.AnnualPayment = domain.AnnualPayment{Enabled: false}

	assert.Empty(t, MissingFields(req))
}

func TestMissingFields_AnnualPaymentEnabled(t *testing.T) {
	req := completeRequest()
	req.AnnualPayment = domain.AnnualPayment{Enabled: true}

	missing := MissingFields(req)
	assert.Contains(t, missing, "annual_payment_amount")
	assert.Contains(t, missing, "annual_payment_date")
	assert.Contains(t, missing, "annual_payment_term")
}

func TestMissingFields_AnnualPaymentFilled(t *testing.T) {
	req := completeRequest()
	req.AnnualPayment = domain.AnnualPayment{
		Enabled:   true,
		Amount:    "12500.00",
		Date:      "2024-05-01",
		TermYears: 5,
	}

	assert.Empty(t, MissingFields(req))
}

func TestMissingFields_ExecutorActive(t *testing.T) {
	req := completeRequest()
	req.Executor = domain.Executor{Active: true, Name: "JUAN LOPEZ"}

	missing := MissingFields(req)
	assert.NotContains(t, missing, "executor_name")
	assert.Contains(t, missing, "executor_age")
	assert.Contains(t, missing, "executor_relationship")
	assert.Contains(t, missing, "executor_phone")
}

func TestMissingFields_FlagCombinations(t *testing.T) {
	// Every combination of the two conditional groups; result is empty iff
	// each enabled group is fully provided.
	for _, annual := range []bool{false, true} {
		for _, executor := range []bool{false, true} {
			req := completeRequest()
			req.AnnualPayment.Enabled = annual
			req.Executor.Active = executor

			missing := MissingFields(req)
			if !annual && !executor {
				assert.Empty(t, missing)
			} else {
				assert.NotEmpty(t, missing, "annual=%v executor=%v", annual, executor)
			}

			req.AnnualPayment.Amount = "12500.00"
			req.AnnualPayment.Date = "2024-05-01"
			req.AnnualPayment.TermYears = 5
			req.Executor.Name = "JUAN LOPEZ"
			req.Executor.Age = "45"
			req.Executor.Relationship = "HERMANO"
			req.Executor.Phone = "5587654321"
			assert.Empty(t, MissingFields(req), "annual=%v executor=%v", annual, executor)
		}
	}
}

// =============================================================================
// Sentinel Tests
// =============================================================================

func TestApplySentinels(t *testing.T) {
	req := completeRequest()
	req.BirthPlace = ""
	req.Gender = "F"
	req.TaxID = "  "

	ApplySentinels(req)

	assert.Equal(t, domain.Sentinel, req.BirthPlace)
	assert.Equal(t, "F", req.Gender)
	assert.Equal(t, domain.Sentinel, req.TaxID)
}

// =============================================================================
// Coerce Tests
// =============================================================================

func TestCoerce_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		rule FieldRule
		in   string
		want string
	}{
		{"upper", FieldRule{Kind: KindUpper}, "calle 5 norte", "CALLE 5 NORTE"},
		{"date day-first", FieldRule{Kind: KindDate}, "15/04/2024", "2024-04-15"},
		{"date garbage", FieldRule{Kind: KindDate}, "soon", ""},
		{"money", FieldRule{Kind: KindMoney}, "$1,250.5", "1250.50"},
		{"int strips noise", FieldRule{Kind: KindInt}, " 45 years", "45"},
		{"email lowered", FieldRule{Kind: KindEmail}, "Maria@Example.COM", "maria@example.com"},
		{"phone strips punctuation", FieldRule{Kind: KindPhone}, "(55) 12-34-56-78", "5512345678"},
		{"bool yes", FieldRule{Kind: KindBool}, "SI", "1"},
		{"bool no", FieldRule{Kind: KindBool}, "no", ""},
		{"blank", FieldRule{Kind: KindUpper}, "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.rule, tt.in))
		})
	}
}

// =============================================================================
// ApplyForm Tests
// =============================================================================

func TestApplyForm_OnlyPresentKeysTouched(t *testing.T) {
	req := completeRequest()
	ApplyForm(req, map[string]string{"phone": "(55) 99-88-77-66"})

	assert.Equal(t, "5599887766", req.Phone)
	assert.Equal(t, "MARIA LOPEZ", req.ClientName)
}

func TestApplyForm_ConditionalGroups(t *testing.T) {
	req := domain.NewRequest("user-1")
	ApplyForm(req, map[string]string{
		"annual_payment_enabled": "true",
		"annual_payment_amount":  "12,500",
		"annual_payment_date":    "01/05/2024",
		"annual_payment_term":    "5",
		"executor_active":        "1",
		"executor_age":           "45",
	})

	require.True(t, req.AnnualPayment.Enabled)
	assert.Equal(t, "12500.00", req.AnnualPayment.Amount)
	assert.Equal(t, "2024-05-01", req.AnnualPayment.Date)
	assert.Equal(t, 5, req.AnnualPayment.TermYears)
	assert.True(t, req.Executor.Active)
	assert.Equal(t, "45", req.Executor.Age)
}

func TestApplyForm_UnknownKeysIgnored(t *testing.T) {
	req := completeRequest()
	ApplyForm(req, map[string]string{"no_such_field": "value"})

	assert.Empty(t, MissingFields(req))
}

// =============================================================================
// IsUnset Tests
// =============================================================================

func TestIsUnset(t *testing.T) {
	plain := FieldRule{Kind: KindText}
	money := FieldRule{Kind: KindMoney, ZeroIsUnset: true}

	assert.True(t, IsUnset(plain, ""))
	assert.True(t, IsUnset(plain, "   "))
	assert.True(t, IsUnset(plain, domain.Sentinel))
	assert.False(t, IsUnset(plain, "0"))
	assert.True(t, IsUnset(money, "0"))
	assert.True(t, IsUnset(money, "0.00"))
	assert.False(t, IsUnset(money, "0.01"))
}
