package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventaro/deedflow/internal/core/domain"
)

func sampleClient() *domain.Client {
	return &domain.Client{
		ID:          "cli-1",
		Name:        "MARIA LOPEZ",
		BirthDate:   "1990-03-12",
		Nationality: "MEXICANA",
		Gender:      "F",
		Phone:       "5512345678",
		Email:       "maria@example.com",
		Address:     "CALLE 5 NORTE 123",
	}
}

func sampleDevelopment() *domain.Development {
	return &domain.Development{
		ID:       "dev-1",
		Name:     "LOMAS DEL VALLE",
		Location: "MERIDA, YUCATAN",
		Lot:      "12",
		Block:    "B",
		AreaM2:   "120.50",
		DeedDate: "2020-01-15",
	}
}

func sampleForm() FormInput {
	return FormInput{
		"folio":           "abc-001",
		"contract_date":   "15/04/2024",
		"price":           "480,000",
		"down_payment":    "48,000",
		"monthly_payment": "6,000",
		"term_months":     "72",
	}
}

// =============================================================================
// Build Tests
// =============================================================================

func TestBuildOrMerge_Create(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	assert.Equal(t, domain.AggregateVersion, agg.Version)
	assert.Equal(t, "MARIA LOPEZ", agg.Client.Name)
	assert.Equal(t, "LOMAS DEL VALLE", agg.Development.Name)
	assert.Equal(t, "ABC-001", agg.Contract.Folio)
	assert.Equal(t, "2024-04-15", agg.Contract.Date)
	assert.Equal(t, "480000.00", agg.Contract.Price)
}

func TestBuildOrMerge_DerivesBalance(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	assert.Equal(t, "432000.00", agg.Contract.Balance)
}

func TestBuildOrMerge_BalanceNotDerivedWithoutOperands(t *testing.T) {
	form := FormInput{"folio": "ABC-002"}
	agg := BuildOrMerge(nil, form, sampleClient(), sampleDevelopment(), nil)

	assert.Empty(t, agg.Contract.Balance)
}

func TestBuildOrMerge_DerivesStartDay(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	assert.Equal(t, "15", agg.Contract.StartDay)
}

func TestBuildOrMerge_DerivesDateText(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	assert.Equal(t, "15 DE ABRIL DE 2024", agg.Contract.DateText)
	assert.Equal(t, "12 DE MARZO DE 1990", agg.Client.BirthDateText)
	assert.Equal(t, "15 DE ENERO DE 2020", agg.Development.DeedDateText)
}

func TestBuildOrMerge_UserSuppliedDateTextTrusted(t *testing.T) {
	form := sampleForm()
	form["contract_date_text"] = "EL DECIMOQUINTO DIA DE ABRIL DEL AÑO DOS MIL VEINTICUATRO"

	agg := BuildOrMerge(nil, form, sampleClient(), sampleDevelopment(), nil)

	assert.Equal(t, form["contract_date_text"], agg.Contract.DateText)
}

// =============================================================================
// Merge Tests
// =============================================================================

func TestBuildOrMerge_EmptyFormIsIdentity(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	merged := BuildOrMerge(&agg, FormInput{}, nil, nil, nil)
	assert.Equal(t, agg, merged)
}

func TestBuildOrMerge_PartialUpdateOverridesOnlyPresentKeys(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	merged := BuildOrMerge(&agg, FormInput{"monthly_payment": "7,500"}, nil, nil, nil)

	assert.Equal(t, "7500.00", merged.Contract.MonthlyPayment)
	assert.Equal(t, "ABC-001", merged.Contract.Folio)
	assert.Equal(t, "480000.00", merged.Contract.Price)
	assert.Equal(t, "MARIA LOPEZ", merged.Client.Name)
}

func TestBuildOrMerge_MergePreservesBalance(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)
	require.Equal(t, "432000.00", agg.Contract.Balance)

	// An unrelated edit does not re-derive a balance that is already set.
	merged := BuildOrMerge(&agg, FormInput{"payment_place": "MERIDA"}, nil, nil, nil)
	assert.Equal(t, "432000.00", merged.Contract.Balance)
}

func TestBuildOrMerge_DateChangeRecomputesText(t *testing.T) {
	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), nil)

	merged := BuildOrMerge(&agg, FormInput{"contract_date": "01/05/2024"}, nil, nil, nil)

	assert.Equal(t, "2024-05-01", merged.Contract.Date)
	assert.Equal(t, "1 DE MAYO DE 2024", merged.Contract.DateText)
	assert.Equal(t, "1", merged.Contract.StartDay)
}

func TestBuildOrMerge_CustomTextSurvivesUnrelatedEdit(t *testing.T) {
	form := sampleForm()
	form["contract_date_text"] = "FECHA PACTADA POR LAS PARTES"
	agg := BuildOrMerge(nil, form, sampleClient(), sampleDevelopment(), nil)

	merged := BuildOrMerge(&agg, FormInput{"payment_place": "MERIDA"}, nil, nil, nil)
	assert.Equal(t, "FECHA PACTADA POR LAS PARTES", merged.Contract.DateText)
}

// =============================================================================
// Request Segment Tests
// =============================================================================

func TestBuildOrMerge_RequestSegment(t *testing.T) {
	req := domain.NewRequest("user-1")
	req.State = domain.StateApproved
	req.AnnualPayment = domain.AnnualPayment{
		Enabled:   true,
		Amount:    "12500.00",
		Date:      "2024-05-01",
		TermYears: 5,
	}

	agg := BuildOrMerge(nil, sampleForm(), sampleClient(), sampleDevelopment(), req)

	assert.Equal(t, req.ID, agg.Request.ID)
	assert.Equal(t, "approved", agg.Request.State)
	assert.Equal(t, "SI", agg.Request.AnnualPaymentEnabled)
	assert.Equal(t, "12500.00", agg.Request.AnnualPaymentAmount)
	assert.Equal(t, "1 DE MAYO DE 2024", agg.Request.AnnualPaymentDateText)
	assert.Equal(t, "5", agg.Request.AnnualPaymentTerm)
	assert.Equal(t, "NO", agg.Request.ExecutorActive)
}

// =============================================================================
// Cancellation Ordering Tests
// =============================================================================

func TestValidateCancellationOrder_NoLink(t *testing.T) {
	assert.NoError(t, ValidateCancellationOrder(nil))
}

func TestValidateCancellationOrder_LinkedNotCancelled(t *testing.T) {
	req := domain.NewRequest("user-1")
	req.State = domain.StateApproved

	assert.ErrorIs(t, ValidateCancellationOrder(req), domain.ErrRequestNotCancelled)
}

func TestValidateCancellationOrder_LinkedCancelled(t *testing.T) {
	req := domain.NewRequest("user-1")
	req.State = domain.StateCancelled

	assert.NoError(t, ValidateCancellationOrder(req))
}
