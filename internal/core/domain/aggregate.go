package domain

// =============================================================================
// Aggregate Document
// =============================================================================

// AggregateVersion is the current schema version of the stored aggregate.
// Bump when segment fields change shape.
const AggregateVersion = 1

// Aggregate is the contract's document of record: denormalized snapshots of
// the client, the development and the agreed terms, plus a slice of the
// originating request when one exists. It lives as a typed struct in memory
// and is serialized to JSON only at the storage boundary.
//
// Date fields come in pairs: the canonical YYYY-MM-DD value and a long-form
// text sibling used verbatim in documents. The text sibling is recomputed
// from the canonical value unless the user supplied their own wording.
type Aggregate struct {
	Version     int                `json:"version"`
	Client      ClientSegment      `json:"client"`
	Development DevelopmentSegment `json:"development"`
	Contract    ContractSegment    `json:"contract"`
	Request     RequestSegment     `json:"request"`
}

// ClientSegment is the client snapshot inside the aggregate.
type ClientSegment struct {
	Name          string `json:"name,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	BirthDateText string `json:"birth_date_text,omitempty"`
	BirthPlace    string `json:"birth_place,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	IDNumber      string `json:"id_number,omitempty"`
}

// DevelopmentSegment is the development snapshot inside the aggregate.
type DevelopmentSegment struct {
	Name         string `json:"name,omitempty"`
	Location     string `json:"location,omitempty"`
	Lot          string `json:"lot,omitempty"`
	Block        string `json:"block,omitempty"`
	AreaM2       string `json:"area_m2,omitempty"`
	DeedNumber   string `json:"deed_number,omitempty"`
	DeedDate     string `json:"deed_date,omitempty"`
	DeedDateText string `json:"deed_date_text,omitempty"`
	NotaryName   string `json:"notary_name,omitempty"`
	NotaryNumber string `json:"notary_number,omitempty"`
}

// ContractSegment holds the agreed contract terms.
type ContractSegment struct {
	Folio                string `json:"folio,omitempty"`
	Date                 string `json:"date,omitempty"`
	DateText             string `json:"date_text,omitempty"`
	Price                string `json:"price,omitempty"`
	DownPayment          string `json:"down_payment,omitempty"`
	Balance              string `json:"balance,omitempty"`
	MonthlyPayment       string `json:"monthly_payment,omitempty"`
	TermMonths           string `json:"term_months,omitempty"`
	StartDay             string `json:"start_day,omitempty"`
	FirstPaymentDate     string `json:"first_payment_date,omitempty"`
	FirstPaymentDateText string `json:"first_payment_date_text,omitempty"`
	PaymentPlace         string `json:"payment_place,omitempty"`
}

// RequestSegment is the slice of the originating request kept in the
// aggregate. Empty when the contract was created without a request.
type RequestSegment struct {
	ID                    string `json:"id,omitempty"`
	State                 string `json:"state,omitempty"`
	ApprovalDate          string `json:"approval_date,omitempty"`
	ApprovalDateText      string `json:"approval_date_text,omitempty"`
	ExecutorActive        string `json:"executor_active,omitempty"` // SI / NO
	ExecutorName          string `json:"executor_name,omitempty"`
	ExecutorAge           string `json:"executor_age,omitempty"`
	ExecutorRelationship  string `json:"executor_relationship,omitempty"`
	ExecutorPhone         string `json:"executor_phone,omitempty"`
	AnnualPaymentEnabled  string `json:"annual_payment_enabled,omitempty"` // SI / NO
	AnnualPaymentAmount   string `json:"annual_payment_amount,omitempty"`
	AnnualPaymentDate     string `json:"annual_payment_date,omitempty"`
	AnnualPaymentDateText string `json:"annual_payment_date_text,omitempty"`
	AnnualPaymentTerm     string `json:"annual_payment_term,omitempty"`
}
