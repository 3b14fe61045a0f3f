package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Request Errors
// =============================================================================

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrReasonRequired    = errors.New("a reason is required for this transition")
)

// =============================================================================
// Request State
// =============================================================================

type RequestState string

const (
	StateDraft     RequestState = "draft"
	StateSubmitted RequestState = "submitted"
	StateInReview  RequestState = "in_review"
	StateApproved  RequestState = "approved"
	StateCancelled RequestState = "cancelled"
)

// Sentinel marks an optional field the client chose not to provide. It is
// stored in place of the blank value so generated documents print a fixed
// placeholder instead of an empty gap.
const Sentinel = "POR PROPORCIONAR"

// MaxReasonLength caps stored transition and cancellation reasons.
const MaxReasonLength = 500

// =============================================================================
// Conditional Groups
// =============================================================================

// Executor is an optional person empowered to act on the client's behalf.
// Activating it makes the whole sub-group mandatory before submission.
type Executor struct {
	Active       bool   `json:"active"`
	Name         string `json:"name,omitempty"`
	Age          string `json:"age,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// AnnualPayment is an optional yearly lump-sum agreement. Enabling it makes
// amount, date and term mandatory before submission.
type AnnualPayment struct {
	Enabled   bool   `json:"enabled"`
	Amount    string `json:"amount,omitempty"` // canonical 2-decimal money
	Date      string `json:"date,omitempty"`   // storage form YYYY-MM-DD
	TermYears int    `json:"term_years,omitempty"`
}

// =============================================================================
// Request
// =============================================================================

// Request is a property-purchase request moving through the review workflow.
// Requests are never deleted, only state-transitioned.
type Request struct {
	ID         string       `json:"id"`
	OwnerID    string       `json:"owner_id"`
	ContractID string       `json:"contract_id,omitempty"`
	State      RequestState `json:"state"`

	// Client identity and bio
	ClientName    string `json:"client_name"`
	BirthDate     string `json:"birth_date,omitempty"` // storage form
	BirthPlace    string `json:"birth_place,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	Gender        string `json:"gender,omitempty"` // closed vocabulary: M/F
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`

	// Identification. Which number is mandatory depends on the type.
	IdentificationType string `json:"identification_type,omitempty"`
	NationalIDNumber   string `json:"national_id_number,omitempty"`
	IDNumber           string `json:"id_number,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`

	// Financial terms (canonical money strings)
	DevelopmentID  string `json:"development_id,omitempty"`
	Price          string `json:"price,omitempty"`
	DownPayment    string `json:"down_payment,omitempty"`
	MonthlyPayment string `json:"monthly_payment,omitempty"`
	TermMonths     int    `json:"term_months,omitempty"`
	ContractDate   string `json:"contract_date,omitempty"` // storage form

	Executor      Executor      `json:"executor"`
	AnnualPayment AnnualPayment `json:"annual_payment"`

	// Last transition audit trail
	StateActor     string    `json:"state_actor,omitempty"`
	StateReason    string    `json:"state_reason,omitempty"`
	StateChangedAt time.Time `json:"state_changed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRequest creates a draft request owned by the given user.
func NewRequest(ownerID string) *Request {
	now := time.Now().UTC()
	return &Request{
		ID:             "req_" + uuid.New().String()[:8],
		OwnerID:        ownerID,
		State:          StateDraft,
		StateChangedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Linked reports whether the request has been compiled into a contract.
func (r *Request) Linked() bool {
	return r.ContractID != ""
}

// =============================================================================
// State Machine
// =============================================================================

// validTransitions defines the allowed state transitions. Requests move
// forward only; the submitted/in_review -> draft edge is the explicit
// manager-issued return and carries a mandatory reason.
var validTransitions = map[RequestState][]RequestState{
	StateDraft:     {StateSubmitted},
	StateSubmitted: {StateInReview, StateCancelled, StateDraft},
	StateInReview:  {StateApproved, StateCancelled, StateDraft},
	StateApproved:  {}, // Terminal
	StateCancelled: {}, // Terminal
}

// ValidateRequestTransition checks whether a state transition is allowed.
func ValidateRequestTransition(from, to RequestState) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return ErrInvalidTransition
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// Transition moves the request to a new state, recording the actor, the
// (truncated) reason and the time. A return to draft requires a reason.
func (r *Request) Transition(to RequestState, actorID, reason string) error {
	if err := ValidateRequestTransition(r.State, to); err != nil {
		return err
	}
	if to == StateDraft && reason == "" {
		return ErrReasonRequired
	}
	r.State = to
	r.StateActor = actorID
	r.StateReason = TruncateReason(reason)
	now := time.Now().UTC()
	r.StateChangedAt = now
	r.UpdatedAt = now
	return nil
}

// TruncateReason caps a reason at MaxReasonLength characters.
func TruncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) > MaxReasonLength {
		return string(runes[:MaxReasonLength])
	}
	return reason
}
