package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Contract Errors
// =============================================================================

var (
	ErrDuplicateFolio      = errors.New("folio is already in use")
	ErrContractCancelled   = errors.New("contract is cancelled")
	ErrRequestNotCancelled = errors.New("linked request must be cancelled first")
	ErrShortCancelReason   = errors.New("cancellation reason must be at least 5 characters")
)

// MinCancelReasonLength is the minimum length of a cancellation reason.
const MinCancelReasonLength = 5

// =============================================================================
// Contract Status
// =============================================================================

// ContractStatus is the numeric lifecycle status stored with each contract.
type ContractStatus int

const (
	ContractActive    ContractStatus = 1
	ContractArchived  ContractStatus = 2
	ContractCancelled ContractStatus = 3
)

// String returns the display name for a status.
func (s ContractStatus) String() string {
	switch s {
	case ContractActive:
		return "active"
	case ContractArchived:
		return "archived"
	case ContractCancelled:
		return "cancelled"
	}
	return "unknown"
}

// =============================================================================
// Contract
// =============================================================================

// Contract is the persisted aggregate of client, development and terms data
// used to render legal documents. Folio is the unique business key.
type Contract struct {
	ID            string         `json:"id"`
	Folio         string         `json:"folio"`
	ClientID      string         `json:"client_id"`
	DevelopmentID string         `json:"development_id"`
	RequestID     string         `json:"request_id,omitempty"`
	Status        ContractStatus `json:"status"`
	Aggregate     Aggregate      `json:"aggregate"`
	CancelReason  string         `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewContract creates an active contract shell; the aggregate is filled by
// the document model.
func NewContract(folio, clientID, developmentID, requestID string) *Contract {
	now := time.Now().UTC()
	return &Contract{
		ID:            "ctr_" + uuid.New().String()[:8],
		Folio:         NormalizeFolio(folio),
		ClientID:      clientID,
		DevelopmentID: developmentID,
		RequestID:     requestID,
		Status:        ContractActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizeFolio uppercases and trims a folio for business-key comparison.
func NormalizeFolio(folio string) string {
	return strings.ToUpper(strings.TrimSpace(folio))
}

// ValidateCancelReason checks a contract or linked-request cancellation
// reason and returns the truncated form to store.
func ValidateCancelReason(reason string) (string, error) {
	if len([]rune(strings.TrimSpace(reason))) < MinCancelReasonLength {
		return "", ErrShortCancelReason
	}
	return TruncateReason(reason), nil
}

// Cancel marks the contract cancelled with the given reason. Cancellation
// is terminal and irreversible.
func (c *Contract) Cancel(reason string) error {
	if c.Status == ContractCancelled {
		return ErrContractCancelled
	}
	stored, err := ValidateCancelReason(reason)
	if err != nil {
		return err
	}
	c.Status = ContractCancelled
	c.CancelReason = stored
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// Client and Development
// =============================================================================

// Client is a purchaser on record.
type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BirthDate     string    `json:"birth_date,omitempty"` // storage form
	BirthPlace    string    `json:"birth_place,omitempty"`
	Nationality   string    `json:"nationality,omitempty"`
	MaritalStatus string    `json:"marital_status,omitempty"`
	Occupation    string    `json:"occupation,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	TaxID         string    `json:"tax_id,omitempty"`
	IDNumber      string    `json:"id_number,omitempty"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Development is a lot in a real-estate development offered for sale.
type Development struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	Lot          string    `json:"lot,omitempty"`
	Block        string    `json:"block,omitempty"`
	AreaM2       string    `json:"area_m2,omitempty"` // canonical decimal
	Price        string    `json:"price,omitempty"`   // canonical money
	DeedNumber   string    `json:"deed_number,omitempty"`
	DeedDate     string    `json:"deed_date,omitempty"` // storage form
	NotaryName   string    `json:"notary_name,omitempty"`
	NotaryNumber string    `json:"notary_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
