package api

import "time"

// =============================================================================
// Request Types
// =============================================================================

// SaveRequestBody is the body for creating or editing a purchase request.
// All fields are optional; only present keys are applied.
type SaveRequestBody struct {
	Fields map[string]string `json:"fields"`
}

// TransitionBody carries the optional reason for a workflow transition.
type TransitionBody struct {
	Reason string `json:"reason,omitempty"`
}

// CancelRequestBody is the body for cancelling a request. Password is only
// required when the request is linked to a contract.
type CancelRequestBody struct {
	Reason   string `json:"reason,omitempty"`
	Password string `json:"password,omitempty"`
}

// SaveContractBody is the body for creating or editing a contract.
type SaveContractBody struct {
	Folio         string            `json:"folio,omitempty"`
	ClientID      string            `json:"client_id,omitempty"`
	DevelopmentID string            `json:"development_id,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// CancelContractBody is the body for cancelling a contract. Cancellation is
// destructive: the caller re-enters their password.
type CancelContractBody struct {
	Reason   string `json:"reason"`
	Password string `json:"password"`
}

// GenerateDocumentBody selects the template to render.
type GenerateDocumentBody struct {
	Template string `json:"template,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MissingFieldsResponse reports the field codes blocking a submission.
type MissingFieldsResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code"`
	MissingFields []string `json:"missing_fields"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RequestResponse is the response body for request operations.
type RequestResponse struct {
	ID             string            `json:"id"`
	OwnerID        string            `json:"owner_id"`
	ContractID     string            `json:"contract_id,omitempty"`
	State          string            `json:"state"`
	Fields         map[string]string `json:"fields"`
	Executor       ExecutorResponse  `json:"executor"`
	AnnualPayment  AnnualResponse    `json:"annual_payment"`
	StateActor     string            `json:"state_actor,omitempty"`
	StateReason    string            `json:"state_reason,omitempty"`
	StateChangedAt time.Time         `json:"state_changed_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ExecutorResponse mirrors the executor group of a request.
type ExecutorResponse struct {
	Active       bool   `json:"active"`
	Name         string `json:"name,omitempty"`
	Age          string `json:"age,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// AnnualResponse mirrors the annual payment group of a request.
type AnnualResponse struct {
	Enabled   bool   `json:"enabled"`
	Amount    string `json:"amount,omitempty"`
	Date      string `json:"date,omitempty"`
	TermYears int    `json:"term_years,omitempty"`
}

// ListRequestsResponse is the response for listing requests.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ContractResponse is the response body for contract operations.
type ContractResponse struct {
	ID            string    `json:"id"`
	Folio         string    `json:"folio"`
	ClientID      string    `json:"client_id"`
	DevelopmentID string    `json:"development_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Status        string    `json:"status"`
	Aggregate     any       `json:"aggregate"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListContractsResponse is the response for listing contracts.
type ListContractsResponse struct {
	Contracts []ContractResponse `json:"contracts"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// DocumentResponse reports a rendered contract document.
type DocumentResponse struct {
	Status   string `json:"status"`
	DocxPath string `json:"docx_path"`
}

// NotificationResponse is one workflow notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
