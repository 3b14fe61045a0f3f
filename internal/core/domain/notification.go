package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Notifications
// =============================================================================

// NotificationKind classifies workflow notifications.
type NotificationKind string

const (
	NotifySubmitted     NotificationKind = "request_submitted"
	NotifyApproved      NotificationKind = "request_approved"
	NotifyReturned      NotificationKind = "request_returned"
	NotifyCancelled     NotificationKind = "request_cancelled"
	NotifyContractBuilt NotificationKind = "contract_created"
)

// Notification is a persisted workflow message for one recipient.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	RequestID   string           `json:"request_id,omitempty"`
	Kind        NotificationKind `json:"kind"`
	Body        string           `json:"body"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewNotification creates an unread notification.
func NewNotification(recipientID, requestID string, kind NotificationKind, body string) *Notification {
	return &Notification{
		ID:          "ntf_" + uuid.New().String()[:8],
		RecipientID: recipientID,
		RequestID:   requestID,
		Kind:        kind,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
}
