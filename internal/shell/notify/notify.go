// Package notify persists workflow notifications for review participants.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/shell/store"
)

// Notifier fans workflow events out to the users who need to act on them.
// Delivery is best-effort: a failed insert is logged and skipped so a
// notification problem never blocks the transition that triggered it.
type Notifier struct {
	store  store.Store
	logger *slog.Logger
}

// NewNotifier creates a store-backed notifier.
func NewNotifier(s store.Store, logger *slog.Logger) *Notifier {
	return &Notifier{store: s, logger: logger}
}

// RequestSubmitted notifies every manager that a request awaits review.
func (n *Notifier) RequestSubmitted(ctx context.Context, req *domain.Request) {
	managers, err := n.store.ListManagers(ctx)
	if err != nil {
		n.logger.Error("failed to list managers for submission notice",
			"request_id", req.ID, "error", err)
		return
	}

	body := fmt.Sprintf("Request %s (%s) was submitted for review", req.ID, req.ClientName)
	for _, m := range managers {
		n.deliver(ctx, domain.NewNotification(m.ID, req.ID, domain.NotifySubmitted, body))
	}
}

// RequestApproved notifies the request's author of approval.
func (n *Notifier) RequestApproved(ctx context.Context, req *domain.Request) {
	body := fmt.Sprintf("Request %s was approved", req.ID)
	n.deliver(ctx, domain.NewNotification(req.OwnerID, req.ID, domain.NotifyApproved, body))
}

// RequestReturned notifies the author that the request came back for rework,
// carrying the reviewer's reason.
func (n *Notifier) RequestReturned(ctx context.Context, req *domain.Request, reason string) {
	body := fmt.Sprintf("Request %s was returned: %s", req.ID, domain.TruncateReason(reason))
	n.deliver(ctx, domain.NewNotification(req.OwnerID, req.ID, domain.NotifyReturned, body))
}

// RequestCancelled notifies the author of cancellation.
func (n *Notifier) RequestCancelled(ctx context.Context, req *domain.Request, reason string) {
	body := fmt.Sprintf("Request %s was cancelled", req.ID)
	if reason != "" {
		body = fmt.Sprintf("Request %s was cancelled: %s", req.ID, domain.TruncateReason(reason))
	}
	n.deliver(ctx, domain.NewNotification(req.OwnerID, req.ID, domain.NotifyCancelled, body))
}

// ContractCreated notifies the request's author that a contract now exists
// for their approved request.
func (n *Notifier) ContractCreated(ctx context.Context, req *domain.Request, contract *domain.Contract) {
	body := fmt.Sprintf("Contract %s (folio %s) was created from request %s",
		contract.ID, contract.Folio, req.ID)
	n.deliver(ctx, domain.NewNotification(req.OwnerID, req.ID, domain.NotifyContractBuilt, body))
}

func (n *Notifier) deliver(ctx context.Context, notification *domain.Notification) {
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		n.logger.Error("failed to deliver notification",
			"recipient_id", notification.RecipientID,
			"kind", notification.Kind,
			"error", err)
	}
}
