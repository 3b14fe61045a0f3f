package auth

import (
	"github.com/ventaro/deedflow/internal/core/domain"
)

// =============================================================================
// Request Authorization
// =============================================================================

// CanViewRequest checks if the user can view a request. The owner always
// can; managers can view every request.
func CanViewRequest(ctx Context, req domain.Request) bool {
	if !ctx.Authenticated {
		return false
	}
	return ctx.UserID == req.OwnerID || ctx.Role.IsManager()
}

// CanEditRequest checks if the user can edit a request's fields. The owner
// may edit while the request is in draft; managers may edit in any state
// except cancelled.
func CanEditRequest(ctx Context, req domain.Request) bool {
	if !ctx.Authenticated || req.State == domain.StateCancelled {
		return false
	}
	if ctx.Role.IsManager() {
		return true
	}
	return ctx.UserID == req.OwnerID && req.State == domain.StateDraft
}

// CanTransitionRequest checks if the user may drive the given state
// transition. Submission is author-only; every other transition is
// manager-only. Admin passes both checks.
func CanTransitionRequest(ctx Context, req domain.Request, to domain.RequestState) bool {
	if !ctx.Authenticated {
		return false
	}
	if ctx.Role == domain.RoleAdmin {
		return true
	}
	if req.State == domain.StateDraft && to == domain.StateSubmitted {
		return ctx.UserID == req.OwnerID
	}
	return ctx.Role.IsManager()
}

// CanCancelLinkedRequest checks the extra requirement for cancelling a
// request already compiled into a contract: an elevated role.
func CanCancelLinkedRequest(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsElevated()
}

// =============================================================================
// Contract Authorization
// =============================================================================

// CanManageContracts checks if the user can create or edit contracts.
func CanManageContracts(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsManager()
}

// CanCancelContract checks if the user can cancel a contract. Cancellation
// is destructive and requires an elevated role.
func CanCancelContract(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsElevated()
}

// CanArchiveClient checks if the user can archive a client record.
func CanArchiveClient(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsManager()
}
