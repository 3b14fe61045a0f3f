// Package auth provides the per-request authorization context and the
// role/ownership predicates used by the request workflow and contract
// operations.
package auth

import (
	"context"

	"github.com/ventaro/deedflow/internal/core/domain"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context is the authenticated caller of the current request. It is resolved
// by the HTTP middleware and passed explicitly into every authorization
// check; nothing reads ambient globals.
type Context struct {
	// UserID is the id of the authenticated user.
	UserID string

	// Role is the user's system role.
	Role domain.Role

	// Authenticated indicates whether the request carries a valid identity.
	Authenticated bool
}

// =============================================================================
// Request Context Helpers
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext extracts the auth context. Returns a zero (unauthenticated)
// context when none was stored.
func FromContext(ctx context.Context) Context {
	if ac, ok := ctx.Value(authContextKey).(Context); ok {
		return ac
	}
	return Context{}
}
