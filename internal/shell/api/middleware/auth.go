// Package middleware provides HTTP middleware for the deedflow API.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ventaro/deedflow/internal/core/auth"
	"github.com/ventaro/deedflow/internal/core/domain"
)

// HeaderUserID carries the caller's user id, injected by the identity
// gateway in front of this service.
const HeaderUserID = "X-User-ID"

// =============================================================================
// User Resolver Interface
// =============================================================================

// UserResolver loads a user by id so the middleware can attach the user's
// role to the request context. The store implements this interface.
type UserResolver interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// =============================================================================
// Auth Configuration
// =============================================================================

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Resolver loads users by id. Required.
	Resolver UserResolver

	// DevUserID, when set, authenticates header-less requests as this user.
	// Development convenience only.
	DevUserID string

	// Logger for auth middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware resolves the X-User-ID header against the user table and
// stores the resulting auth context in the request context.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates a new auth middleware with the given config.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthMiddleware{config: cfg}
}

// Handler returns the middleware handler function. Requests without a
// resolvable identity proceed unauthenticated; RequireAuth rejects them at
// the protected routes.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			userID = m.config.DevUserID
		}

		ac := auth.Context{}
		if userID != "" {
			user, err := m.config.Resolver.GetUser(r.Context(), userID)
			if err != nil {
				m.config.Logger.Warn("failed to resolve user",
					"user_id", userID,
					"path", r.URL.Path,
					"error", err,
				)
			} else {
				ac = auth.Context{
					UserID:        user.ID,
					Role:          user.Role,
					Authenticated: true,
				}
			}
		}

		r = r.WithContext(auth.WithContext(r.Context(), ac))
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth rejects unauthenticated requests. Must be used after
// AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := auth.FromContext(r.Context())
			if !ac.Authenticated {
				logger.Warn("unauthenticated request rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				writeJSONError(w, http.StatusUnauthorized, "authentication required", "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSONError writes a JSON error response matching the API's error shape.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
