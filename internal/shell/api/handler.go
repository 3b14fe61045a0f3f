// Package api provides HTTP handlers for the deedflow API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/shell/api/middleware"
	"github.com/ventaro/deedflow/internal/shell/notify"
	"github.com/ventaro/deedflow/internal/shell/render"
	"github.com/ventaro/deedflow/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store     store.Store
	notifier  *notify.Notifier
	templates *render.Library
	logger    *slog.Logger
	devUserID string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, templates *render.Library, l *slog.Logger, devUserID string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:     s,
		notifier:  notify.NewNotifier(s, l),
		templates: templates,
		logger:    l,
		devUserID: devUserID,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	authMW := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Resolver:  h.store,
		DevUserID: h.devUserID,
		Logger:    h.logger,
	})
	requireAuth := middleware.RequireAuth(h.logger)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW.Handler)
		r.Use(requireAuth)

		// Purchase request workflow
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.handleCreateRequest)
			r.Get("/", h.handleListRequests)
			r.Get("/{id}", h.handleGetRequest)
			r.Put("/{id}", h.handleUpdateRequest)
			r.Post("/{id}/submit", h.handleSubmitRequest)
			r.Post("/{id}/review", h.handleReviewRequest)
			r.Post("/{id}/approve", h.handleApproveRequest)
			r.Post("/{id}/return", h.handleReturnRequest)
			r.Post("/{id}/cancel", h.handleCancelRequest)
		})

		// Contracts
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", h.handleCreateContract)
			r.Get("/", h.handleListContracts)
			r.Get("/{id}", h.handleGetContract)
			r.Put("/{id}", h.handleUpdateContract)
			r.Post("/{id}/cancel", h.handleCancelContract)
			r.Post("/{id}/document", h.handleGenerateDocument)
		})

		// Clients
		r.Post("/clients/{id}/archive", h.handleArchiveClient)

		// Notifications
		r.Get("/notifications", h.handleListNotifications)
		r.Post("/notifications/{id}/read", h.handleMarkNotificationRead)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func listOptionsFromQuery(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			opts.Offset = o
		}
	}
	return opts
}

func requestToResponse(req *domain.Request) RequestResponse {
	return RequestResponse{
		ID:         req.ID,
		OwnerID:    req.OwnerID,
		ContractID: req.ContractID,
		State:      string(req.State),
		Fields: map[string]string{
			"client_name":         req.ClientName,
			"birth_date":          req.BirthDate,
			"birth_place":         req.BirthPlace,
			"nationality":         req.Nationality,
			"marital_status":      req.MaritalStatus,
			"occupation":          req.Occupation,
			"gender":              req.Gender,
			"phone":               req.Phone,
			"email":               req.Email,
			"address":             req.Address,
			"identification_type": req.IdentificationType,
			"national_id_number":  req.NationalIDNumber,
			"id_number":           req.IDNumber,
			"tax_id":              req.TaxID,
			"development_id":      req.DevelopmentID,
			"price":               req.Price,
			"down_payment":        req.DownPayment,
			"monthly_payment":     req.MonthlyPayment,
			"term_months":         strconv.Itoa(req.TermMonths),
			"contract_date":       req.ContractDate,
		},
		Executor: ExecutorResponse{
			Active:       req.Executor.Active,
			Name:         req.Executor.Name,
			Age:          req.Executor.Age,
			Relationship: req.Executor.Relationship,
			Phone:        req.Executor.Phone,
		},
		AnnualPayment: AnnualResponse{
			Enabled:   req.AnnualPayment.Enabled,
			Amount:    req.AnnualPayment.Amount,
			Date:      req.AnnualPayment.Date,
			TermYears: req.AnnualPayment.TermYears,
		},
		StateActor:     req.StateActor,
		StateReason:    req.StateReason,
		StateChangedAt: req.StateChangedAt,
		CreatedAt:      req.CreatedAt,
		UpdatedAt:      req.UpdatedAt,
	}
}

func contractToResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:            c.ID,
		Folio:         c.Folio,
		ClientID:      c.ClientID,
		DevelopmentID: c.DevelopmentID,
		RequestID:     c.RequestID,
		Status:        c.Status.String(),
		Aggregate:     c.Aggregate,
		CancelReason:  c.CancelReason,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
