package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventaro/deedflow/internal/core/auth"
	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/validation"
	"github.com/ventaro/deedflow/internal/shell/store"
)

// =============================================================================
// Request CRUD Handlers
// =============================================================================

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var body SaveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	req := domain.NewRequest(ac.UserID)
	validation.ApplyForm(req, body.Fields)

	if err := h.store.CreateRequest(r.Context(), req); err != nil {
		h.logger.Error("failed to create request", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create request", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusCreated, requestToResponse(req))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanViewRequest(ac, *req) {
		h.writeError(w, http.StatusForbidden, "not allowed to view this request", "forbidden")
		return
	}

	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	opts := listOptionsFromQuery(r)

	var (
		requests []domain.Request
		err      error
	)
	if ac.Role.IsManager() {
		requests, err = h.store.ListRequests(r.Context(), opts)
	} else {
		requests, err = h.store.ListRequestsByOwner(r.Context(), ac.UserID, opts)
	}
	if err != nil {
		h.logger.Error("failed to list requests", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list requests", "internal_error")
		return
	}

	resp := ListRequestsResponse{
		Requests: make([]RequestResponse, 0, len(requests)),
		Total:    len(requests),
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}
	for i := range requests {
		resp.Requests = append(resp.Requests, requestToResponse(&requests[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanEditRequest(ac, *req) {
		h.writeError(w, http.StatusForbidden, "not allowed to edit this request", "forbidden")
		return
	}

	var body SaveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	validation.ApplyForm(req, body.Fields)
	req.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateRequest(r.Context(), req); err != nil {
		h.logger.Error("failed to update request", "request_id", req.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update request", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

// =============================================================================
// Workflow Handlers
// =============================================================================

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanTransitionRequest(ac, *req, domain.StateSubmitted) {
		h.writeError(w, http.StatusForbidden, "only the author may submit this request", "forbidden")
		return
	}

	// Submission is blocked until every required field is filled. Drafts can
	// be saved with gaps; submission cannot.
	if missing := validation.MissingFields(req); len(missing) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, MissingFieldsResponse{
			Error:         "required fields are missing",
			Code:          "pending_required_fields",
			MissingFields: missing,
		})
		return
	}

	validation.ApplySentinels(req)

	if err := h.transitionRequest(w, r, req, domain.StateSubmitted, ac.UserID, ""); err != nil {
		return
	}

	h.notifier.RequestSubmitted(r.Context(), req)
	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (h *Handler) handleReviewRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanTransitionRequest(ac, *req, domain.StateInReview) {
		h.writeError(w, http.StatusForbidden, "only managers may review requests", "forbidden")
		return
	}

	if err := h.transitionRequest(w, r, req, domain.StateInReview, ac.UserID, ""); err != nil {
		return
	}

	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanTransitionRequest(ac, *req, domain.StateApproved) {
		h.writeError(w, http.StatusForbidden, "only managers may approve requests", "forbidden")
		return
	}

	if err := h.transitionRequest(w, r, req, domain.StateApproved, ac.UserID, ""); err != nil {
		return
	}

	h.notifier.RequestApproved(r.Context(), req)
	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (h *Handler) handleReturnRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanTransitionRequest(ac, *req, domain.StateDraft) {
		h.writeError(w, http.StatusForbidden, "only managers may return requests", "forbidden")
		return
	}

	var body TransitionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if body.Reason == "" {
		h.writeError(w, http.StatusBadRequest, "a reason is required to return a request", "reason_required")
		return
	}

	if err := h.transitionRequest(w, r, req, domain.StateDraft, ac.UserID, body.Reason); err != nil {
		return
	}

	h.notifier.RequestReturned(r.Context(), req, body.Reason)
	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !auth.CanTransitionRequest(ac, *req, domain.StateCancelled) {
		h.writeError(w, http.StatusForbidden, "only managers may cancel requests", "forbidden")
		return
	}

	var body CancelRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	// A request already compiled into a contract is protected: cancelling it
	// requires an elevated role, a re-entered password, and a real reason.
	if req.Linked() {
		if !auth.CanCancelLinkedRequest(ac) {
			h.writeError(w, http.StatusForbidden, "cancelling a linked request requires an elevated role", "forbidden")
			return
		}
		reason, err := domain.ValidateCancelReason(body.Reason)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "reason_too_short")
			return
		}
		body.Reason = reason
		if !h.verifyPassword(w, r, ac.UserID, body.Password) {
			return
		}
	}

	if err := h.transitionRequest(w, r, req, domain.StateCancelled, ac.UserID, body.Reason); err != nil {
		return
	}

	h.notifier.RequestCancelled(r.Context(), req, body.Reason)
	h.writeJSON(w, http.StatusOK, requestToResponse(req))
}

// =============================================================================
// Shared Workflow Helpers
// =============================================================================

// loadRequest fetches the request named in the URL, writing the error
// response itself when the lookup fails.
func (h *Handler) loadRequest(w http.ResponseWriter, r *http.Request) (*domain.Request, bool) {
	id := chi.URLParam(r, "id")

	req, err := h.store.GetRequest(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "request not found", "request_not_found")
			return nil, false
		}
		h.logger.Error("failed to get request", "request_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get request", "internal_error")
		return nil, false
	}
	return req, true
}

// transitionRequest applies and persists a state transition, writing the
// error response when either step fails.
func (h *Handler) transitionRequest(w http.ResponseWriter, r *http.Request, req *domain.Request, to domain.RequestState, actorID, reason string) error {
	if err := req.Transition(to, actorID, reason); err != nil {
		h.writeError(w, http.StatusConflict, err.Error(), "invalid_transition")
		return err
	}
	if err := h.store.UpdateRequest(r.Context(), req); err != nil {
		h.logger.Error("failed to persist transition",
			"request_id", req.ID, "to", to, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update request", "internal_error")
		return err
	}
	return nil
}

// verifyPassword re-checks the caller's password for destructive operations.
func (h *Handler) verifyPassword(w http.ResponseWriter, r *http.Request, userID, password string) bool {
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load user for password check", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to verify password", "internal_error")
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.writeError(w, http.StatusForbidden, "password verification failed", "invalid_password")
		return false
	}
	return true
}
