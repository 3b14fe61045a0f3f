package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ventaro/deedflow/internal/core/auth"
	"github.com/ventaro/deedflow/internal/core/document"
	"github.com/ventaro/deedflow/internal/core/domain"
	"github.com/ventaro/deedflow/internal/core/placeholder"
	"github.com/ventaro/deedflow/internal/shell/render"
	"github.com/ventaro/deedflow/internal/shell/store"
)

// defaultTemplate is the template used when the document request names none.
const defaultTemplate = "contract.docx"

// =============================================================================
// Contract Handlers
// =============================================================================

func (h *Handler) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !auth.CanManageContracts(ac) {
		h.writeError(w, http.StatusForbidden, "only managers may create contracts", "forbidden")
		return
	}

	var body SaveContractBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if body.Folio == "" || body.ClientID == "" || body.DevelopmentID == "" {
		h.writeError(w, http.StatusBadRequest, "folio, client_id and development_id are required", "validation_error")
		return
	}

	client, err := h.store.GetClient(r.Context(), body.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "client not found", "client_not_found")
			return
		}
		h.logger.Error("failed to get client", "client_id", body.ClientID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get client", "internal_error")
		return
	}

	dev, err := h.store.GetDevelopment(r.Context(), body.DevelopmentID)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "development not found", "development_not_found")
			return
		}
		h.logger.Error("failed to get development", "development_id", body.DevelopmentID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get development", "internal_error")
		return
	}

	var req *domain.Request
	if body.RequestID != "" {
		req, err = h.store.GetRequest(r.Context(), body.RequestID)
		if err != nil {
			if store.IsNotFound(err) {
				h.writeError(w, http.StatusNotFound, "request not found", "request_not_found")
				return
			}
			h.logger.Error("failed to get request", "request_id", body.RequestID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to get request", "internal_error")
			return
		}
		if req.Linked() {
			h.writeError(w, http.StatusConflict, "request is already linked to a contract", "request_already_linked")
			return
		}
		if req.State != domain.StateApproved {
			h.writeError(w, http.StatusConflict, "only approved requests can be compiled into a contract", "request_not_approved")
			return
		}
	}

	contract := domain.NewContract(body.Folio, client.ID, dev.ID, body.RequestID)
	contract.Aggregate = document.BuildOrMerge(nil, body.Fields, client, dev, req)
	contract.Aggregate.Contract.Folio = contract.Folio

	// The folio pre-check and the insert share one transaction; the UNIQUE
	// index catches the remaining race.
	err = h.store.WithTx(r.Context(), func(tx store.Store) error {
		inUse, err := tx.FolioInUse(r.Context(), contract.Folio, "")
		if err != nil {
			return err
		}
		if inUse {
			return store.ErrDuplicateFolio
		}
		if err := tx.CreateContract(r.Context(), contract); err != nil {
			return err
		}
		if req != nil {
			req.ContractID = contract.ID
			req.UpdatedAt = time.Now().UTC()
			return tx.UpdateRequest(r.Context(), req)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFolio) {
			h.writeError(w, http.StatusConflict, "a contract with this folio already exists", "duplicate_folio")
			return
		}
		h.logger.Error("failed to create contract", "folio", contract.Folio, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create contract", "internal_error")
		return
	}

	if req != nil {
		h.notifier.ContractCreated(r.Context(), req, contract)
	}

	h.writeJSON(w, http.StatusCreated, contractToResponse(contract))
}

func (h *Handler) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contract, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, contractToResponse(contract))
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r)

	contracts, err := h.store.ListContracts(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list contracts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list contracts", "internal_error")
		return
	}

	resp := ListContractsResponse{
		Contracts: make([]ContractResponse, 0, len(contracts)),
		Total:     len(contracts),
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	}
	for i := range contracts {
		resp.Contracts = append(resp.Contracts, contractToResponse(&contracts[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !auth.CanManageContracts(ac) {
		h.writeError(w, http.StatusForbidden, "only managers may edit contracts", "forbidden")
		return
	}

	contract, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	if contract.Status == domain.ContractCancelled {
		h.writeError(w, http.StatusConflict, "cancelled contracts cannot be edited", "contract_cancelled")
		return
	}

	var body SaveContractBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	if body.Folio != "" {
		contract.Folio = domain.NormalizeFolio(body.Folio)
	}
	contract.Aggregate = document.BuildOrMerge(&contract.Aggregate, body.Fields, nil, nil, nil)
	contract.Aggregate.Contract.Folio = contract.Folio
	contract.UpdatedAt = time.Now().UTC()

	err := h.store.WithTx(r.Context(), func(tx store.Store) error {
		inUse, err := tx.FolioInUse(r.Context(), contract.Folio, contract.ID)
		if err != nil {
			return err
		}
		if inUse {
			return store.ErrDuplicateFolio
		}
		return tx.UpdateContract(r.Context(), contract)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFolio) {
			h.writeError(w, http.StatusConflict, "a contract with this folio already exists", "duplicate_folio")
			return
		}
		h.logger.Error("failed to update contract", "contract_id", contract.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update contract", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, contractToResponse(contract))
}

func (h *Handler) handleCancelContract(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !auth.CanCancelContract(ac) {
		h.writeError(w, http.StatusForbidden, "cancelling a contract requires an elevated role", "forbidden")
		return
	}

	contract, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	var body CancelContractBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	reason, err := domain.ValidateCancelReason(body.Reason)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "reason_too_short")
		return
	}

	if !h.verifyPassword(w, r, ac.UserID, body.Password) {
		return
	}

	// The cancellation order is enforced against a fresh read of the linked
	// request, not whatever state the caller last saw.
	if contract.RequestID != "" {
		linked, err := h.store.GetRequest(r.Context(), contract.RequestID)
		if err != nil && !store.IsNotFound(err) {
			h.logger.Error("failed to get linked request", "request_id", contract.RequestID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to verify linked request", "internal_error")
			return
		}
		if err == nil {
			if err := document.ValidateCancellationOrder(linked); err != nil {
				h.writeError(w, http.StatusConflict, err.Error(), "request_not_cancelled")
				return
			}
		}
	}

	if err := contract.Cancel(reason); err != nil {
		h.writeError(w, http.StatusConflict, err.Error(), "contract_cancelled")
		return
	}

	if err := h.store.UpdateContract(r.Context(), contract); err != nil {
		h.logger.Error("failed to cancel contract", "contract_id", contract.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to cancel contract", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, contractToResponse(contract))
}

// =============================================================================
// Document Generation
// =============================================================================

func (h *Handler) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	contract, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	var body GenerateDocumentBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
			return
		}
	}
	templateName := body.Template
	if templateName == "" {
		templateName = defaultTemplate
	}

	values := placeholder.Flatten(&contract.Aggregate)

	path, err := h.templates.RenderToFile(templateName, contract.ID+".docx", values)
	if err != nil {
		if errors.Is(err, render.ErrTemplateMissing) {
			h.writeError(w, http.StatusConflict, "document template is not installed", "template_missing")
			return
		}
		h.logger.Error("failed to render document",
			"contract_id", contract.ID, "template", templateName, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to render document", "render_error")
		return
	}

	h.writeJSON(w, http.StatusOK, DocumentResponse{
		Status:   "generated",
		DocxPath: path,
	})
}

// =============================================================================
// Client Handlers
// =============================================================================

func (h *Handler) handleArchiveClient(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !auth.CanArchiveClient(ac) {
		h.writeError(w, http.StatusForbidden, "only managers may archive clients", "forbidden")
		return
	}

	id := chi.URLParam(r, "id")
	client, err := h.store.GetClient(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "client not found", "client_not_found")
			return
		}
		h.logger.Error("failed to get client", "client_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get client", "internal_error")
		return
	}

	count, err := h.store.CountActiveContractsByClient(r.Context(), client.ID)
	if err != nil {
		h.logger.Error("failed to count active contracts", "client_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to count active contracts", "internal_error")
		return
	}
	if count > 0 {
		h.writeError(w, http.StatusConflict,
			"client has "+strconv.Itoa(count)+" active contract(s)", "active_contracts")
		return
	}

	client.Archived = true
	client.UpdatedAt = time.Now().UTC()
	if err := h.store.UpdateClient(r.Context(), client); err != nil {
		h.logger.Error("failed to archive client", "client_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to archive client", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "archived", "id": client.ID})
}

// =============================================================================
// Notification Handlers
// =============================================================================

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	opts := listOptionsFromQuery(r)

	notifications, err := h.store.ListNotificationsByRecipient(r.Context(), ac.UserID, opts)
	if err != nil {
		h.logger.Error("failed to list notifications", "user_id", ac.UserID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list notifications", "internal_error")
		return
	}

	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, NotificationResponse{
			ID:        n.ID,
			RequestID: n.RequestID,
			Kind:      string(n.Kind),
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.MarkNotificationRead(r.Context(), id); err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "notification not found", "notification_not_found")
			return
		}
		h.logger.Error("failed to mark notification read", "notification_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to mark notification read", "internal_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Shared Contract Helpers
// =============================================================================

func (h *Handler) loadContract(w http.ResponseWriter, r *http.Request) (*domain.Contract, bool) {
	id := chi.URLParam(r, "id")

	contract, err := h.store.GetContract(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "contract not found", "contract_not_found")
			return nil, false
		}
		h.logger.Error("failed to get contract", "contract_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get contract", "internal_error")
		return nil, false
	}
	return contract, true
}
