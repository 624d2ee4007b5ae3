package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clashpoint/deltacoin/internal/audit"
	"github.com/clashpoint/deltacoin/internal/models"
	"github.com/clashpoint/deltacoin/internal/services"
)

type AdminHandler struct {
	ledger         *services.LedgerService
	reconciliation *services.ReconciliationService
	catalog        *services.CatalogService
	awards         *services.AwardConsumer
	audit          *audit.AuditLogger
	validator      *services.ValidationHelper
}

func NewAdminHandler(ledger *services.LedgerService, reconciliation *services.ReconciliationService,
	catalog *services.CatalogService, awards *services.AwardConsumer) *AdminHandler {
	return &AdminHandler{
		ledger:         ledger,
		reconciliation: reconciliation,
		catalog:        catalog,
		awards:         awards,
		audit:          audit.NewAuditLogger(),
		validator:      services.NewValidationHelper(),
	}
}

func actorFrom(r *http.Request) string {
	if actor, ok := r.Context().Value("userID").(string); ok && actor != "" {
		return actor
	}
	return "unknown"
}

// ManualAdjust writes a signed correction entry
// @Summary Manually adjust a wallet
// @Description Write a signed correction entry; the note documenting the cause is mandatory
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{owner_id=string,amount=int64,note=string,idempotency_key=string} true "Adjustment request"
// @Success 200 {object} services.MutationResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/adjustments [post]
func (h *AdminHandler) ManualAdjust(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var req struct {
		OwnerID        string `json:"owner_id" validate:"required"`
		Amount         int64  `json:"amount" validate:"required"`
		Note           string `json:"note" validate:"required"`
		IdempotencyKey string `json:"idempotency_key"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	opts := services.EntryOptions{
		IdempotencyKey: req.IdempotencyKey,
		Note:           req.Note,
		Metadata:       models.Metadata{"actor": actor},
	}
	result, err := h.ledger.ManualAdjust(r.Context(), req.OwnerID, req.Amount, opts)
	if err != nil {
		h.audit.LogError(actor, "MANUAL_ADJUSTMENT", err)
		services.SendDomainError(w, err)
		return
	}

	h.audit.LogAdjustment(actor, req.OwnerID, req.Amount, req.Note, result.EntryID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
	})
}

// SetOverdraft toggles a wallet's overdraft flag
// @Summary Toggle wallet overdraft
// @Description Allow or forbid the wallet balance to go negative; the wallet is created if it does not exist yet
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Param request body object{allow_overdraft=bool} true "Overdraft flag"
// @Success 200 {object} models.Wallet
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/wallets/{ownerId}/overdraft [put]
func (h *AdminHandler) SetOverdraft(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	ownerID := chi.URLParam(r, "ownerId")

	var req struct {
		AllowOverdraft bool `json:"allow_overdraft"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	wallet, err := h.ledger.SetOverdraft(r.Context(), ownerID, req.AllowOverdraft)
	if err != nil {
		h.audit.LogError(actor, "OVERDRAFT_CHANGE", err)
		services.SendDomainError(w, err)
		return
	}

	h.audit.LogOverdraftChange(actor, ownerID, req.AllowOverdraft)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"wallet":  wallet,
	})
}

// ReconcileWallet recalculates one wallet
// @Summary Reconcile one wallet
// @Description Recompute the wallet balance from its ledger entries and repair the cache if it drifted
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Success 200 {object} services.WalletReconciliation
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/reconciliation/wallets/{ownerId} [post]
func (h *AdminHandler) ReconcileWallet(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	ownerID := chi.URLParam(r, "ownerId")

	rec, err := h.reconciliation.RecalcAndSave(r.Context(), ownerID)
	if err != nil {
		h.audit.LogError(actor, "RECONCILIATION", err)
		services.SendDomainError(w, err)
		return
	}

	drifted := 0
	if rec.Outcome != services.OutcomeClean {
		drifted = 1
	}
	h.audit.LogReconciliation(actor, false, 1, drifted, rec.Drift)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// SweepReconciliation reconciles every wallet
// @Summary Sweep all wallets
// @Description Compare every wallet against its ledger entries; with dry_run the sweep only reports drift
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Report drift without correcting"
// @Success 200 {object} services.SweepReport
// @Failure 500 {object} services.ErrorResponse
// @Router /admin/reconciliation/sweep [post]
func (h *AdminHandler) SweepReconciliation(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	dryRun := r.URL.Query().Get("dry_run") == "true"

	report, err := h.reconciliation.SweepAll(r.Context(), dryRun)
	if err != nil {
		h.audit.LogError(actor, "RECONCILIATION", err)
		services.SendDomainError(w, err)
		return
	}

	h.audit.LogReconciliation(actor, dryRun, report.CheckedWallets, report.DriftWallets, report.TotalDrift)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// UpsertItem creates or replaces a shop item
// @Summary Upsert a shop item
// @Description Create or replace a catalog item; price changes do not touch existing holds
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sku path string true "Item SKU"
// @Param request body object{name=string,price=int64,active=bool} true "Item definition"
// @Success 200 {object} models.ShopItem
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/shop/items/{sku} [put]
func (h *AdminHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	sku := chi.URLParam(r, "sku")

	var req struct {
		Name   string `json:"name" validate:"required"`
		Price  int64  `json:"price" validate:"required,gt=0"`
		Active bool   `json:"active"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	item := &models.ShopItem{SKU: sku, Name: req.Name, Price: req.Price, Active: req.Active}
	saved, err := h.catalog.UpsertItem(r.Context(), item)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	h.audit.LogCatalogChange(actor, sku, "upsert")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

// SetItemActive toggles a shop item
// @Summary Toggle item availability
// @Description Activate or deactivate a catalog item without touching its price
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sku path string true "Item SKU"
// @Param request body object{active=bool} true "Active flag"
// @Success 200 {object} map[string]any
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/shop/items/{sku}/active [patch]
func (h *AdminHandler) SetItemActive(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	sku := chi.URLParam(r, "sku")

	var req struct {
		Active bool `json:"active"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.catalog.SetItemActive(r.Context(), sku, req.Active); err != nil {
		services.SendDomainError(w, err)
		return
	}

	change := "deactivate"
	if req.Active {
		change = "activate"
	}
	h.audit.LogCatalogChange(actor, sku, change)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"sku":     sku,
		"active":  req.Active,
	})
}

// EnqueueAward publishes an award event
// @Summary Enqueue an award
// @Description Publish a coin award onto the queue; used for backfills and manual grants
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AwardEvent true "Award event"
// @Success 202 {object} map[string]any
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/awards [post]
func (h *AdminHandler) EnqueueAward(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var event services.AwardEvent

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&event); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if event.EventID == "" || event.OwnerID == "" || event.Amount <= 0 {
		services.SendErrorResponse(w, "event_id, owner_id and a positive amount are required", http.StatusBadRequest, nil)
		return
	}

	if err := h.awards.Enqueue(r.Context(), event); err != nil {
		services.SendDomainError(w, err)
		return
	}

	h.audit.LogAwardEnqueue(actor, event.EventID, event.OwnerID, event.Amount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"event_id": event.EventID,
	})
}

// AwardQueueStats reports the queue backlog
// @Summary Award queue stats
// @Description Report the number of award events waiting in the queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /admin/awards/queue [get]
func (h *AdminHandler) AwardQueueStats(w http.ResponseWriter, r *http.Request) {
	length := h.awards.QueueLength(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_length": length,
	})
}
