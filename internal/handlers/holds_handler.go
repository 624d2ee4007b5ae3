package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clashpoint/deltacoin/internal/models"
	"github.com/clashpoint/deltacoin/internal/services"
)

type HoldsHandler struct {
	holds     *services.HoldService
	catalog   *services.CatalogService
	validator *services.ValidationHelper
}

func NewHoldsHandler(holds *services.HoldService, catalog *services.CatalogService) *HoldsHandler {
	return &HoldsHandler{
		holds:     holds,
		catalog:   catalog,
		validator: services.NewValidationHelper(),
	}
}

// AuthorizeHold places a hold for a shop item
// @Summary Authorize a spend hold
// @Description Earmark the quoted amount for a shop item against the owner's available balance without moving coins
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{owner_id=string,sku=string,amount=int64,idempotency_key=string,ttl_seconds=int} true "Hold request"
// @Success 201 {object} models.ReservationHold
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /holds [post]
func (h *HoldsHandler) AuthorizeHold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID        string          `json:"owner_id" validate:"required"`
		SKU            string          `json:"sku" validate:"required"`
		Amount         int64           `json:"amount" validate:"required,gt=0"`
		IdempotencyKey string          `json:"idempotency_key"`
		TTLSeconds     int             `json:"ttl_seconds" validate:"omitempty,min=1,max=86400"`
		Metadata       models.Metadata `json:"metadata"`
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

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	opts := services.HoldOptions{
		IdempotencyKey: req.IdempotencyKey,
		TTL:            time.Duration(req.TTLSeconds) * time.Second,
		Metadata:       req.Metadata,
	}
	hold, err := h.holds.AuthorizeSpend(r.Context(), req.OwnerID, req.SKU, req.Amount, opts)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"hold":    hold,
	})
}

// GetHold fetches one hold
// @Summary Get a hold
// @Description Fetch a reservation hold by ID
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param holdId path string true "Hold ID"
// @Success 200 {object} models.ReservationHold
// @Failure 404 {object} services.ErrorResponse
// @Router /holds/{holdId} [get]
func (h *HoldsHandler) GetHold(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")

	hold, err := h.holds.GetHold(r.Context(), holdID)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hold)
}

// CaptureHold settles an authorized hold
// @Summary Capture a hold
// @Description Write the purchase debit for an authorized hold on the owner's wallet and mark it captured
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param holdId path string true "Hold ID"
// @Param request body object{owner_id=string,note=string} true "Capture request"
// @Success 200 {object} services.CaptureResult
// @Failure 402 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 410 {object} services.ErrorResponse
// @Router /holds/{holdId}/capture [post]
func (h *HoldsHandler) CaptureHold(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")

	var req struct {
		OwnerID string `json:"owner_id" validate:"required"`
		Note    string `json:"note"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.holds.Capture(r.Context(), req.OwnerID, holdID, req.Note)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
	})
}

// ReleaseHold frees an authorized hold
// @Summary Release a hold
// @Description Free held funds on the owner's wallet without moving coins; safe to repeat
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param holdId path string true "Hold ID"
// @Param request body object{owner_id=string} true "Release request"
// @Success 200 {object} models.ReservationHold
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /holds/{holdId}/release [post]
func (h *HoldsHandler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdId")

	var req struct {
		OwnerID string `json:"owner_id" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	hold, err := h.holds.Release(r.Context(), req.OwnerID, holdID)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"hold":    hold,
	})
}

// RefundPurchase refunds part or all of a captured purchase
// @Summary Refund a purchase
// @Description Write a compensating credit against a captured purchase entry; cumulative refunds never exceed the captured amount
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{owner_id=string,entry_id=int64,amount=int64,note=string,idempotency_key=string} true "Refund request"
// @Success 200 {object} services.MutationResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /refunds [post]
func (h *HoldsHandler) RefundPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID        string `json:"owner_id" validate:"required"`
		EntryID        int64  `json:"entry_id" validate:"required,gt=0"`
		Amount         int64  `json:"amount" validate:"required,gt=0"`
		Note           string `json:"note"`
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

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	opts := services.EntryOptions{
		IdempotencyKey: req.IdempotencyKey,
		Note:           req.Note,
	}
	result, err := h.holds.Refund(r.Context(), req.OwnerID, req.EntryID, req.Amount, opts)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
	})
}

// ListItems lists purchasable shop items
// @Summary List shop items
// @Description List catalog items; inactive ones only when asked for
// @Tags shop
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include inactive items"
// @Success 200 {array} models.ShopItem
// @Router /shop/items [get]
func (h *HoldsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	items, err := h.catalog.ListItems(r.Context(), includeInactive)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"items": items,
		"count": len(items),
	})
}

// GetItem fetches one shop item
// @Summary Get a shop item
// @Description Fetch one catalog item by SKU
// @Tags shop
// @Produce json
// @Security BearerAuth
// @Param sku path string true "Item SKU"
// @Success 200 {object} models.ShopItem
// @Failure 404 {object} services.ErrorResponse
// @Router /shop/items/{sku} [get]
func (h *HoldsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	item, err := h.catalog.GetItem(r.Context(), sku)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}
