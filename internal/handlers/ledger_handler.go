package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clashpoint/deltacoin/internal/models"
	"github.com/clashpoint/deltacoin/internal/services"
)

type LedgerHandler struct {
	ledger    *services.LedgerService
	holds     *services.HoldService
	export    *services.ExportService
	validator *services.ValidationHelper
}

func NewLedgerHandler(ledger *services.LedgerService, holds *services.HoldService, export *services.ExportService) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		holds:     holds,
		export:    export,
		validator: services.NewValidationHelper(),
	}
}

type mutationRequest struct {
	Amount         int64           `json:"amount" validate:"required,gt=0"`
	Reason         string          `json:"reason" validate:"required"`
	Note           string          `json:"note"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       models.Metadata `json:"metadata"`
	TournamentID   string          `json:"tournament_id"`
	RegistrationID string          `json:"registration_id"`
	MatchID        string          `json:"match_id"`
}

func (req *mutationRequest) entryOptions() services.EntryOptions {
	return services.EntryOptions{
		IdempotencyKey: req.IdempotencyKey,
		Note:           req.Note,
		Metadata:       req.Metadata,
		Links: models.EntryLinks{
			TournamentID:   req.TournamentID,
			RegistrationID: req.RegistrationID,
			MatchID:        req.MatchID,
		},
	}
}

// CreditWallet credits coins to a wallet
// @Summary Credit a wallet
// @Description Add coins to the owner's wallet, creating the wallet on first touch
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Param request body mutationRequest true "Credit request"
// @Success 200 {object} services.MutationResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /wallets/{ownerId}/credit [post]
func (h *LedgerHandler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	req, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.Credit(r.Context(), ownerID, req.Amount, models.Reason(req.Reason), req.entryOptions())
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

// DebitWallet debits coins from a wallet
// @Summary Debit a wallet
// @Description Remove coins from the owner's wallet; fails when funds are insufficient
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Param request body mutationRequest true "Debit request"
// @Success 200 {object} services.MutationResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /wallets/{ownerId}/debit [post]
func (h *LedgerHandler) DebitWallet(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	req, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.Debit(r.Context(), ownerID, req.Amount, models.Reason(req.Reason), req.entryOptions())
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

// TransferCoins moves coins between two wallets
// @Summary Transfer between wallets
// @Description Atomically debit one wallet and credit another
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{from_owner=string,to_owner=string,amount=int64,reason=string} true "Transfer request"
// @Success 200 {object} services.TransferResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *LedgerHandler) TransferCoins(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromOwner      string          `json:"from_owner" validate:"required"`
		ToOwner        string          `json:"to_owner" validate:"required"`
		Amount         int64           `json:"amount" validate:"required,gt=0"`
		Reason         string          `json:"reason" validate:"required"`
		Note           string          `json:"note"`
		IdempotencyKey string          `json:"idempotency_key"`
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

	opts := services.EntryOptions{
		IdempotencyKey: req.IdempotencyKey,
		Note:           req.Note,
		Metadata:       req.Metadata,
	}
	result, err := h.ledger.Transfer(r.Context(), req.FromOwner, req.ToOwner, req.Amount, models.Reason(req.Reason), opts)
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

// GetBalance returns the cached and available balance
// @Summary Get wallet balance
// @Description Get the cached balance and the balance available once authorized holds are subtracted
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Success 200 {object} models.BalanceSnapshot
// @Failure 400 {object} services.ErrorResponse
// @Router /wallets/{ownerId}/balance [get]
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	snapshot, err := h.holds.AvailableBalance(r.Context(), ownerID)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// GetHistory lists a wallet's ledger entries
// @Summary Get transaction history
// @Description List the owner's ledger entries newest first, optionally filtered by reason and time range
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Param reason query string false "Filter by reason"
// @Param type query string false "Filter by entry type (credit or debit)"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param order query string false "Sort order (asc or desc, default desc)"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.HistoryPage
// @Failure 400 {object} services.ErrorResponse
// @Router /wallets/{ownerId}/entries [get]
func (h *LedgerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	filter, ok := h.parseHistoryFilter(w, r)
	if !ok {
		return
	}

	page, err := h.ledger.GetTransactionHistory(r.Context(), ownerID, filter)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// ExportHistory downloads a wallet's entries as CSV
// @Summary Export transaction history
// @Description Download the owner's ledger entries as CSV, oldest first. The file contains no owner identity fields.
// @Tags ledger
// @Produce text/csv
// @Security BearerAuth
// @Param ownerId path string true "Wallet owner ID"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Success 200 {string} string "CSV data"
// @Failure 400 {object} services.ErrorResponse
// @Router /wallets/{ownerId}/export [get]
func (h *LedgerHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	since, ok := h.parseTimeParam(w, r, "since")
	if !ok {
		return
	}
	until, ok := h.parseTimeParam(w, r, "until")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=deltacoin-%s-%s.csv", ownerID, time.Now().UTC().Format("20060102")))

	if err := h.export.ExportCSV(r.Context(), ownerID, since, until, w); err != nil {
		// Headers may already be out; nothing sane to send but a log line.
		services.SendDomainError(w, err)
		return
	}
}

func (h *LedgerHandler) decodeMutation(w http.ResponseWriter, r *http.Request) (*mutationRequest, bool) {
	var req mutationRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return nil, false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return nil, false
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return nil, false
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	return &req, true
}

func (h *LedgerHandler) parseHistoryFilter(w http.ResponseWriter, r *http.Request) (services.HistoryFilter, bool) {
	var filter services.HistoryFilter

	filter.Reason = models.Reason(r.URL.Query().Get("reason"))
	filter.EntryType = r.URL.Query().Get("type")
	filter.Order = r.URL.Query().Get("order")

	since, ok := h.parseTimeParam(w, r, "since")
	if !ok {
		return filter, false
	}
	until, ok := h.parseTimeParam(w, r, "until")
	if !ok {
		return filter, false
	}
	filter.Since, filter.Until = since, until

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil {
			services.SendErrorResponse(w, "Invalid limit", http.StatusBadRequest, nil)
			return filter, false
		}
		filter.Limit = l
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil {
			services.SendErrorResponse(w, "Invalid offset", http.StatusBadRequest, nil)
			return filter, false
		}
		filter.Offset = o
	}

	return filter, true
}

func (h *LedgerHandler) parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, true
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		services.SendErrorResponse(w, fmt.Sprintf("Invalid %s, expected RFC3339", name), http.StatusBadRequest, nil)
		return time.Time{}, false
	}
	return t, true
}
