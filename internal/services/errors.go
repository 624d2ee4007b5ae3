package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clashpoint/deltacoin/internal/models"
)

// Sentinel errors for the ledger domain. Callers match with errors.Is;
// the structured types below wrap these and add context.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidWallet          = errors.New("invalid wallet")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
	ErrItemNotFound           = errors.New("shop item not found")
	ErrItemNotActive          = errors.New("shop item not active")
	ErrHoldNotFound           = errors.New("hold not found")
	ErrHoldExpired            = errors.New("hold expired")
	ErrInvalidStateTransition = errors.New("invalid hold state transition")
	ErrInvalidTransaction     = errors.New("invalid transaction")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)

// InsufficientFundsError reports how far a debit or capture overshoots
// the balance it was checked against.
type InsufficientFundsError struct {
	OwnerID   string
	Available int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %d, requested %d (short %d)",
		e.Available, e.Requested, e.Requested-e.Available)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// IdempotencyConflictError is returned when a key is reused with a
// different wallet, amount or reason than the stored entry.
type IdempotencyConflictError struct {
	Key     string
	EntryID int64
}

func (e *IdempotencyConflictError) Error() string {
	if e.EntryID != 0 {
		return fmt.Sprintf("idempotency key %q already used by entry %d with different parameters", e.Key, e.EntryID)
	}
	return fmt.Sprintf("idempotency key %q already used with different parameters", e.Key)
}

func (e *IdempotencyConflictError) Unwrap() error {
	return ErrIdempotencyConflict
}

// StateTransitionError reports a hold operation applied in a state that
// does not admit it, e.g. releasing a captured hold.
type StateTransitionError struct {
	HoldID string
	From   models.HoldStatus
	Op     string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("hold %s: cannot %s from status %s", e.HoldID, e.Op, e.From)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// ErrorCode maps a domain error to its stable wire code. Unknown errors
// map to internal_error so handlers never leak driver details.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidWallet):
		return "invalid_wallet"
	case errors.Is(err, ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrItemNotActive):
		return "item_not_active"
	case errors.Is(err, ErrHoldNotFound):
		return "hold_not_found"
	case errors.Is(err, ErrHoldExpired):
		return "hold_expired"
	case errors.Is(err, ErrInvalidStateTransition):
		return "invalid_state_transition"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, ErrTemporarilyUnavailable):
		return "temporarily_unavailable"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps a domain error to the status its wire code is served with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidWallet), errors.Is(err, ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrIdempotencyConflict), errors.Is(err, ErrItemNotActive), errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrHoldNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrHoldExpired):
		return http.StatusGone
	case errors.Is(err, ErrTemporarilyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the error is the caller's fault, i.e.
// retrying the same request unchanged cannot succeed.
func IsClientError(err error) bool {
	code := ErrorCode(err)
	return code != "internal_error" && code != "temporarily_unavailable"
}
