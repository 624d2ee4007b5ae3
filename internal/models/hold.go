package models

import (
	"time"
)

// HoldStatus is the lifecycle state of a reservation hold.
type HoldStatus string

const (
	HoldStatusAuthorized HoldStatus = "authorized"
	HoldStatusCaptured   HoldStatus = "captured"
	HoldStatusReleased   HoldStatus = "released"
	HoldStatusExpired    HoldStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
// Only authorized holds can still be captured, released or expired.
func (s HoldStatus) Terminal() bool {
	return s != HoldStatusAuthorized
}

// ReservationHold earmarks funds for a pending shop purchase without
// moving them. No ledger entry exists until the hold is captured; the
// held amount only reduces the wallet's available balance.
type ReservationHold struct {
	ID             string     `json:"id" db:"id"`
	WalletID       int64      `json:"wallet_id" db:"wallet_id"`
	SKU            string     `json:"sku" db:"sku"`
	Amount         int64      `json:"amount" db:"amount"` // smallest unit, always positive
	Status         HoldStatus `json:"status" db:"status"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	CaptureEntryID int64      `json:"capture_entry_id,omitempty" db:"capture_entry_id"`
	Metadata       Metadata   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ExpiredBy reports whether the hold's deadline has passed at now.
func (h *ReservationHold) ExpiredBy(now time.Time) bool {
	return now.After(h.ExpiresAt)
}
