package models

import (
	"time"
)

// Wallet holds the cached DeltaCoin balance for one account holder.
// The owner reference is opaque: the ledger never resolves it to a user
// record, it only keys wallets by it. Balance is denormalized from the
// ledger entries and repaired by reconciliation if it ever drifts.
type Wallet struct {
	ID                int64     `json:"id" db:"id"`
	OwnerID           string    `json:"owner_id" db:"owner_id"`
	Balance           int64     `json:"balance" db:"balance"` // smallest unit
	AllowOverdraft    bool      `json:"allow_overdraft" db:"allow_overdraft"`
	PendingWithdrawal int64     `json:"pending_withdrawal" db:"pending_withdrawal"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// BalanceSnapshot is the balance-enquiry response shape. Available is the
// cached balance minus the sum of currently authorized holds.
type BalanceSnapshot struct {
	OwnerID   string `json:"owner_id"`
	Balance   int64  `json:"balance"`
	Available int64  `json:"available_balance"`
}
