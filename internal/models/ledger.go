package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Reason classifies why a ledger entry exists. Values are part of the
// stored data contract: new reasons are append-only, existing ones are
// never renamed.
type Reason string

const (
	ReasonParticipationAward Reason = "participation-award"
	ReasonPlacementAward     Reason = "placement-award"
	ReasonEntryFeeDebit      Reason = "entry-fee-debit"
	ReasonRefund             Reason = "refund"
	ReasonManualAdjustment   Reason = "manual-adjustment"
	ReasonPrizePayout        Reason = "prize-payout"
	ReasonShopPurchaseDebit  Reason = "shop-purchase-debit"
	ReasonShopRefundCredit   Reason = "shop-refund-credit"
)

var validReasons = map[Reason]bool{
	ReasonParticipationAward: true,
	ReasonPlacementAward:     true,
	ReasonEntryFeeDebit:      true,
	ReasonRefund:             true,
	ReasonManualAdjustment:   true,
	ReasonPrizePayout:        true,
	ReasonShopPurchaseDebit:  true,
	ReasonShopRefundCredit:   true,
}

// Valid reports whether r is a known reason code.
func (r Reason) Valid() bool {
	return validReasons[r]
}

// LedgerEntry is one immutable balance-affecting event. Amount is signed:
// positive for credits, negative for debits. Entries are never updated or
// deleted; corrections are new compensating entries.
type LedgerEntry struct {
	ID             int64     `json:"id" db:"id"`
	WalletID       int64     `json:"wallet_id" db:"wallet_id"`
	Amount         int64     `json:"amount" db:"amount"` // smallest unit, signed
	Reason         Reason    `json:"reason" db:"reason"`
	Note           string    `json:"note" db:"note"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" db:"idempotency_key"`
	Metadata       Metadata  `json:"metadata,omitempty" db:"metadata"`
	TournamentID   string    `json:"tournament_id,omitempty" db:"tournament_id"`
	RegistrationID string    `json:"registration_id,omitempty" db:"registration_id"`
	MatchID        string    `json:"match_id,omitempty" db:"match_id"`
	RefundOf       int64     `json:"refund_of,omitempty" db:"refund_of"`
	BalanceAfter   int64     `json:"balance_after" db:"balance_after"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// EntryType returns "credit" or "debit" from the entry sign.
func (e *LedgerEntry) EntryType() string {
	if e.Amount < 0 {
		return "debit"
	}
	return "credit"
}

// EntryLinks carries opaque references to the domain objects that caused
// an entry. The ledger stores them verbatim and never resolves them.
type EntryLinks struct {
	TournamentID   string `json:"tournament_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	MatchID        string `json:"match_id,omitempty"`
}

// Metadata type for JSONB fields
type Metadata map[string]any

// Value implements driver.Valuer for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for Metadata
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, m)
}
