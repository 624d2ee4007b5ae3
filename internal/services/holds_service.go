package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clashpoint/deltacoin/internal/metrics"
	"github.com/clashpoint/deltacoin/internal/models"
)

// HoldOptions carries the optional parts of a hold authorization.
type HoldOptions struct {
	IdempotencyKey string
	TTL            time.Duration
	Metadata       models.Metadata
}

// CaptureResult reports a settled hold: the hold row, the purchase entry
// written for it and the wallet balance after the debit. Replayed means
// the hold was already captured and the stored outcome was returned.
type CaptureResult struct {
	Hold     *models.ReservationHold `json:"hold"`
	EntryID  int64                   `json:"entry_id"`
	Balance  int64                   `json:"balance"`
	Replayed bool                    `json:"replayed"`
}

// HoldService runs the reservation hold state machine for shop
// purchases. Authorized holds earmark funds against the available
// balance; only capture moves money, through the ledger service, so
// every settled hold still has its ledger entry.
type HoldService struct {
	db         *sql.DB
	ledger     *LedgerService
	defaultTTL time.Duration
}

func NewHoldService(db *sql.DB, ledger *LedgerService, defaultTTL time.Duration) *HoldService {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &HoldService{db: db, ledger: ledger, defaultTTL: defaultTTL}
}

// AuthorizeSpend places a hold for amount against the owner's available
// balance. The amount is the price the shop quoted the buyer; the
// referenced item must still exist and be on sale. The wallet is created
// on first touch, so an unknown owner fails on funds, not on wallet
// existence.
func (s *HoldService) AuthorizeSpend(ctx context.Context, ownerID, sku string, amount int64, opts HoldOptions) (*models.ReservationHold, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: hold amount must be positive, got %d", ErrInvalidAmount, amount)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidTransaction)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	var hold *models.ReservationHold
	var replayed bool
	err := runInTxWithRetry(ctx, s.db, "AuthorizeSpend", func(tx *sql.Tx) error {
		hold, replayed = nil, false

		if opts.IdempotencyKey != "" {
			existing, err := s.findHoldByIdempotencyKey(ctx, tx, opts.IdempotencyKey, ownerID, sku, amount)
			if err != nil {
				return err
			}
			if existing != nil {
				hold, replayed = existing, true
				return nil
			}
		}

		item, err := s.getItemTx(ctx, tx, sku)
		if err != nil {
			return err
		}
		if !item.Active {
			return fmt.Errorf("%w: %s", ErrItemNotActive, sku)
		}

		wallet, err := s.ledger.lockWallet(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		available, err := s.availableTx(ctx, tx, wallet)
		if err != nil {
			return err
		}
		if available-amount < 0 && !wallet.AllowOverdraft {
			return &InsufficientFundsError{OwnerID: ownerID, Available: available, Requested: amount}
		}

		h := models.ReservationHold{
			ID:             uuid.New().String(),
			WalletID:       wallet.ID,
			SKU:            sku,
			Amount:         amount,
			Status:         models.HoldStatusAuthorized,
			ExpiresAt:      time.Now().Add(ttl),
			IdempotencyKey: opts.IdempotencyKey,
			Metadata:       opts.Metadata,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO reservation_holds
				(id, wallet_id, sku, amount, status, expires_at, idempotency_key, metadata, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NOW(), NOW())
			RETURNING created_at, updated_at`,
			h.ID, h.WalletID, h.SKU, h.Amount, string(h.Status), h.ExpiresAt, h.IdempotencyKey, h.Metadata).
			Scan(&h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return err
		}

		hold = &h
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}

	if replayed {
		metrics.LedgerReplaysTotal.Inc()
	} else {
		metrics.RecordHoldTransition(string(models.HoldStatusAuthorized))
		log.Printf("[HoldService] authorized hold %s sku=%s amount=%d", hold.ID, hold.SKU, hold.Amount)
	}
	return hold, nil
}

// Capture settles an authorized hold: it writes the purchase debit,
// links it to the hold and marks the hold captured, all in one
// transaction. The hold must belong to the owner's wallet. Capturing an
// already captured hold returns the stored outcome. A hold past its
// deadline is marked expired instead.
func (s *HoldService) Capture(ctx context.Context, ownerID, holdID string, note string) (*CaptureResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if holdID == "" {
		return nil, fmt.Errorf("%w: hold id is required", ErrHoldNotFound)
	}

	var result CaptureResult
	var expiredLazily bool
	err := runInTxWithRetry(ctx, s.db, "Capture", func(tx *sql.Tx) error {
		result, expiredLazily = CaptureResult{}, false

		hold, err := s.lockHold(ctx, tx, ownerID, holdID)
		if err != nil {
			return err
		}

		switch hold.Status {
		case models.HoldStatusCaptured:
			balance, err := s.entryBalanceAfter(ctx, tx, hold.CaptureEntryID)
			if err != nil {
				return err
			}
			result = CaptureResult{Hold: hold, EntryID: hold.CaptureEntryID, Balance: balance, Replayed: true}
			return nil
		case models.HoldStatusReleased:
			return &StateTransitionError{HoldID: hold.ID, From: hold.Status, Op: "capture"}
		case models.HoldStatusExpired:
			return fmt.Errorf("%w: hold %s", ErrHoldExpired, hold.ID)
		}

		// A past-deadline hold is marked expired here rather than
		// failing the transaction, so the mark outlives the rejection.
		if hold.ExpiredBy(time.Now()) {
			if err := s.setHoldStatus(ctx, tx, hold.ID, models.HoldStatusExpired, 0); err != nil {
				return err
			}
			expiredLazily = true
			return nil
		}

		wallet, err := s.ledger.lockWalletByID(ctx, tx, hold.WalletID)
		if err != nil {
			return err
		}

		newBalance := wallet.Balance - hold.Amount
		if newBalance < 0 && !wallet.AllowOverdraft {
			return &InsufficientFundsError{OwnerID: wallet.OwnerID, Available: wallet.Balance, Requested: hold.Amount}
		}

		entryOpts := EntryOptions{
			Note:     note,
			Metadata: models.Metadata{"hold_id": hold.ID, "sku": hold.SKU},
		}
		entryID, err := s.ledger.insertEntry(ctx, tx, wallet.ID, -hold.Amount, models.ReasonShopPurchaseDebit, entryOpts, newBalance, 0)
		if err != nil {
			return err
		}

		if err := s.ledger.updateWalletBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}
		if err := s.setHoldStatus(ctx, tx, hold.ID, models.HoldStatusCaptured, entryID); err != nil {
			return err
		}

		hold.Status = models.HoldStatusCaptured
		hold.CaptureEntryID = entryID
		result = CaptureResult{Hold: hold, EntryID: entryID, Balance: newBalance}
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}
	if expiredLazily {
		metrics.RecordHoldTransition(string(models.HoldStatusExpired))
		metrics.RecordDomainError("hold_expired")
		return nil, fmt.Errorf("%w: hold %s", ErrHoldExpired, holdID)
	}

	if result.Replayed {
		metrics.LedgerReplaysTotal.Inc()
	} else {
		metrics.RecordHoldTransition(string(models.HoldStatusCaptured))
		metrics.RecordEntry(string(models.ReasonShopPurchaseDebit), "debit")
		log.Printf("[HoldService] captured hold %s entry=%d", holdID, result.EntryID)
	}
	return &result, nil
}

// Release frees an authorized hold without moving money. The hold must
// belong to the owner's wallet. Releasing a hold that is already
// released or expired is a no-op success; only a captured hold refuses,
// money already moved.
func (s *HoldService) Release(ctx context.Context, ownerID, holdID string) (*models.ReservationHold, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if holdID == "" {
		return nil, fmt.Errorf("%w: hold id is required", ErrHoldNotFound)
	}

	var hold *models.ReservationHold
	var transition models.HoldStatus
	err := runInTxWithRetry(ctx, s.db, "Release", func(tx *sql.Tx) error {
		hold, transition = nil, ""

		h, err := s.lockHold(ctx, tx, ownerID, holdID)
		if err != nil {
			return err
		}

		switch h.Status {
		case models.HoldStatusCaptured:
			return &StateTransitionError{HoldID: h.ID, From: h.Status, Op: "release"}
		case models.HoldStatusReleased, models.HoldStatusExpired:
			hold = h
			return nil
		}

		// Past-deadline holds settle as expired even when the caller
		// asked for a release; either way the funds are freed.
		target := models.HoldStatusReleased
		if h.ExpiredBy(time.Now()) {
			target = models.HoldStatusExpired
		}
		if err := s.setHoldStatus(ctx, tx, h.ID, target, 0); err != nil {
			return err
		}

		h.Status = target
		hold, transition = h, target
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}

	if transition != "" {
		metrics.RecordHoldTransition(string(transition))
		log.Printf("[HoldService] hold %s -> %s", holdID, transition)
	}
	return hold, nil
}

// Refund writes a compensating credit against a captured purchase entry
// on the owner's wallet. Partial refunds are allowed; the running total
// of refunds against one entry can never exceed the captured amount.
func (s *HoldService) Refund(ctx context.Context, ownerID string, captureEntryID int64, amount int64, opts EntryOptions) (*MutationResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive, got %d", ErrInvalidAmount, amount)
	}

	var result MutationResult
	err := runInTxWithRetry(ctx, s.db, "Refund", func(tx *sql.Tx) error {
		result = MutationResult{}

		var (
			walletID       int64
			originalAmount int64
			reason         models.Reason
			storedOwner    string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT le.wallet_id, le.amount, le.reason, w.owner_id
			FROM ledger_entries le
			JOIN wallets w ON w.id = le.wallet_id
			WHERE le.id = $1`, captureEntryID).
			Scan(&walletID, &originalAmount, &reason, &storedOwner)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: refund target entry %d not found", ErrInvalidTransaction, captureEntryID)
		}
		if err != nil {
			return err
		}
		if reason != models.ReasonShopPurchaseDebit || originalAmount >= 0 {
			return fmt.Errorf("%w: entry %d is not a purchase debit", ErrInvalidTransaction, captureEntryID)
		}
		if storedOwner != ownerID {
			return fmt.Errorf("%w: entry %d does not belong to this wallet", ErrInvalidTransaction, captureEntryID)
		}

		if opts.IdempotencyKey != "" {
			replay, err := s.ledger.findByIdempotencyKey(ctx, tx, opts.IdempotencyKey, ownerID, amount, models.ReasonShopRefundCredit)
			if err != nil {
				return err
			}
			if replay != nil {
				result = *replay
				return nil
			}
		}

		wallet, err := s.ledger.lockWalletByID(ctx, tx, walletID)
		if err != nil {
			return err
		}

		// Summed under the wallet lock so concurrent refunds of the
		// same entry serialize and cannot both pass the bound.
		var refunded int64
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE refund_of = $1`, captureEntryID).
			Scan(&refunded); err != nil {
			return err
		}

		refundable := -originalAmount - refunded
		if amount > refundable {
			return fmt.Errorf("%w: refund of %d exceeds remaining refundable %d on entry %d",
				ErrInvalidAmount, amount, refundable, captureEntryID)
		}

		newBalance := wallet.Balance + amount
		entryID, err := s.ledger.insertEntry(ctx, tx, wallet.ID, amount, models.ReasonShopRefundCredit, opts, newBalance, captureEntryID)
		if err != nil {
			return err
		}
		if err := s.ledger.updateWalletBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}

		result = MutationResult{EntryID: entryID, WalletID: wallet.ID, Balance: newBalance}
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}

	if result.Replayed {
		metrics.LedgerReplaysTotal.Inc()
	} else {
		metrics.RecordEntry(string(models.ReasonShopRefundCredit), "credit")
		log.Printf("[HoldService] refunded %d against entry %d", amount, captureEntryID)
	}
	return &result, nil
}

// AvailableBalance reports the cached balance next to what is actually
// spendable once authorized holds are subtracted. Unknown owners report
// zeros without creating a wallet.
func (s *HoldService) AvailableBalance(ctx context.Context, ownerID string) (*models.BalanceSnapshot, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}

	snapshot := &models.BalanceSnapshot{OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx, `
		SELECT w.balance,
			w.balance - COALESCE((
				SELECT SUM(h.amount) FROM reservation_holds h
				WHERE h.wallet_id = w.id AND h.status = 'authorized' AND h.expires_at > NOW()
			), 0)
		FROM wallets w
		WHERE w.owner_id = $1`, ownerID).
		Scan(&snapshot.Balance, &snapshot.Available)
	if err == sql.ErrNoRows {
		return snapshot, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetHold returns one hold by id.
func (s *HoldService) GetHold(ctx context.Context, holdID string) (*models.ReservationHold, error) {
	if holdID == "" {
		return nil, fmt.Errorf("%w: hold id is required", ErrHoldNotFound)
	}

	hold, err := s.scanHold(s.db.QueryRowContext(ctx, holdSelect+` WHERE h.id = $1`, holdID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	if err != nil {
		return nil, err
	}
	return hold, nil
}

// ExpireDue flips every authorized hold past its deadline to expired.
// Runs on a schedule; capture and release also expire lazily, so this
// only bounds how long a dead hold can keep reducing available balance.
func (s *HoldService) ExpireDue(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reservation_holds
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'authorized' AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}

	expired, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		for i := int64(0); i < expired; i++ {
			metrics.RecordHoldTransition(string(models.HoldStatusExpired))
		}
		log.Printf("[HoldService] expired %d overdue holds", expired)
	}

	var active int64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservation_holds WHERE status = 'authorized'`).Scan(&active); err == nil {
		metrics.ActiveHolds.Set(float64(active))
	}

	return expired, nil
}

const holdSelect = `
	SELECT h.id, h.wallet_id, h.sku, h.amount, h.status, h.expires_at,
		COALESCE(h.idempotency_key, ''), COALESCE(h.capture_entry_id, 0), h.metadata,
		h.created_at, h.updated_at
	FROM reservation_holds h`

func (s *HoldService) scanHold(row *sql.Row) (*models.ReservationHold, error) {
	var h models.ReservationHold
	err := row.Scan(&h.ID, &h.WalletID, &h.SKU, &h.Amount, &h.Status, &h.ExpiresAt,
		&h.IdempotencyKey, &h.CaptureEntryID, &h.Metadata, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// lockHold acquires the hold row FOR UPDATE and verifies it belongs to
// the owner's wallet. A hold on someone else's wallet reports not-found:
// hold existence is never leaked across wallets.
func (s *HoldService) lockHold(ctx context.Context, tx *sql.Tx, ownerID, holdID string) (*models.ReservationHold, error) {
	var h models.ReservationHold
	var storedOwner string
	err := tx.QueryRowContext(ctx, `
		SELECT h.id, h.wallet_id, h.sku, h.amount, h.status, h.expires_at,
			COALESCE(h.idempotency_key, ''), COALESCE(h.capture_entry_id, 0), h.metadata,
			h.created_at, h.updated_at, w.owner_id
		FROM reservation_holds h
		JOIN wallets w ON w.id = h.wallet_id
		WHERE h.id = $1
		FOR UPDATE OF h`, holdID).
		Scan(&h.ID, &h.WalletID, &h.SKU, &h.Amount, &h.Status, &h.ExpiresAt,
			&h.IdempotencyKey, &h.CaptureEntryID, &h.Metadata, &h.CreatedAt, &h.UpdatedAt, &storedOwner)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	if err != nil {
		return nil, err
	}
	if storedOwner != ownerID {
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	return &h, nil
}

func (s *HoldService) setHoldStatus(ctx context.Context, tx *sql.Tx, holdID string, status models.HoldStatus, captureEntryID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE reservation_holds
		SET status = $1, capture_entry_id = NULLIF($2, 0), updated_at = NOW()
		WHERE id = $3`, string(status), captureEntryID, holdID)
	return err
}

func (s *HoldService) getItemTx(ctx context.Context, tx *sql.Tx, sku string) (*models.ShopItem, error) {
	var item models.ShopItem
	err := tx.QueryRowContext(ctx, `
		SELECT sku, name, price, active, created_at, updated_at
		FROM shop_items
		WHERE sku = $1`, sku).
		Scan(&item.SKU, &item.Name, &item.Price, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, sku)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// availableTx computes the spendable balance for a wallet already locked
// in this transaction. Time-expired holds never capture, so they free
// funds immediately even before the sweep marks them.
func (s *HoldService) availableTx(ctx context.Context, tx *sql.Tx, wallet *models.Wallet) (int64, error) {
	var held int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM reservation_holds
		WHERE wallet_id = $1 AND status = 'authorized' AND expires_at > NOW()`, wallet.ID).
		Scan(&held)
	if err != nil {
		return 0, err
	}
	return wallet.Balance - held, nil
}

// findHoldByIdempotencyKey resolves a reused authorization key. The
// stored hold is returned as it currently stands, whatever its status;
// a key reused for a different owner, sku or amount is a conflict.
func (s *HoldService) findHoldByIdempotencyKey(ctx context.Context, tx *sql.Tx, key, ownerID, sku string, amount int64) (*models.ReservationHold, error) {
	var h models.ReservationHold
	var storedOwner string
	err := tx.QueryRowContext(ctx, `
		SELECT h.id, h.wallet_id, h.sku, h.amount, h.status, h.expires_at,
			COALESCE(h.idempotency_key, ''), COALESCE(h.capture_entry_id, 0), h.metadata,
			h.created_at, h.updated_at, w.owner_id
		FROM reservation_holds h
		JOIN wallets w ON w.id = h.wallet_id
		WHERE h.idempotency_key = $1`, key).
		Scan(&h.ID, &h.WalletID, &h.SKU, &h.Amount, &h.Status, &h.ExpiresAt,
			&h.IdempotencyKey, &h.CaptureEntryID, &h.Metadata, &h.CreatedAt, &h.UpdatedAt, &storedOwner)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if storedOwner != ownerID || h.SKU != sku || h.Amount != amount {
		return nil, &IdempotencyConflictError{Key: key}
	}
	return &h, nil
}

func (s *HoldService) entryBalanceAfter(ctx context.Context, tx *sql.Tx, entryID int64) (int64, error) {
	if entryID == 0 {
		return 0, fmt.Errorf("captured hold has no capture entry")
	}
	var balance int64
	err := tx.QueryRowContext(ctx, `
		SELECT balance_after FROM ledger_entries WHERE id = $1`, entryID).Scan(&balance)
	return balance, err
}
