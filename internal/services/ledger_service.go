package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/clashpoint/deltacoin/internal/metrics"
	"github.com/clashpoint/deltacoin/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// EntryOptions carries the optional parts of a ledger mutation. Links are
// stored verbatim as opaque references.
type EntryOptions struct {
	IdempotencyKey string
	Note           string
	Metadata       models.Metadata
	Links          models.EntryLinks
}

// MutationResult reports the outcome of a single-wallet mutation.
// Replayed means an earlier entry with the same idempotency key was
// returned and no new entry was written; Balance is then the balance as
// of that original entry.
type MutationResult struct {
	EntryID  int64 `json:"entry_id"`
	WalletID int64 `json:"wallet_id"`
	Balance  int64 `json:"balance"`
	Replayed bool  `json:"replayed"`
}

// TransferResult reports both legs of a wallet-to-wallet transfer.
type TransferResult struct {
	DebitEntryID  int64 `json:"debit_entry_id"`
	CreditEntryID int64 `json:"credit_entry_id"`
	FromBalance   int64 `json:"from_balance"`
	ToBalance     int64 `json:"to_balance"`
	Replayed      bool  `json:"replayed"`
}

// HistoryFilter narrows a transaction history query. Zero values mean
// no constraint; Limit is clamped to maxHistoryLimit. EntryType selects
// credits or debits by sign; Order flips between newest first (the
// default) and oldest first.
type HistoryFilter struct {
	Reason    models.Reason
	EntryType string
	Since     time.Time
	Until     time.Time
	Order     string
	Limit     int
	Offset    int
}

// HistoryPage is one page of ledger entries, newest first.
type HistoryPage struct {
	Entries []models.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// LedgerService owns all balance-affecting writes. Every mutation locks
// the wallet row, appends an immutable ledger entry and updates the
// cached balance in one transaction.
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit adds amount to the owner's wallet, creating the wallet on first
// touch. Amount must be positive.
func (s *LedgerService) Credit(ctx context.Context, ownerID string, amount int64, reason models.Reason, opts EntryOptions) (*MutationResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive, got %d", ErrInvalidAmount, amount)
	}
	return s.applyEntry(ctx, "Credit", ownerID, amount, reason, opts)
}

// Debit removes amount from the owner's wallet. Amount must be positive;
// the entry is stored with a negative sign. The balance may not go below
// zero unless the wallet allows overdraft.
func (s *LedgerService) Debit(ctx context.Context, ownerID string, amount int64, reason models.Reason, opts EntryOptions) (*MutationResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive, got %d", ErrInvalidAmount, amount)
	}
	return s.applyEntry(ctx, "Debit", ownerID, -amount, reason, opts)
}

// ManualAdjust writes a signed correction entry. The note is mandatory:
// an adjustment without a documented cause is rejected.
func (s *LedgerService) ManualAdjust(ctx context.Context, ownerID string, amount int64, opts EntryOptions) (*MutationResult, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: adjustment amount cannot be zero", ErrInvalidAmount)
	}
	if opts.Note == "" {
		return nil, fmt.Errorf("%w: manual adjustment requires a note", ErrInvalidTransaction)
	}
	return s.applyEntry(ctx, "ManualAdjust", ownerID, amount, models.ReasonManualAdjustment, opts)
}

func (s *LedgerService) applyEntry(ctx context.Context, op, ownerID string, amount int64, reason models.Reason, opts EntryOptions) (*MutationResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: unknown reason %q", ErrInvalidTransaction, reason)
	}

	var result MutationResult
	err := runInTxWithRetry(ctx, s.db, op, func(tx *sql.Tx) error {
		result = MutationResult{}

		if opts.IdempotencyKey != "" {
			replay, err := s.findByIdempotencyKey(ctx, tx, opts.IdempotencyKey, ownerID, amount, reason)
			if err != nil {
				return err
			}
			if replay != nil {
				result = *replay
				return nil
			}
		}

		wallet, err := s.lockWallet(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		newBalance := wallet.Balance + amount
		if newBalance < 0 && !wallet.AllowOverdraft {
			return &InsufficientFundsError{OwnerID: ownerID, Available: wallet.Balance, Requested: -amount}
		}

		entryID, err := s.insertEntry(ctx, tx, wallet.ID, amount, reason, opts, newBalance, 0)
		if err != nil {
			return err
		}

		if err := s.updateWalletBalance(ctx, tx, wallet.ID, newBalance); err != nil {
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
		log.Printf("[LedgerService] %s - replayed entry %d for key %q", op, result.EntryID, opts.IdempotencyKey)
	} else {
		metrics.RecordEntry(string(reason), entryTypeOf(amount))
	}
	return &result, nil
}

// Transfer moves amount between two wallets atomically: a debit entry on
// the source and a credit entry on the destination in one transaction.
// The caller's idempotency key covers the pair; the credit leg is stored
// under a derived key so both legs stay individually unique.
func (s *LedgerService) Transfer(ctx context.Context, fromOwner, toOwner string, amount int64, reason models.Reason, opts EntryOptions) (*TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %d", ErrInvalidAmount, amount)
	}
	if fromOwner == "" || toOwner == "" {
		return nil, fmt.Errorf("%w: both owners are required", ErrInvalidWallet)
	}
	if fromOwner == toOwner {
		return nil, fmt.Errorf("%w: transfer requires two distinct wallets", ErrInvalidWallet)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: unknown reason %q", ErrInvalidTransaction, reason)
	}

	debitOpts := opts
	creditOpts := opts
	if opts.IdempotencyKey != "" {
		creditOpts.IdempotencyKey = opts.IdempotencyKey + ":credit"
	}

	var result TransferResult
	err := runInTxWithRetry(ctx, s.db, "Transfer", func(tx *sql.Tx) error {
		result = TransferResult{}

		if opts.IdempotencyKey != "" {
			debitReplay, err := s.findByIdempotencyKey(ctx, tx, debitOpts.IdempotencyKey, fromOwner, -amount, reason)
			if err != nil {
				return err
			}
			if debitReplay != nil {
				creditReplay, err := s.findByIdempotencyKey(ctx, tx, creditOpts.IdempotencyKey, toOwner, amount, reason)
				if err != nil {
					return err
				}
				if creditReplay == nil {
					return &IdempotencyConflictError{Key: opts.IdempotencyKey, EntryID: debitReplay.EntryID}
				}
				result = TransferResult{
					DebitEntryID:  debitReplay.EntryID,
					CreditEntryID: creditReplay.EntryID,
					FromBalance:   debitReplay.Balance,
					ToBalance:     creditReplay.Balance,
					Replayed:      true,
				}
				return nil
			}
		}

		// Lock wallets in consistent order to prevent deadlocks
		firstOwner, secondOwner := fromOwner, toOwner
		if fromOwner > toOwner {
			firstOwner, secondOwner = toOwner, fromOwner
		}

		first, err := s.lockWallet(ctx, tx, firstOwner)
		if err != nil {
			return err
		}
		second, err := s.lockWallet(ctx, tx, secondOwner)
		if err != nil {
			return err
		}

		fromWallet, toWallet := first, second
		if firstOwner != fromOwner {
			fromWallet, toWallet = second, first
		}

		fromBalance := fromWallet.Balance - amount
		if fromBalance < 0 && !fromWallet.AllowOverdraft {
			return &InsufficientFundsError{OwnerID: fromOwner, Available: fromWallet.Balance, Requested: amount}
		}
		toBalance := toWallet.Balance + amount

		debitID, err := s.insertEntry(ctx, tx, fromWallet.ID, -amount, reason, debitOpts, fromBalance, 0)
		if err != nil {
			return err
		}
		creditID, err := s.insertEntry(ctx, tx, toWallet.ID, amount, reason, creditOpts, toBalance, 0)
		if err != nil {
			return err
		}

		if err := s.updateWalletBalance(ctx, tx, fromWallet.ID, fromBalance); err != nil {
			return err
		}
		if err := s.updateWalletBalance(ctx, tx, toWallet.ID, toBalance); err != nil {
			return err
		}

		result = TransferResult{
			DebitEntryID:  debitID,
			CreditEntryID: creditID,
			FromBalance:   fromBalance,
			ToBalance:     toBalance,
		}
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}

	if result.Replayed {
		metrics.LedgerReplaysTotal.Inc()
	} else {
		metrics.RecordEntry(string(reason), "debit")
		metrics.RecordEntry(string(reason), "credit")
	}
	return &result, nil
}

// SetOverdraft flips the wallet's overdraft flag. The wallet is created
// on first touch so the flag can be staged before any coins move.
func (s *LedgerService) SetOverdraft(ctx context.Context, ownerID string, allow bool) (*models.Wallet, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}

	var wallet *models.Wallet
	err := runInTxWithRetry(ctx, s.db, "SetOverdraft", func(tx *sql.Tx) error {
		w, err := s.lockWallet(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		if w.AllowOverdraft != allow {
			if _, err := tx.ExecContext(ctx, `
				UPDATE wallets
				SET allow_overdraft = $1, updated_at = NOW()
				WHERE id = $2`, allow, w.ID); err != nil {
				return err
			}
			w.AllowOverdraft = allow
		}

		wallet = w
		return nil
	})
	if err != nil {
		metrics.RecordDomainError(ErrorCode(err))
		return nil, err
	}

	log.Printf("[LedgerService] overdraft for owner %s set to %t", ownerID, allow)
	return wallet, nil
}

// GetBalance returns the cached balance. Unknown owners report zero
// without creating a wallet.
func (s *LedgerService) GetBalance(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}

	var balance int64
	err := s.db.QueryRowContext(ctx, `
		SELECT balance FROM wallets WHERE owner_id = $1`, ownerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// GetTransactionHistory returns the owner's entries newest first.
// Unknown owners get an empty page.
func (s *LedgerService) GetTransactionHistory(ctx context.Context, ownerID string, f HistoryFilter) (*HistoryPage, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}
	if f.Limit <= 0 {
		f.Limit = defaultHistoryLimit
	}
	if f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Reason != "" && !f.Reason.Valid() {
		return nil, fmt.Errorf("%w: unknown reason %q", ErrInvalidTransaction, f.Reason)
	}
	switch f.EntryType {
	case "", "credit", "debit":
	default:
		return nil, fmt.Errorf("%w: entry type must be credit or debit, got %q", ErrInvalidTransaction, f.EntryType)
	}
	switch f.Order {
	case "", "asc", "desc":
	default:
		return nil, fmt.Errorf("%w: order must be asc or desc, got %q", ErrInvalidTransaction, f.Order)
	}

	where := `FROM ledger_entries le JOIN wallets w ON w.id = le.wallet_id WHERE w.owner_id = $1`
	args := []any{ownerID}

	if f.Reason != "" {
		args = append(args, string(f.Reason))
		where += fmt.Sprintf(" AND le.reason = $%d", len(args))
	}
	switch f.EntryType {
	case "credit":
		where += " AND le.amount > 0"
	case "debit":
		where += " AND le.amount < 0"
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		where += fmt.Sprintf(" AND le.created_at >= $%d", len(args))
	}
	if !f.Until.IsZero() {
		args = append(args, f.Until)
		where += fmt.Sprintf(" AND le.created_at <= $%d", len(args))
	}

	page := &HistoryPage{Entries: []models.LedgerEntry{}, Limit: f.Limit, Offset: f.Offset}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) `+where, args...).Scan(&page.Total); err != nil {
		return nil, err
	}

	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, f.Limit, f.Offset)
	query := `
		SELECT le.id, le.wallet_id, le.amount, le.reason, le.note,
			COALESCE(le.idempotency_key, ''), le.metadata,
			COALESCE(le.tournament_id, ''), COALESCE(le.registration_id, ''), COALESCE(le.match_id, ''),
			COALESCE(le.refund_of, 0), le.balance_after, le.created_at ` + where +
		fmt.Sprintf(" ORDER BY le.created_at %s, le.id %s LIMIT $%d OFFSET $%d", direction, direction, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.Amount, &e.Reason, &e.Note,
			&e.IdempotencyKey, &e.Metadata,
			&e.TournamentID, &e.RegistrationID, &e.MatchID,
			&e.RefundOf, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return page, nil
}

// findByIdempotencyKey resolves a reused key inside the transaction.
// Returns nil when the key is unused; a replay result when the stored
// entry matches owner, signed amount and reason; a conflict otherwise.
// Note and metadata are deliberately not part of the comparison.
func (s *LedgerService) findByIdempotencyKey(ctx context.Context, tx *sql.Tx, key, ownerID string, amount int64, reason models.Reason) (*MutationResult, error) {
	var (
		entryID      int64
		walletID     int64
		storedAmount int64
		storedReason models.Reason
		balanceAfter int64
		storedOwner  string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT le.id, le.wallet_id, le.amount, le.reason, le.balance_after, w.owner_id
		FROM ledger_entries le
		JOIN wallets w ON w.id = le.wallet_id
		WHERE le.idempotency_key = $1`, key).
		Scan(&entryID, &walletID, &storedAmount, &storedReason, &balanceAfter, &storedOwner)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if storedOwner != ownerID || storedAmount != amount || storedReason != reason {
		return nil, &IdempotencyConflictError{Key: key, EntryID: entryID}
	}

	return &MutationResult{EntryID: entryID, WalletID: walletID, Balance: balanceAfter, Replayed: true}, nil
}

// lockWallet acquires the wallet row FOR UPDATE, creating it with a zero
// balance on first touch. The insert is conflict-tolerant so concurrent
// first touches converge on one row.
func (s *LedgerService) lockWallet(ctx context.Context, tx *sql.Tx, ownerID string) (*models.Wallet, error) {
	wallet, err := s.selectWalletForUpdate(ctx, tx, ownerID)
	if err == nil {
		return wallet, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (owner_id, balance, allow_overdraft, pending_withdrawal, created_at, updated_at)
		VALUES ($1, 0, false, 0, NOW(), NOW())
		ON CONFLICT (owner_id) DO NOTHING`, ownerID); err != nil {
		return nil, err
	}

	log.Printf("[LedgerService] created wallet for owner %s", ownerID)
	return s.selectWalletForUpdate(ctx, tx, ownerID)
}

func (s *LedgerService) selectWalletForUpdate(ctx context.Context, tx *sql.Tx, ownerID string) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.QueryRowContext(ctx, `
		SELECT id, owner_id, balance, allow_overdraft, pending_withdrawal, created_at, updated_at
		FROM wallets
		WHERE owner_id = $1
		FOR UPDATE`, ownerID).
		Scan(&w.ID, &w.OwnerID, &w.Balance, &w.AllowOverdraft, &w.PendingWithdrawal, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *LedgerService) lockWalletByID(ctx context.Context, tx *sql.Tx, walletID int64) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.QueryRowContext(ctx, `
		SELECT id, owner_id, balance, allow_overdraft, pending_withdrawal, created_at, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE`, walletID).
		Scan(&w.ID, &w.OwnerID, &w.Balance, &w.AllowOverdraft, &w.PendingWithdrawal, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *LedgerService) insertEntry(ctx context.Context, tx *sql.Tx, walletID int64, amount int64, reason models.Reason, opts EntryOptions, balanceAfter int64, refundOf int64) (int64, error) {
	var entryID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO ledger_entries
			(wallet_id, amount, reason, note, idempotency_key, metadata,
			 tournament_id, registration_id, match_id, refund_of, balance_after, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, 0), $11, NOW())
		RETURNING id`,
		walletID, amount, string(reason), opts.Note, opts.IdempotencyKey, opts.Metadata,
		opts.Links.TournamentID, opts.Links.RegistrationID, opts.Links.MatchID, refundOf, balanceAfter).
		Scan(&entryID)
	return entryID, err
}

func (s *LedgerService) updateWalletBalance(ctx context.Context, tx *sql.Tx, walletID, newBalance int64) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE id = $2`, newBalance, walletID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("wallet %d missing during balance update", walletID)
	}
	return nil
}

func entryTypeOf(amount int64) string {
	if amount < 0 {
		return "debit"
	}
	return "credit"
}
