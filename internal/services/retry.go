package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/clashpoint/deltacoin/internal/metrics"
)

const (
	txMaxAttempts  = 3
	txRetryBackoff = 50 * time.Millisecond
)

// Unique constraints whose violation means a concurrent writer got there
// first. Re-running the transaction lets the lookup path observe the
// winner and resolve replay vs conflict.
var racedUniqueConstraints = map[string]bool{
	"ledger_entries_idempotency_key_idx":    true,
	"reservation_holds_idempotency_key_idx": true,
	"wallets_owner_id_key":                  true,
}

// runInTxWithRetry executes fn inside a transaction, retrying on
// transient serialization failures. Each attempt gets a fresh tx; fn must
// be safe to re-run from scratch. Business errors pass through on the
// first occurrence; only transient conflicts are retried, and exhausting
// the attempts surfaces as ErrTemporarilyUnavailable.
func runInTxWithRetry(ctx context.Context, db *sql.DB, op string, fn func(tx *sql.Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err := runInTx(ctx, db, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}

		lastErr = err
		metrics.TxRetriesTotal.Inc()
		log.Printf("[Retry] %s attempt %d/%d failed with transient error: %v", op, attempt, txMaxAttempts, err)

		if attempt < txMaxAttempts {
			select {
			case <-time.After(txRetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Printf("[Retry] %s gave up after %d attempts: %v", op, txMaxAttempts, lastErr)
	return ErrTemporarilyUnavailable
}

func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// isRetryableTxError classifies Postgres failures that a fresh attempt
// can resolve: serialization failures, deadlocks, lock timeouts, and
// unique violations on constraints raced by concurrent writers.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		return true
	case "23505":
		return racedUniqueConstraints[pqErr.Constraint]
	}
	return false
}
