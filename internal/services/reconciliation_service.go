package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/clashpoint/deltacoin/internal/metrics"
)

// ReconciliationOutcome is the per-wallet result of a reconciliation pass.
type ReconciliationOutcome string

const (
	OutcomeClean       ReconciliationOutcome = "clean"
	OutcomeCorrected   ReconciliationOutcome = "corrected"
	OutcomeDriftDryRun ReconciliationOutcome = "drift-found-dry-run"
)

// WalletReconciliation compares one wallet's cached balance against the
// sum of its ledger entries. Drift is cached minus ledger: a positive
// drift means the cache overstated the balance.
type WalletReconciliation struct {
	WalletID      int64                 `json:"wallet_id"`
	OwnerID       string                `json:"owner_id"`
	CachedBalance int64                 `json:"cached_balance"`
	LedgerBalance int64                 `json:"ledger_balance"`
	Drift         int64                 `json:"drift"`
	Outcome       ReconciliationOutcome `json:"outcome"`
}

// SweepReport summarizes a full reconciliation pass.
type SweepReport struct {
	DryRun         bool                   `json:"dry_run"`
	CheckedWallets int                    `json:"checked_wallets"`
	DriftWallets   int                    `json:"drift_wallets"`
	TotalDrift     int64                  `json:"total_drift"` // absolute units
	Failures       int                    `json:"failures"`
	Drifts         []WalletReconciliation `json:"drifts"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     time.Time              `json:"finished_at"`
}

// ReconciliationService repairs wallets whose cached balance has drifted
// from the ledger. The ledger entries are the source of truth; a
// correction rewrites the cache, never the entries.
type ReconciliationService struct {
	db *sql.DB
}

func NewReconciliationService(db *sql.DB) *ReconciliationService {
	return &ReconciliationService{db: db}
}

// RecalcAndSave recomputes one wallet's balance from its entries under
// the wallet row lock and overwrites the cache if it drifted. Unknown
// owners are an error: reconciliation never creates wallets.
func (s *ReconciliationService) RecalcAndSave(ctx context.Context, ownerID string) (*WalletReconciliation, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}

	var rec WalletReconciliation
	err := runInTxWithRetry(ctx, s.db, "RecalcAndSave", func(tx *sql.Tx) error {
		rec = WalletReconciliation{}

		var walletID int64
		var cached int64
		err := tx.QueryRowContext(ctx, `
			SELECT id, balance FROM wallets WHERE owner_id = $1 FOR UPDATE`, ownerID).
			Scan(&walletID, &cached)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: no wallet for owner", ErrInvalidWallet)
		}
		if err != nil {
			return err
		}

		r, err := s.reconcileLockedWallet(ctx, tx, walletID, ownerID, cached)
		if err != nil {
			return err
		}
		rec = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(&rec)
	return &rec, nil
}

// SweepAll reconciles every wallet. With dryRun the pass is a single
// read-only snapshot that reports drift without touching anything;
// otherwise each drifted wallet is corrected in its own transaction so
// one poisoned wallet cannot sink the whole sweep.
func (s *ReconciliationService) SweepAll(ctx context.Context, dryRun bool) (*SweepReport, error) {
	report := &SweepReport{DryRun: dryRun, Drifts: []WalletReconciliation{}, StartedAt: time.Now()}

	if dryRun {
		if err := s.sweepDryRun(ctx, report); err != nil {
			return nil, err
		}
		report.FinishedAt = time.Now()
		s.logReport(report)
		return report, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT owner_id FROM wallets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			rows.Close()
			return nil, err
		}
		owners = append(owners, owner)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, owner := range owners {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		rec, err := s.RecalcAndSave(ctx, owner)
		if err != nil {
			report.Failures++
			log.Printf("[Reconciliation] sweep failed for owner %s: %v", owner, err)
			continue
		}
		report.CheckedWallets++
		if rec.Outcome != OutcomeClean {
			report.DriftWallets++
			report.TotalDrift += abs64(rec.Drift)
			report.Drifts = append(report.Drifts, *rec)
		}
	}

	report.FinishedAt = time.Now()
	s.logReport(report)
	return report, nil
}

func (s *ReconciliationService) sweepDryRun(ctx context.Context, report *SweepReport) error {
	// One statement, one snapshot: every wallet is compared against the
	// same consistent view of the ledger.
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.owner_id, w.balance,
			COALESCE((SELECT SUM(le.amount) FROM ledger_entries le WHERE le.wallet_id = w.id), 0)
		FROM wallets w
		ORDER BY w.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec WalletReconciliation
		if err := rows.Scan(&rec.WalletID, &rec.OwnerID, &rec.CachedBalance, &rec.LedgerBalance); err != nil {
			return err
		}
		report.CheckedWallets++

		rec.Drift = rec.CachedBalance - rec.LedgerBalance
		if rec.Drift == 0 {
			rec.Outcome = OutcomeClean
			metrics.ReconciliationRunsTotal.WithLabelValues(string(OutcomeClean)).Inc()
			continue
		}

		rec.Outcome = OutcomeDriftDryRun
		report.DriftWallets++
		report.TotalDrift += abs64(rec.Drift)
		report.Drifts = append(report.Drifts, rec)
		s.record(&rec)
	}
	return rows.Err()
}

func (s *ReconciliationService) reconcileLockedWallet(ctx context.Context, tx *sql.Tx, walletID int64, ownerID string, cached int64) (*WalletReconciliation, error) {
	var ledgerBalance int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE wallet_id = $1`, walletID).
		Scan(&ledgerBalance); err != nil {
		return nil, err
	}

	rec := &WalletReconciliation{
		WalletID:      walletID,
		OwnerID:       ownerID,
		CachedBalance: cached,
		LedgerBalance: ledgerBalance,
		Drift:         cached - ledgerBalance,
		Outcome:       OutcomeClean,
	}
	if rec.Drift == 0 {
		return rec, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`, ledgerBalance, walletID); err != nil {
		return nil, err
	}
	rec.Outcome = OutcomeCorrected
	return rec, nil
}

func (s *ReconciliationService) record(rec *WalletReconciliation) {
	metrics.ReconciliationRunsTotal.WithLabelValues(string(rec.Outcome)).Inc()
	if rec.Outcome == OutcomeClean {
		return
	}

	metrics.ReconciliationDriftAmount.Add(float64(abs64(rec.Drift)))
	log.Printf("[Reconciliation] wallet %d (owner %s) drift %d: cached %d, ledger %d (%s)",
		rec.WalletID, rec.OwnerID, rec.Drift, rec.CachedBalance, rec.LedgerBalance, rec.Outcome)
}

func (s *ReconciliationService) logReport(r *SweepReport) {
	log.Printf("[Reconciliation] sweep done dry_run=%t checked=%d drifted=%d total_drift=%d failures=%d in %s",
		r.DryRun, r.CheckedWallets, r.DriftWallets, r.TotalDrift, r.Failures, r.FinishedAt.Sub(r.StartedAt))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
