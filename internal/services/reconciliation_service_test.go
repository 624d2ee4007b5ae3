package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestReconciliationService_RecalcAndSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReconciliationService(db)
	ctx := context.Background()

	t.Run("clean wallet is left untouched", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(1, 1000))

		mock.ExpectQuery("FROM ledger_entries WHERE wallet_id").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000))

		mock.ExpectCommit()

		rec, err := service.RecalcAndSave(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, OutcomeClean, rec.Outcome)
		assert.Equal(t, int64(0), rec.Drift)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("drifted cache is rewritten from the ledger", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(2, 1200))

		mock.ExpectQuery("FROM ledger_entries WHERE wallet_id").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000))

		mock.ExpectExec("UPDATE wallets").
			WithArgs(int64(1000), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		rec, err := service.RecalcAndSave(ctx, "bob")
		assert.NoError(t, err)
		assert.Equal(t, OutcomeCorrected, rec.Outcome)
		assert.Equal(t, int64(200), rec.Drift)
		assert.Equal(t, int64(1200), rec.CachedBalance)
		assert.Equal(t, int64(1000), rec.LedgerBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown owner is an error, not a new wallet", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("stranger").
			WillReturnError(sql.ErrNoRows)

		mock.ExpectRollback()

		_, err := service.RecalcAndSave(ctx, "stranger")
		assert.ErrorIs(t, err, ErrInvalidWallet)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := service.RecalcAndSave(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidWallet)
	})
}

func TestReconciliationService_SweepAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReconciliationService(db)
	ctx := context.Background()

	t.Run("dry run reports drift without writing", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY w.id").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "balance", "ledger_sum"}).
				AddRow(1, "alice", 1000, 1000).
				AddRow(2, "bob", 750, 700).
				AddRow(3, "carol", 20, 20))

		report, err := service.SweepAll(ctx, true)
		assert.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 3, report.CheckedWallets)
		assert.Equal(t, 1, report.DriftWallets)
		assert.Equal(t, int64(50), report.TotalDrift)
		assert.Len(t, report.Drifts, 1)
		assert.Equal(t, "bob", report.Drifts[0].OwnerID)
		assert.Equal(t, OutcomeDriftDryRun, report.Drifts[0].Outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("correcting sweep survives a poisoned wallet", func(t *testing.T) {
		mock.ExpectQuery("SELECT owner_id FROM wallets ORDER BY id").
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).
				AddRow("alice").
				AddRow("bob").
				AddRow("carol"))

		// alice: clean
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(1, 1000))
		mock.ExpectQuery("FROM ledger_entries WHERE wallet_id").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000))
		mock.ExpectCommit()

		// bob: read fails, sweep keeps going
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("bob").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		// carol: drifted, gets corrected
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, balance FROM wallets").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(3, 500))
		mock.ExpectQuery("FROM ledger_entries WHERE wallet_id").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(450))
		mock.ExpectExec("UPDATE wallets").
			WithArgs(int64(450), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		report, err := service.SweepAll(ctx, false)
		assert.NoError(t, err)
		assert.False(t, report.DryRun)
		assert.Equal(t, 2, report.CheckedWallets)
		assert.Equal(t, 1, report.Failures)
		assert.Equal(t, 1, report.DriftWallets)
		assert.Equal(t, int64(50), report.TotalDrift)
		assert.Len(t, report.Drifts, 1)
		assert.Equal(t, OutcomeCorrected, report.Drifts[0].Outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
