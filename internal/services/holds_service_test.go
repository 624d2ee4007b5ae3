package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/clashpoint/deltacoin/internal/models"
)

func holdCols() []string {
	return []string{"id", "wallet_id", "sku", "amount", "status", "expires_at",
		"idempotency_key", "capture_entry_id", "metadata", "created_at", "updated_at"}
}

func holdRow(id string, walletID int64, sku string, amount int64, status models.HoldStatus, expiresAt time.Time, captureEntryID int64) *sqlmock.Rows {
	return sqlmock.NewRows(holdCols()).
		AddRow(id, walletID, sku, amount, string(status), expiresAt, "", captureEntryID, []byte(`{}`), time.Now(), time.Now())
}

func lockedHoldRow(id string, walletID int64, sku string, amount int64, status models.HoldStatus, expiresAt time.Time, captureEntryID int64, owner string) *sqlmock.Rows {
	return sqlmock.NewRows(append(holdCols(), "owner_id")).
		AddRow(id, walletID, sku, amount, string(status), expiresAt, "", captureEntryID, []byte(`{}`), time.Now(), time.Now(), owner)
}

func itemRow(sku, name string, price int64, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"sku", "name", "price", "active", "created_at", "updated_at"}).
		AddRow(sku, name, price, active, time.Now(), time.Now())
}

func newHoldService(db *sql.DB) *HoldService {
	return NewHoldService(db, NewLedgerService(db), 15*time.Minute)
}

func TestHoldService_AuthorizeSpend(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()

	t.Run("authorizes hold for the quoted amount", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM shop_items").
			WithArgs("avatar-frame-gold").
			WillReturnRows(itemRow("avatar-frame-gold", "Gold Avatar Frame", 500, true))

		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs("alice").
			WillReturnRows(walletRows(1, "alice", 1000, false))

		// Held amount from live authorized holds
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(200))

		mock.ExpectQuery("INSERT INTO reservation_holds").
			WithArgs(sqlmock.AnyArg(), int64(1), "avatar-frame-gold", int64(500), "authorized",
				sqlmock.AnyArg(), "", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

		mock.ExpectCommit()

		hold, err := service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", 500, HoldOptions{})
		assert.NoError(t, err)
		assert.NotEmpty(t, hold.ID)
		assert.Equal(t, int64(500), hold.Amount)
		assert.Equal(t, models.HoldStatusAuthorized, hold.Status)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), hold.ExpiresAt, 5*time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", 0, HoldOptions{})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", -50, HoldOptions{})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects when available balance is short", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM shop_items").
			WithArgs("avatar-frame-gold").
			WillReturnRows(itemRow("avatar-frame-gold", "Gold Avatar Frame", 500, true))

		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs("alice").
			WillReturnRows(walletRows(1, "alice", 1000, false))

		// 800 already held: available is 200, requested 500
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(800))

		mock.ExpectRollback()

		_, err := service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", 500, HoldOptions{})
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		var insufficient *InsufficientFundsError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, int64(200), insufficient.Available)
		assert.Equal(t, int64(500), insufficient.Requested)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects inactive item", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM shop_items").
			WithArgs("retired-skin").
			WillReturnRows(itemRow("retired-skin", "Retired Skin", 300, false))

		mock.ExpectRollback()

		_, err := service.AuthorizeSpend(ctx, "alice", "retired-skin", 300, HoldOptions{})
		assert.ErrorIs(t, err, ErrItemNotActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown item", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM shop_items").
			WithArgs("no-such-sku").
			WillReturnError(sql.ErrNoRows)

		mock.ExpectRollback()

		_, err := service.AuthorizeSpend(ctx, "alice", "no-such-sku", 100, HoldOptions{})
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays stored hold for reused key", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("WHERE h.idempotency_key").
			WithArgs("checkout-5").
			WillReturnRows(sqlmock.NewRows(append(holdCols(), "owner_id")).
				AddRow("hold-1", 1, "avatar-frame-gold", 500, "authorized", time.Now().Add(10*time.Minute),
					"checkout-5", 0, []byte(`{}`), time.Now(), time.Now(), "alice"))

		mock.ExpectCommit()

		hold, err := service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", 500, HoldOptions{IdempotencyKey: "checkout-5"})
		assert.NoError(t, err)
		assert.Equal(t, "hold-1", hold.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict when key reused for different sku", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("WHERE h.idempotency_key").
			WithArgs("checkout-5").
			WillReturnRows(sqlmock.NewRows(append(holdCols(), "owner_id")).
				AddRow("hold-1", 1, "avatar-frame-gold", 500, "authorized", time.Now().Add(10*time.Minute),
					"checkout-5", 0, []byte(`{}`), time.Now(), time.Now(), "alice"))

		mock.ExpectRollback()

		_, err := service.AuthorizeSpend(ctx, "alice", "nickname-glow", 500, HoldOptions{IdempotencyKey: "checkout-5"})
		assert.ErrorIs(t, err, ErrIdempotencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict when key reused for different amount", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("WHERE h.idempotency_key").
			WithArgs("checkout-5").
			WillReturnRows(sqlmock.NewRows(append(holdCols(), "owner_id")).
				AddRow("hold-1", 1, "avatar-frame-gold", 500, "authorized", time.Now().Add(10*time.Minute),
					"checkout-5", 0, []byte(`{}`), time.Now(), time.Now(), "alice"))

		mock.ExpectRollback()

		_, err := service.AuthorizeSpend(ctx, "alice", "avatar-frame-gold", 900, HoldOptions{IdempotencyKey: "checkout-5"})
		assert.ErrorIs(t, err, ErrIdempotencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_Capture(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()
	future := time.Now().Add(10 * time.Minute)

	t.Run("captures authorized hold and writes purchase debit", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-1").
			WillReturnRows(lockedHoldRow("hold-1", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, future, 0, "alice"))

		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs(int64(1)).
			WillReturnRows(walletRows(1, "alice", 1000, false))

		mock.ExpectQuery("INSERT INTO ledger_entries").
			WithArgs(int64(1), int64(-500), "shop-purchase-debit", "checkout", "", sqlmock.AnyArg(),
				"", "", "", 0, int64(500)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(80))

		mock.ExpectExec("UPDATE wallets").
			WithArgs(int64(500), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec("UPDATE reservation_holds").
			WithArgs("captured", int64(80), "hold-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		result, err := service.Capture(ctx, "alice", "hold-1", "checkout")
		assert.NoError(t, err)
		assert.Equal(t, int64(80), result.EntryID)
		assert.Equal(t, int64(500), result.Balance)
		assert.Equal(t, models.HoldStatusCaptured, result.Hold.Status)
		assert.False(t, result.Replayed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("capturing a captured hold replays the stored outcome", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-1").
			WillReturnRows(lockedHoldRow("hold-1", 1, "avatar-frame-gold", 500, models.HoldStatusCaptured, future, 80, "alice"))

		mock.ExpectQuery("SELECT balance_after FROM ledger_entries").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows([]string{"balance_after"}).AddRow(500))

		mock.ExpectCommit()

		result, err := service.Capture(ctx, "alice", "hold-1", "")
		assert.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, int64(80), result.EntryID)
		assert.Equal(t, int64(500), result.Balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cannot capture a released hold", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-2").
			WillReturnRows(lockedHoldRow("hold-2", 1, "avatar-frame-gold", 500, models.HoldStatusReleased, future, 0, "alice"))

		mock.ExpectRollback()

		_, err := service.Capture(ctx, "alice", "hold-2", "")
		assert.ErrorIs(t, err, ErrInvalidStateTransition)

		var transition *StateTransitionError
		assert.ErrorAs(t, err, &transition)
		assert.Equal(t, "capture", transition.Op)
		assert.Equal(t, models.HoldStatusReleased, transition.From)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cannot capture an expired hold", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-3").
			WillReturnRows(lockedHoldRow("hold-3", 1, "avatar-frame-gold", 500, models.HoldStatusExpired, future, 0, "alice"))

		mock.ExpectRollback()

		_, err := service.Capture(ctx, "alice", "hold-3", "")
		assert.ErrorIs(t, err, ErrHoldExpired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("past-deadline hold is marked expired and the mark is committed", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-4").
			WillReturnRows(lockedHoldRow("hold-4", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, time.Now().Add(-time.Minute), 0, "alice"))

		mock.ExpectExec("UPDATE reservation_holds").
			WithArgs("expired", 0, "hold-4").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		_, err := service.Capture(ctx, "alice", "hold-4", "")
		assert.ErrorIs(t, err, ErrHoldExpired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient funds at capture time", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-5").
			WillReturnRows(lockedHoldRow("hold-5", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, future, 0, "alice"))

		// Balance dropped below the held amount since authorization.
		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs(int64(1)).
			WillReturnRows(walletRows(1, "alice", 300, false))

		mock.ExpectRollback()

		_, err := service.Capture(ctx, "alice", "hold-5", "")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown hold", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		mock.ExpectRollback()

		_, err := service.Capture(ctx, "alice", "nope", "")
		assert.ErrorIs(t, err, ErrHoldNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hold on another wallet reports not-found", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-6").
			WillReturnRows(lockedHoldRow("hold-6", 2, "avatar-frame-gold", 500, models.HoldStatusAuthorized, future, 0, "bob"))

		mock.ExpectRollback()

		_, err := service.Capture(ctx, "alice", "hold-6", "")
		assert.ErrorIs(t, err, ErrHoldNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()
	future := time.Now().Add(10 * time.Minute)

	t.Run("releases authorized hold", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-1").
			WillReturnRows(lockedHoldRow("hold-1", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, future, 0, "alice"))

		mock.ExpectExec("UPDATE reservation_holds").
			WithArgs("released", 0, "hold-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		hold, err := service.Release(ctx, "alice", "hold-1")
		assert.NoError(t, err)
		assert.Equal(t, models.HoldStatusReleased, hold.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("releasing a released hold is a no-op", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-1").
			WillReturnRows(lockedHoldRow("hold-1", 1, "avatar-frame-gold", 500, models.HoldStatusReleased, future, 0, "alice"))

		mock.ExpectCommit()

		hold, err := service.Release(ctx, "alice", "hold-1")
		assert.NoError(t, err)
		assert.Equal(t, models.HoldStatusReleased, hold.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("releasing an expired hold is a no-op", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-2").
			WillReturnRows(lockedHoldRow("hold-2", 1, "avatar-frame-gold", 500, models.HoldStatusExpired, future, 0, "alice"))

		mock.ExpectCommit()

		hold, err := service.Release(ctx, "alice", "hold-2")
		assert.NoError(t, err)
		assert.Equal(t, models.HoldStatusExpired, hold.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cannot release a captured hold", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-3").
			WillReturnRows(lockedHoldRow("hold-3", 1, "avatar-frame-gold", 500, models.HoldStatusCaptured, future, 80, "alice"))

		mock.ExpectRollback()

		_, err := service.Release(ctx, "alice", "hold-3")
		assert.ErrorIs(t, err, ErrInvalidStateTransition)

		var transition *StateTransitionError
		assert.ErrorAs(t, err, &transition)
		assert.Equal(t, "release", transition.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("past-deadline hold settles as expired", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-4").
			WillReturnRows(lockedHoldRow("hold-4", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, time.Now().Add(-time.Minute), 0, "alice"))

		mock.ExpectExec("UPDATE reservation_holds").
			WithArgs("expired", 0, "hold-4").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		hold, err := service.Release(ctx, "alice", "hold-4")
		assert.NoError(t, err)
		assert.Equal(t, models.HoldStatusExpired, hold.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hold on another wallet reports not-found", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-5").
			WillReturnRows(lockedHoldRow("hold-5", 2, "avatar-frame-gold", 500, models.HoldStatusAuthorized, future, 0, "bob"))

		mock.ExpectRollback()

		_, err := service.Release(ctx, "alice", "hold-5")
		assert.ErrorIs(t, err, ErrHoldNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_Refund(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()

	targetCols := []string{"wallet_id", "amount", "reason", "owner_id"}

	t.Run("partial refund writes compensating credit", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows(targetCols).AddRow(1, -500, "shop-purchase-debit", "alice"))

		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs(int64(1)).
			WillReturnRows(walletRows(1, "alice", 500, false))

		mock.ExpectQuery("WHERE refund_of").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))

		mock.ExpectQuery("INSERT INTO ledger_entries").
			WithArgs(int64(1), int64(200), "shop-refund-credit", "", "", sqlmock.AnyArg(),
				"", "", "", int64(80), int64(700)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(90))

		mock.ExpectExec("UPDATE wallets").
			WithArgs(int64(700), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		result, err := service.Refund(ctx, "alice", 80, 200, EntryOptions{})
		assert.NoError(t, err)
		assert.Equal(t, int64(90), result.EntryID)
		assert.Equal(t, int64(700), result.Balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cumulative refunds never exceed the captured amount", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows(targetCols).AddRow(1, -500, "shop-purchase-debit", "alice"))

		mock.ExpectQuery("SELECT id, owner_id, balance, allow_overdraft").
			WithArgs(int64(1)).
			WillReturnRows(walletRows(1, "alice", 900, false))

		// 400 already refunded: only 100 left refundable.
		mock.ExpectQuery("WHERE refund_of").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(400))

		mock.ExpectRollback()

		_, err := service.Refund(ctx, "alice", 80, 200, EntryOptions{})
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Contains(t, err.Error(), "exceeds remaining refundable")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("target must be a purchase debit", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(targetCols).AddRow(1, 1000, "participation-award", "alice"))

		mock.ExpectRollback()

		_, err := service.Refund(ctx, "alice", 42, 200, EntryOptions{})
		assert.ErrorIs(t, err, ErrInvalidTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown target entry", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(9999)).
			WillReturnError(sql.ErrNoRows)

		mock.ExpectRollback()

		_, err := service.Refund(ctx, "alice", 9999, 200, EntryOptions{})
		assert.ErrorIs(t, err, ErrInvalidTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays refund for reused key", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows(targetCols).AddRow(1, -500, "shop-purchase-debit", "alice"))

		mock.ExpectQuery("WHERE le.idempotency_key").
			WithArgs("refund-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "reason", "balance_after", "owner_id"}).
				AddRow(90, 1, 200, "shop-refund-credit", 700, "alice"))

		mock.ExpectCommit()

		result, err := service.Refund(ctx, "alice", 80, 200, EntryOptions{IdempotencyKey: "refund-1"})
		assert.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, int64(90), result.EntryID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := service.Refund(ctx, "alice", 80, 0, EntryOptions{})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("entry on another wallet is rejected", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT le.wallet_id, le.amount, le.reason").
			WithArgs(int64(80)).
			WillReturnRows(sqlmock.NewRows(targetCols).AddRow(2, -500, "shop-purchase-debit", "bob"))

		mock.ExpectRollback()

		_, err := service.Refund(ctx, "alice", 80, 200, EntryOptions{})
		assert.ErrorIs(t, err, ErrInvalidTransaction)
		assert.Contains(t, err.Error(), "does not belong")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_AvailableBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()

	t.Run("subtracts live authorized holds", func(t *testing.T) {
		mock.ExpectQuery("SELECT w.balance").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"balance", "available"}).AddRow(1000, 300))

		snapshot, err := service.AvailableBalance(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, int64(1000), snapshot.Balance)
		assert.Equal(t, int64(300), snapshot.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown owner reports zeros", func(t *testing.T) {
		mock.ExpectQuery("SELECT w.balance").
			WithArgs("stranger").
			WillReturnError(sql.ErrNoRows)

		snapshot, err := service.AvailableBalance(ctx, "stranger")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), snapshot.Balance)
		assert.Equal(t, int64(0), snapshot.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_ExpireDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)

	t.Run("flips overdue authorized holds", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservation_holds").
			WillReturnResult(sqlmock.NewResult(0, 3))

		mock.ExpectQuery("FROM reservation_holds WHERE status").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		expired, err := service.ExpireDue(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(3), expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHoldService_GetHold(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := newHoldService(db)
	ctx := context.Background()

	t.Run("returns hold by id", func(t *testing.T) {
		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("hold-1").
			WillReturnRows(holdRow("hold-1", 1, "avatar-frame-gold", 500, models.HoldStatusAuthorized, time.Now().Add(time.Minute), 0))

		hold, err := service.GetHold(ctx, "hold-1")
		assert.NoError(t, err)
		assert.Equal(t, "hold-1", hold.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown hold", func(t *testing.T) {
		mock.ExpectQuery("FROM reservation_holds h").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := service.GetHold(ctx, "nope")
		assert.ErrorIs(t, err, ErrHoldNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
