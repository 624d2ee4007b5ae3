package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestExportService_ExportCSV(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewExportService(db)
	ctx := context.Background()

	exportCols := []string{"created_at", "amount", "reason", "note", "idempotency_key"}

	t.Run("streams signed amounts oldest first", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY le.created_at ASC, le.id ASC").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(exportCols).
				AddRow(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), 1500, "prize-payout", "season finale", "evt-1").
				AddRow(time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC), -500, "shop-purchase-debit", "", "").
				AddRow(time.Date(2026, 7, 3, 8, 0, 0, 0, time.UTC), 200, "manual-adjustment", "goodwill, support ticket", ""))

		var buf bytes.Buffer
		assert.NoError(t, service.ExportCSV(ctx, "alice", time.Time{}, time.Time{}, &buf))

		expected := "created_at,amount,reason,note,idempotency_key\n" +
			"2026-07-01T10:00:00Z,1500,prize-payout,season finale,evt-1\n" +
			"2026-07-02T09:30:00Z,-500,shop-purchase-debit,,\n" +
			"2026-07-03T08:00:00Z,200,manual-adjustment,\"goodwill, support ticket\",\n"
		assert.Equal(t, expected, buf.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("export carries no owner identity", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY le.created_at ASC, le.id ASC").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(exportCols).
				AddRow(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), 1500, "prize-payout", "", "evt-1"))

		var buf bytes.Buffer
		assert.NoError(t, service.ExportCSV(ctx, "alice", time.Time{}, time.Time{}, &buf))

		assert.NotContains(t, buf.String(), "alice")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown owner yields header only", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY le.created_at ASC, le.id ASC").
			WithArgs("stranger").
			WillReturnRows(sqlmock.NewRows(exportCols))

		var buf bytes.Buffer
		assert.NoError(t, service.ExportCSV(ctx, "stranger", time.Time{}, time.Time{}, &buf))

		assert.Equal(t, "created_at,amount,reason,note,idempotency_key\n", buf.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bounds the window when since and until are set", func(t *testing.T) {
		since := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		until := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)

		mock.ExpectQuery("ORDER BY le.created_at ASC, le.id ASC").
			WithArgs("alice", since, until).
			WillReturnRows(sqlmock.NewRows(exportCols))

		var buf bytes.Buffer
		assert.NoError(t, service.ExportCSV(ctx, "alice", since, until, &buf))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		var buf bytes.Buffer
		err := service.ExportCSV(ctx, "", time.Time{}, time.Time{}, &buf)
		assert.ErrorIs(t, err, ErrInvalidWallet)
	})
}
