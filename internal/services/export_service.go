package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"
)

// exportHeader is the fixed CSV contract. The export carries no owner
// identity fields: rows are already scoped to one wallet and the file
// may leave the system.
var exportHeader = []string{"created_at", "amount", "reason", "note", "idempotency_key"}

// ExportService streams a wallet's ledger history as CSV.
type ExportService struct {
	db *sql.DB
}

func NewExportService(db *sql.DB) *ExportService {
	return &ExportService{db: db}
}

// ExportCSV writes the owner's entries to w in chronological order,
// optionally bounded by since/until. Unknown owners produce a header-only
// file. Amounts stay signed integers in the smallest unit.
func (s *ExportService) ExportCSV(ctx context.Context, ownerID string, since, until time.Time, w io.Writer) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidWallet)
	}

	query := `
		SELECT le.created_at, le.amount, le.reason, le.note, COALESCE(le.idempotency_key, '')
		FROM ledger_entries le
		JOIN wallets w ON w.id = le.wallet_id
		WHERE w.owner_id = $1`
	args := []any{ownerID}

	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND le.created_at >= $%d", len(args))
	}
	if !until.IsZero() {
		args = append(args, until)
		query += fmt.Sprintf(" AND le.created_at <= $%d", len(args))
	}
	query += " ORDER BY le.created_at ASC, le.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	count := 0
	for rows.Next() {
		var (
			createdAt time.Time
			amount    int64
			reason    string
			note      string
			key       string
		)
		if err := rows.Scan(&createdAt, &amount, &reason, &note, &key); err != nil {
			return err
		}

		record := []string{
			createdAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(amount, 10),
			reason,
			note,
			key,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	log.Printf("[ExportService] exported %d entries for owner %s", count, ownerID)
	return nil
}
