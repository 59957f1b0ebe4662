package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for persisted ledger records.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerRecordColumns = `
	record_id, charge_id, entry_ref, invoice_date, value_date, currency,
	credit_account_id1, credit_account_id2, debit_account_id1, debit_account_id2,
	credit_foreign_amount1, credit_foreign_amount2, debit_foreign_amount1, debit_foreign_amount2,
	credit_local_amount1, credit_local_amount2, debit_local_amount1, debit_local_amount2,
	description, reference, owner_id,
	created_at, created_by, last_updated_at, last_updated_by`

const insertLedgerRecordQuery = `
	INSERT INTO ledger_records (` + ledgerRecordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);`

// FindLedgerRecordsByChargeID retrieves every ledger record stored for a
// charge, in stored order.
func (r *PgxLedgerRepository) FindLedgerRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.LedgerRecord, error) {
	query := `SELECT ` + ledgerRecordColumns + `
		FROM ledger_records
		WHERE charge_id = $1
		ORDER BY created_at, record_id;`

	rows, err := r.Pool.Query(ctx, query, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger records for charge %s: %w", chargeID, err)
	}
	defer rows.Close()

	var records []domain.LedgerRecord
	for rows.Next() {
		record, err := scanLedgerRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger records: %w", err)
	}
	return records, nil
}

// InsertLedgerRecords bulk-inserts candidates for a charge that has no stored
// records yet.
func (r *PgxLedgerRepository) InsertLedgerRecords(ctx context.Context, chargeID string, entries []domain.LedgerEntry, userID string) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, entry := range entries {
		queueLedgerInsert(batch, chargeID, entry, userID, now)
	}
	if err := r.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert ledger records for charge %s: %w", chargeID, err)
	}
	return nil
}

// ApplyPlan executes a reconciliation plan inside a single database
// transaction: a crash between insert and delete must never leave a
// half-migrated ledger.
func (r *PgxLedgerRepository) ApplyPlan(ctx context.Context, chargeID string, plan domain.DiffPlan, userID string) error {
	if plan.IsEmpty() {
		return nil
	}
	now := time.Now().UTC()

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, entry := range plan.ToInsert {
		queueLedgerInsert(batch, chargeID, entry, userID, now)
	}

	updateQuery := `
		UPDATE ledger_records SET
			entry_ref = $1, invoice_date = $2, value_date = $3, currency = $4,
			credit_account_id1 = $5, credit_account_id2 = $6, debit_account_id1 = $7, debit_account_id2 = $8,
			credit_foreign_amount1 = $9, credit_foreign_amount2 = $10, debit_foreign_amount1 = $11, debit_foreign_amount2 = $12,
			credit_local_amount1 = $13, credit_local_amount2 = $14, debit_local_amount1 = $15, debit_local_amount2 = $16,
			description = $17, reference = $18, owner_id = $19,
			last_updated_at = $20, last_updated_by = $21
		WHERE record_id = $22 AND charge_id = $23;`
	for _, update := range plan.ToUpdate {
		entry := update.Entry
		batch.Queue(updateQuery,
			entry.ID, entry.InvoiceDate, entry.ValueDate, entry.Currency,
			entry.CreditAccountID1, entry.CreditAccountID2, entry.DebitAccountID1, entry.DebitAccountID2,
			entry.CreditForeignAmount1, entry.CreditForeignAmount2, entry.DebitForeignAmount1, entry.DebitForeignAmount2,
			entry.CreditLocalAmount1, entry.CreditLocalAmount2, entry.DebitLocalAmount1, entry.DebitLocalAmount2,
			entry.Description, entry.Reference, entry.OwnerID,
			now, userID,
			update.RecordID, chargeID,
		)
	}

	for _, recordID := range plan.ToRemove {
		batch.Queue(`DELETE FROM ledger_records WHERE record_id = $1 AND charge_id = $2;`, recordID, chargeID)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply reconciliation plan for charge %s: %w", chargeID, err)
	}

	return r.Commit(ctx, tx)
}

func queueLedgerInsert(batch *pgx.Batch, chargeID string, entry domain.LedgerEntry, userID string, now time.Time) {
	batch.Queue(insertLedgerRecordQuery,
		uuid.NewString(), chargeID, entry.ID, entry.InvoiceDate, entry.ValueDate, entry.Currency,
		entry.CreditAccountID1, entry.CreditAccountID2, entry.DebitAccountID1, entry.DebitAccountID2,
		entry.CreditForeignAmount1, entry.CreditForeignAmount2, entry.DebitForeignAmount1, entry.DebitForeignAmount2,
		entry.CreditLocalAmount1, entry.CreditLocalAmount2, entry.DebitLocalAmount1, entry.DebitLocalAmount2,
		entry.Description, entry.Reference, entry.OwnerID,
		now, userID, now, userID,
	)
}

func scanLedgerRecord(rows pgx.Rows) (domain.LedgerRecord, error) {
	var record domain.LedgerRecord
	var creditAccount2, debitAccount2 sql.NullString
	var creditForeign1, creditForeign2, debitForeign1, debitForeign2 decimal.NullDecimal
	var creditLocal2, debitLocal2 decimal.NullDecimal

	err := rows.Scan(
		&record.RecordID, &record.ChargeID, &record.ID, &record.InvoiceDate, &record.ValueDate, &record.Currency,
		&record.CreditAccountID1, &creditAccount2, &record.DebitAccountID1, &debitAccount2,
		&creditForeign1, &creditForeign2, &debitForeign1, &debitForeign2,
		&record.CreditLocalAmount1, &creditLocal2, &record.DebitLocalAmount1, &debitLocal2,
		&record.Description, &record.Reference, &record.OwnerID,
		&record.CreatedAt, &record.CreatedBy, &record.LastUpdatedAt, &record.LastUpdatedBy,
	)
	if err != nil {
		return domain.LedgerRecord{}, err
	}

	record.CreditAccountID2 = nullableString(creditAccount2)
	record.DebitAccountID2 = nullableString(debitAccount2)
	record.CreditForeignAmount1 = nullableDecimal(creditForeign1)
	record.CreditForeignAmount2 = nullableDecimal(creditForeign2)
	record.DebitForeignAmount1 = nullableDecimal(debitForeign1)
	record.DebitForeignAmount2 = nullableDecimal(debitForeign2)
	record.CreditLocalAmount2 = nullableDecimal(creditLocal2)
	record.DebitLocalAmount2 = nullableDecimal(debitLocal2)
	return record, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableDecimal(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	return &v.Decimal
}
