package repositories

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// LedgerReader defines read operations for persisted ledger records.
type LedgerReader interface {
	// FindLedgerRecordsByChargeID retrieves every ledger record stored for a
	// charge, in stored order.
	FindLedgerRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.LedgerRecord, error)
}

// LedgerWriter defines write operations for persisted ledger records.
type LedgerWriter interface {
	// InsertLedgerRecords bulk-inserts candidates for a charge that has no
	// stored records yet.
	InsertLedgerRecords(ctx context.Context, chargeID string, entries []domain.LedgerEntry, userID string) error

	// ApplyPlan executes a reconciliation plan inside a single database
	// transaction: a crash between insert and delete must never leave a
	// half-migrated ledger.
	ApplyPlan(ctx context.Context, chargeID string, plan domain.DiffPlan, userID string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
