package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// RegenerationResult reports what one charge's regeneration did.
type RegenerationResult struct {
	ChargeID string          `json:"chargeID"`
	Plan     domain.DiffPlan `json:"plan"`
	// Unchanged is true when the stored records already matched the freshly
	// generated set exactly and no writes were performed.
	Unchanged bool `json:"unchanged"`
}

// LedgerSvcFacade drives ledger generation and reconciliation per charge.
type LedgerSvcFacade interface {
	// RegenerateLedger recomputes the ledger entries for one charge,
	// reconciles them against storage, and applies the resulting plan in a
	// single storage transaction. Safe to repeat: an unchanged charge plans
	// zero writes.
	RegenerateLedger(ctx context.Context, chargeID string, userID string) (*RegenerationResult, error)

	// RegenerateMany regenerates a batch of charges with per-charge
	// isolation: one charge's failure does not abort its siblings.
	RegenerateMany(ctx context.Context, chargeIDs []string, userID string) ([]RegenerationResult, []error)

	// GetLedgerRecords returns the records currently stored for a charge.
	GetLedgerRecords(ctx context.Context, chargeID string) ([]domain.LedgerRecord, error)
}
