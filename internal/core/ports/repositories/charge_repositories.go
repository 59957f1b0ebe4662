package repositories

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// ChargeReader defines read operations for charges and their related rows.
type ChargeReader interface {
	// FindChargeByID retrieves a charge by its unique identifier.
	FindChargeByID(ctx context.Context, chargeID string) (*domain.Charge, error)

	// FindTransactionsByChargeID retrieves the raw transactions attached to a
	// charge, in stored order.
	FindTransactionsByChargeID(ctx context.Context, chargeID string) ([]domain.TransactionRecord, error)
}

// ChargeWriter defines write operations for charges.
type ChargeWriter interface {
	// SaveCharge persists a new charge.
	SaveCharge(ctx context.Context, charge domain.Charge) error
}

// SalaryReader defines read operations for payroll data.
type SalaryReader interface {
	// FindSalaryRecordsByChargeID retrieves the per-employee salary records
	// attached to a salary charge.
	FindSalaryRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.SalaryRecord, error)
}

// TripReader defines read operations for business trip expense data.
type TripReader interface {
	// FindTripExpensesByChargeID retrieves the attendee expense rows attached
	// to a business trip charge.
	FindTripExpensesByChargeID(ctx context.Context, chargeID string) ([]domain.TripExpense, error)
}

// ChargeRepositoryFacade combines charge, salary, and trip data access.
type ChargeRepositoryFacade interface {
	ChargeReader
	ChargeWriter
	SalaryReader
	TripReader
}
