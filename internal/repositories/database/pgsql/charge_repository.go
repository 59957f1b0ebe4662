package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxChargeRepository struct {
	BaseRepository
}

// newPgxChargeRepository creates a new repository for charges and their
// related rows (transactions, salary records, trip expenses).
func newPgxChargeRepository(pool *pgxpool.Pool) portsrepo.ChargeRepositoryFacade {
	return &PgxChargeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ChargeRepositoryFacade = (*PgxChargeRepository)(nil)

// FindChargeByID retrieves a charge by its unique identifier.
func (r *PgxChargeRepository) FindChargeByID(ctx context.Context, chargeID string) (*domain.Charge, error) {
	query := `
		SELECT charge_id, owner_id, kind, tax_category_id, description, event_date,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM charges
		WHERE charge_id = $1;`

	var charge domain.Charge
	var taxCategoryID sql.NullString
	err := r.Pool.QueryRow(ctx, query, chargeID).Scan(
		&charge.ChargeID, &charge.OwnerID, &charge.Kind, &taxCategoryID,
		&charge.Description, &charge.EventDate,
		&charge.CreatedAt, &charge.CreatedBy, &charge.LastUpdatedAt, &charge.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("charge %s: %w", chargeID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find charge %s: %w", chargeID, err)
	}
	charge.TaxCategoryID = nullableString(taxCategoryID)
	return &charge, nil
}

// SaveCharge persists a new charge.
func (r *PgxChargeRepository) SaveCharge(ctx context.Context, charge domain.Charge) error {
	query := `
		INSERT INTO charges (charge_id, owner_id, kind, tax_category_id, description, event_date,
		                     created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err := r.Pool.Exec(ctx, query,
		charge.ChargeID, charge.OwnerID, charge.Kind, charge.TaxCategoryID,
		charge.Description, charge.EventDate,
		charge.CreatedAt, charge.CreatedBy, charge.LastUpdatedAt, charge.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save charge %s: %w", charge.ChargeID, err)
	}
	return nil
}

// FindTransactionsByChargeID retrieves the raw transactions attached to a
// charge, in stored order.
func (r *PgxChargeRepository) FindTransactionsByChargeID(ctx context.Context, chargeID string) ([]domain.TransactionRecord, error) {
	query := `
		SELECT transaction_id, charge_id, financial_account_id, currency, amount,
		       event_date, value_date, fee_kind, source_description,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM transactions
		WHERE charge_id = $1
		ORDER BY event_date, transaction_id;`

	rows, err := r.Pool.Query(ctx, query, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for charge %s: %w", chargeID, err)
	}
	defer rows.Close()

	var transactions []domain.TransactionRecord
	for rows.Next() {
		var txn domain.TransactionRecord
		err := rows.Scan(
			&txn.TransactionID, &txn.ChargeID, &txn.FinancialAccountID, &txn.Currency, &txn.Amount,
			&txn.EventDate, &txn.ValueDate, &txn.FeeKind, &txn.SourceDescription,
			&txn.CreatedAt, &txn.CreatedBy, &txn.LastUpdatedAt, &txn.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// FindSalaryRecordsByChargeID retrieves the per-employee salary records
// attached to a salary charge.
func (r *PgxChargeRepository) FindSalaryRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.SalaryRecord, error) {
	query := `
		SELECT salary_record_id, charge_id, employee_id, month,
		       base_salary, gross_salary, income_tax, social_security_employee, health_insurance,
		       social_security_employer, compensation_employer,
		       pension_fund_id, pension_employee, pension_employer,
		       training_fund_id, training_employee, training_employer, zkufot,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM salary_records
		WHERE charge_id = $1
		ORDER BY employee_id, salary_record_id;`

	rows, err := r.Pool.Query(ctx, query, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary records for charge %s: %w", chargeID, err)
	}
	defer rows.Close()

	var records []domain.SalaryRecord
	for rows.Next() {
		var record domain.SalaryRecord
		var pensionFundID, trainingFundID sql.NullString
		err := rows.Scan(
			&record.SalaryRecordID, &record.ChargeID, &record.EmployeeID, &record.Month,
			&record.BaseSalary, &record.GrossSalary, &record.IncomeTax, &record.SocialSecurityEmployee, &record.HealthInsurance,
			&record.SocialSecurityEmployer, &record.CompensationEmployer,
			&pensionFundID, &record.PensionEmployee, &record.PensionEmployer,
			&trainingFundID, &record.TrainingEmployee, &record.TrainingEmployer, &record.Zkufot,
			&record.CreatedAt, &record.CreatedBy, &record.LastUpdatedAt, &record.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		record.PensionFundID = nullableString(pensionFundID)
		record.TrainingFundID = nullableString(trainingFundID)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary records: %w", err)
	}
	return records, nil
}

// FindTripExpensesByChargeID retrieves the attendee expense rows attached to a
// business trip charge.
func (r *PgxChargeRepository) FindTripExpensesByChargeID(ctx context.Context, chargeID string) ([]domain.TripExpense, error) {
	query := `
		SELECT trip_expense_id, charge_id, employee_id, destination, category, currency, amount, expense_date
		FROM trip_expenses
		WHERE charge_id = $1
		ORDER BY expense_date, trip_expense_id;`

	rows, err := r.Pool.Query(ctx, query, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip expenses for charge %s: %w", chargeID, err)
	}
	defer rows.Close()

	var expenses []domain.TripExpense
	for rows.Next() {
		var expense domain.TripExpense
		err := rows.Scan(
			&expense.TripExpenseID, &expense.ChargeID, &expense.EmployeeID,
			&expense.Destination, &expense.Category, &expense.Currency, &expense.Amount, &expense.ExpenseDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trip expenses: %w", err)
	}
	return expenses, nil
}
