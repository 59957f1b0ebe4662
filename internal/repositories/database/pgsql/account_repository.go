package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the business entities
// the resolver looks up: financial accounts, tax categories, employees.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const financialAccountColumns = `
	account_id, owner_id, type, currency, ledger_account_id,
	created_at, created_by, last_updated_at, last_updated_by`

// FindFinancialAccountByID retrieves a financial account by its id.
func (r *PgxAccountRepository) FindFinancialAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error) {
	query := `SELECT ` + financialAccountColumns + ` FROM financial_accounts WHERE account_id = $1;`

	var account domain.FinancialAccount
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID, &account.OwnerID, &account.Type, &account.Currency, &account.LedgerAccountID,
		&account.CreatedAt, &account.CreatedBy, &account.LastUpdatedAt, &account.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("financial account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find financial account %s: %w", accountID, err)
	}
	return &account, nil
}

// FindFinancialAccountsByIDs retrieves multiple accounts keyed by id.
func (r *PgxAccountRepository) FindFinancialAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.FinancialAccount{}, nil
	}
	query := `SELECT ` + financialAccountColumns + ` FROM financial_accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.FinancialAccount, len(accountIDs))
	for rows.Next() {
		var account domain.FinancialAccount
		err := rows.Scan(
			&account.AccountID, &account.OwnerID, &account.Type, &account.Currency, &account.LedgerAccountID,
			&account.CreatedAt, &account.CreatedBy, &account.LastUpdatedAt, &account.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial account: %w", err)
		}
		accounts[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial accounts: %w", err)
	}
	return accounts, nil
}

// FindTaxCategoryByID retrieves a tax category by its id.
func (r *PgxAccountRepository) FindTaxCategoryByID(ctx context.Context, taxCategoryID string) (*domain.TaxCategory, error) {
	query := `
		SELECT tax_category_id, name, ledger_account_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM tax_categories
		WHERE tax_category_id = $1;`

	var category domain.TaxCategory
	err := r.Pool.QueryRow(ctx, query, taxCategoryID).Scan(
		&category.TaxCategoryID, &category.Name, &category.LedgerAccountID,
		&category.CreatedAt, &category.CreatedBy, &category.LastUpdatedAt, &category.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tax category %s: %w", taxCategoryID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find tax category %s: %w", taxCategoryID, err)
	}
	return &category, nil
}

// FindEmployeeByID retrieves an employee by its id.
func (r *PgxAccountRepository) FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	query := `
		SELECT employee_id, owner_id, name, ledger_account_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM employees
		WHERE employee_id = $1;`

	var employee domain.Employee
	err := r.Pool.QueryRow(ctx, query, employeeID).Scan(
		&employee.EmployeeID, &employee.OwnerID, &employee.Name, &employee.LedgerAccountID,
		&employee.CreatedAt, &employee.CreatedBy, &employee.LastUpdatedAt, &employee.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", employeeID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find employee %s: %w", employeeID, err)
	}
	return &employee, nil
}
