package repositories

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// FinancialAccountReader defines read operations for financial accounts.
type FinancialAccountReader interface {
	// FindFinancialAccountByID retrieves a financial account by its id.
	FindFinancialAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error)

	// FindFinancialAccountsByIDs retrieves multiple accounts keyed by id.
	FindFinancialAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error)
}

// TaxCategoryReader defines read operations for tax categories.
type TaxCategoryReader interface {
	// FindTaxCategoryByID retrieves a tax category by its id.
	FindTaxCategoryByID(ctx context.Context, taxCategoryID string) (*domain.TaxCategory, error)
}

// EmployeeReader defines read operations for employees.
type EmployeeReader interface {
	// FindEmployeeByID retrieves an employee by its id.
	FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error)
}

// AccountRepositoryFacade combines the business-entity lookups consumed by
// the resolver.
type AccountRepositoryFacade interface {
	FinancialAccountReader
	TaxCategoryReader
	EmployeeReader
}
