package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
)

// businessTripGenerator books trip expenses reimbursed to employees: each
// expense debits the business trip tax category and credits the employee,
// converted at the expense date.
type businessTripGenerator struct {
	resolver      portssvc.ResolverSvcFacade
	taxCategoryID string
}

// NewBusinessTripGenerator creates the business trip generator.
func NewBusinessTripGenerator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) Generator {
	return &businessTripGenerator{
		resolver:      resolver,
		taxCategoryID: cfg.BusinessTripTaxCategoryID,
	}
}

// Generate implements Generator.
func (g *businessTripGenerator) Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error) {
	charge := bundle.Charge
	if len(bundle.TripExpenses) == 0 {
		return nil, &apperrors.ValidationError{Charge: charge.ChargeID, Rule: "business trip charge has no expenses"}
	}

	tripRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.taxCategoryID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "business trip tax category"}
	}

	local := g.resolver.LocalCurrency()
	entries := make([]domain.LedgerEntry, 0, len(bundle.TripExpenses))
	for _, expense := range bundle.TripExpenses {
		if !expense.Amount.IsPositive() {
			return nil, &apperrors.ValidationError{
				Charge: charge.ChargeID,
				Rule:   "trip expense " + expense.TripExpenseID + " must have a positive amount",
			}
		}
		employeeRef, err := g.resolver.ResolveEmployeeAccount(ctx, expense.EmployeeID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "employee " + expense.EmployeeID}
		}
		localAmount, err := g.resolver.ToLocal(ctx, expense.Amount, expense.Currency, expense.ExpenseDate)
		if err != nil {
			return nil, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
		}

		entry := domain.LedgerEntry{
			ID:                 expense.TripExpenseID,
			InvoiceDate:        expense.ExpenseDate,
			ValueDate:          expense.ExpenseDate,
			Currency:           expense.Currency,
			CreditAccountID1:   employeeRef,
			DebitAccountID1:    tripRef,
			CreditLocalAmount1: localAmount,
			DebitLocalAmount1:  localAmount,
			Description:        expense.Category + ", " + expense.Destination,
			Reference:          charge.ChargeID,
			OwnerID:            charge.OwnerID,
		}
		if expense.Currency != local {
			foreign := expense.Amount
			entry.CreditForeignAmount1 = &foreign
			entry.DebitForeignAmount1 = &foreign
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
