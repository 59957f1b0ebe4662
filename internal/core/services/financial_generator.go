package services

import (
	"context"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
)

// financialGenerator books financial adjustments (interest, revaluations,
// bank charges) between the charge's tax category and the account the money
// actually moved through. The transaction's sign picks the sides.
type financialGenerator struct {
	resolver portssvc.ResolverSvcFacade
	cfg      *config.Config
}

// NewFinancialGenerator creates the financial adjustment generator.
func NewFinancialGenerator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) Generator {
	return &financialGenerator{resolver: resolver, cfg: cfg}
}

// Generate implements Generator.
func (g *financialGenerator) Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error) {
	charge := bundle.Charge

	if !g.cfg.LedgerLockDate.IsZero() && !charge.EventDate.After(g.cfg.LedgerLockDate) {
		return nil, &apperrors.ValidationError{
			Charge: charge.ChargeID,
			Rule:   "target period falls on or before the ledger lock date " + g.cfg.LedgerLockDate.Format("2006-01-02"),
		}
	}
	if len(bundle.Transactions) == 0 {
		return nil, &apperrors.ValidationError{Charge: charge.ChargeID, Rule: "financial charge has no transactions"}
	}
	if charge.TaxCategoryID == nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "tax category of financial charge"}
	}

	categoryRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, *charge.TaxCategoryID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "tax category " + *charge.TaxCategoryID}
	}

	entries := make([]domain.LedgerEntry, 0, len(bundle.Transactions))
	for _, txn := range bundle.Transactions {
		accountRef, err := g.resolver.ResolveFinancialAccount(ctx, txn.FinancialAccountID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + txn.FinancialAccountID}
		}
		local, err := g.resolver.ToLocal(ctx, txn.Amount.Abs(), txn.Currency, txn.ValueDate)
		if err != nil {
			return nil, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
		}

		description := txn.SourceDescription
		if description == "" {
			description = charge.Description
		}
		entry := domain.LedgerEntry{
			ID:          txn.TransactionID,
			InvoiceDate: txn.EventDate,
			ValueDate:   txn.ValueDate,
			Currency:    txn.Currency,
			Description: description,
			Reference:   charge.ChargeID,
			OwnerID:     charge.OwnerID,
		}
		if txn.Amount.Sign() < 0 {
			// Money left the account: the adjustment is an expense.
			entry.CreditAccountID1 = accountRef
			entry.DebitAccountID1 = categoryRef
		} else {
			entry.CreditAccountID1 = categoryRef
			entry.DebitAccountID1 = accountRef
		}
		entry.CreditLocalAmount1 = local
		entry.DebitLocalAmount1 = local
		setForeign(&entry, txn, g.resolver.LocalCurrency())

		entries = append(entries, entry)
	}

	return entries, nil
}
