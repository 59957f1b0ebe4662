package services

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
)

// BalanceValidator checks that a charge's candidate entry set nets to zero
// in local currency before it may reach reconciliation.
type BalanceValidator struct {
	resolver             portssvc.ResolverSvcFacade
	exchangeDifferenceID string
}

// NewBalanceValidator creates a validator closing legitimate gaps against the
// configured exchange-rate-difference tax category.
func NewBalanceValidator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) *BalanceValidator {
	return &BalanceValidator{
		resolver:             resolver,
		exchangeDifferenceID: cfg.ExchangeDifferenceID,
	}
}

// Validate passes a balanced set through unchanged. An imbalanced set that
// spans multiple value dates AND multiple currencies gets a synthetic
// exchange-adjustment leg closing the gap; any other imbalance is a
// BalanceError carrying the unresolved delta and the condition that blocked
// auto-closing. Imbalances are never silently dropped.
func (v *BalanceValidator) Validate(ctx context.Context, chargeID string, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	imbalance := accounting.LocalImbalance(entries)
	if imbalance.Abs().LessThan(accounting.Tolerance) {
		return entries, nil
	}

	days := make(map[string]struct{})
	currencies := make(map[string]struct{})
	var latestValueDate time.Time
	for _, e := range entries {
		days[e.ValueDate.UTC().Format("2006-01-02")] = struct{}{}
		currencies[e.Currency] = struct{}{}
		if e.ValueDate.After(latestValueDate) {
			latestValueDate = e.ValueDate
		}
	}

	multiDate := len(days) > 1
	multiCurrency := len(currencies) > 1
	if !multiDate || !multiCurrency {
		var reason string
		switch {
		case !multiDate && !multiCurrency:
			reason = "imbalance confined to a single value date and a single currency"
		case !multiDate:
			reason = "imbalance confined to a single value date"
		default:
			reason = "imbalance confined to a single currency"
		}
		return nil, &apperrors.BalanceError{Charge: chargeID, Delta: imbalance, Reason: reason}
	}

	accountID, err := v.resolver.ResolveTaxCategoryAccount(ctx, v.exchangeDifferenceID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: chargeID, Concept: "exchange rate difference tax category"}
	}

	closing := domain.LedgerEntry{
		ID:          chargeID + ":exchange-adjustment",
		InvoiceDate: latestValueDate,
		ValueDate:   latestValueDate,
		Currency:    v.resolver.LocalCurrency(),
		Description: "Exchange rate differences",
		Reference:   chargeID,
	}
	if len(entries) > 0 {
		closing.OwnerID = entries[0].OwnerID
	}
	if imbalance.IsPositive() {
		// Credits exceed debits; the adjustment debits the difference away.
		closing.DebitAccountID1 = accountID
		closing.DebitLocalAmount1 = imbalance
	} else {
		closing.CreditAccountID1 = accountID
		closing.CreditLocalAmount1 = imbalance.Neg()
	}

	return append(entries, closing), nil
}
