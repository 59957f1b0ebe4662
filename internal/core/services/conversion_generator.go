package services

import (
	"context"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
)

// conversionGenerator books currency conversions: the sold and the bought
// side each post against the conversion clearing account, and whatever the
// rate spread leaves open is closed here against the exchange-difference
// category. Conversions settle on one value date, so the balance validator's
// multi-date closing rule can never repair them; the generator has to hand
// over a balanced set.
type conversionGenerator struct {
	resolver                portssvc.ResolverSvcFacade
	conversionTaxCategoryID string
	exchangeDifferenceID    string
}

// NewConversionGenerator creates the conversion generator.
func NewConversionGenerator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) Generator {
	return &conversionGenerator{
		resolver:                resolver,
		conversionTaxCategoryID: cfg.ConversionTaxCategoryID,
		exchangeDifferenceID:    cfg.ExchangeDifferenceID,
	}
}

// Generate implements Generator.
func (g *conversionGenerator) Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error) {
	charge := bundle.Charge

	var principals []domain.TransactionRecord
	for _, txn := range bundle.Transactions {
		if !txn.IsFee() {
			principals = append(principals, txn)
		}
	}
	if len(principals) != 2 {
		return nil, &apperrors.ValidationError{
			Charge: charge.ChargeID,
			Rule:   fmt.Sprintf("conversion requires exactly 2 non-fee transactions, got %d", len(principals)),
		}
	}
	if principals[0].Amount.Sign()*principals[1].Amount.Sign() >= 0 {
		return nil, &apperrors.ValidationError{
			Charge: charge.ChargeID,
			Rule:   "conversion transactions must have strictly opposite signed amounts",
		}
	}
	if principals[0].Currency == principals[1].Currency {
		return nil, &apperrors.ValidationError{
			Charge: charge.ChargeID,
			Rule:   "conversion transactions must be in different currencies",
		}
	}

	sold, bought := principals[0], principals[1]
	if sold.Amount.Sign() > 0 {
		sold, bought = bought, sold
	}

	clearingRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.conversionTaxCategoryID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "conversion tax category"}
	}

	local := g.resolver.LocalCurrency()
	soldLocal, err := g.resolver.ToLocal(ctx, sold.Amount.Abs(), sold.Currency, sold.ValueDate)
	if err != nil {
		return nil, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
	}
	boughtLocal, err := g.resolver.ToLocal(ctx, bought.Amount.Abs(), bought.Currency, bought.ValueDate)
	if err != nil {
		return nil, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
	}

	soldAccountRef, err := g.resolver.ResolveFinancialAccount(ctx, sold.FinancialAccountID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + sold.FinancialAccountID}
	}
	boughtAccountRef, err := g.resolver.ResolveFinancialAccount(ctx, bought.FinancialAccountID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + bought.FinancialAccountID}
	}

	soldLeg := domain.LedgerEntry{
		ID:                 sold.TransactionID,
		InvoiceDate:        sold.EventDate,
		ValueDate:          sold.ValueDate,
		Currency:           sold.Currency,
		CreditAccountID1:   soldAccountRef,
		DebitAccountID1:    clearingRef,
		CreditLocalAmount1: soldLocal,
		DebitLocalAmount1:  soldLocal,
		Description:        "Currency conversion " + sold.Currency + " to " + bought.Currency,
		Reference:          charge.ChargeID,
		OwnerID:            charge.OwnerID,
	}
	setForeign(&soldLeg, sold, local)

	// The clearing account releases the sold side's local value; the
	// receiving account books what the bought amount is worth.
	boughtLeg := domain.LedgerEntry{
		ID:                 bought.TransactionID,
		InvoiceDate:        bought.EventDate,
		ValueDate:          bought.ValueDate,
		Currency:           bought.Currency,
		CreditAccountID1:   clearingRef,
		DebitAccountID1:    boughtAccountRef,
		CreditLocalAmount1: soldLocal,
		DebitLocalAmount1:  boughtLocal,
		Description:        "Currency conversion " + sold.Currency + " to " + bought.Currency,
		Reference:          charge.ChargeID,
		OwnerID:            charge.OwnerID,
	}
	setForeign(&boughtLeg, bought, local)

	entries := []domain.LedgerEntry{soldLeg, boughtLeg}

	spread := soldLocal.Sub(boughtLocal)
	if spread.Abs().LessThan(accounting.Tolerance) {
		return entries, nil
	}

	exchangeRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.exchangeDifferenceID)
	if err != nil {
		return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "exchange rate difference tax category"}
	}
	closing := domain.LedgerEntry{
		ID:          charge.ChargeID + ":conversion-spread",
		InvoiceDate: bought.ValueDate,
		ValueDate:   bought.ValueDate,
		Currency:    local,
		Description: "Conversion rate spread",
		Reference:   charge.ChargeID,
		OwnerID:     charge.OwnerID,
	}
	if spread.IsPositive() {
		closing.DebitAccountID1 = exchangeRef
		closing.DebitLocalAmount1 = spread
	} else {
		closing.CreditAccountID1 = exchangeRef
		closing.CreditLocalAmount1 = spread.Neg()
	}

	return append(entries, closing), nil
}
