package services

import (
	"context"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// InternalTransferGenerator builds ledger entries for money moved between
// two of the business's own accounts: one leg per principal transaction
// against the currency-derived transfer clearing account, plus any fee legs
// layered on top.
//
// The source leg books the outgoing amount into the clearing account; the
// destination leg releases the clearing account at the amount that was sent
// while booking the receiving account at the amount that actually arrived.
// When rates move between the two value dates the set is left with a
// residual for the balance validator to close or reject.
type InternalTransferGenerator struct {
	resolver          portssvc.ResolverSvcFacade
	feesTaxCategoryID string
}

// NewInternalTransferGenerator creates the internal transfer generator.
func NewInternalTransferGenerator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) Generator {
	return &InternalTransferGenerator{
		resolver:          resolver,
		feesTaxCategoryID: cfg.FeesTaxCategoryID,
	}
}

// principalParts holds the resolved inputs of one transfer leg.
type principalParts struct {
	accountRef  string
	transferRef string
	local       decimal.Decimal
}

// Generate implements Generator.
func (g *InternalTransferGenerator) Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error) {
	chargeID := bundle.Charge.ChargeID

	var principals, fees []domain.TransactionRecord
	for _, txn := range bundle.Transactions {
		if txn.IsFee() {
			fees = append(fees, txn)
		} else {
			principals = append(principals, txn)
		}
	}

	if len(principals) != 2 {
		return nil, &apperrors.ValidationError{
			Charge: chargeID,
			Rule:   fmt.Sprintf("internal transfer requires exactly 2 non-fee transactions, got %d", len(principals)),
		}
	}
	if principals[0].Amount.Sign()*principals[1].Amount.Sign() >= 0 {
		return nil, &apperrors.ValidationError{
			Charge: chargeID,
			Rule:   "internal transfer transactions must have strictly opposite signed amounts",
		}
	}

	source, destination := principals[0], principals[1]
	if source.Amount.Sign() > 0 {
		source, destination = destination, source
	}

	// Rate and account lookups for the two legs are independent; resolve
	// them concurrently and fail the whole generation on the first error.
	parts := make([]principalParts, 2)
	group, groupCtx := errgroup.WithContext(ctx)
	for i, txn := range []domain.TransactionRecord{source, destination} {
		group.Go(func() error {
			resolved, err := g.resolvePrincipal(groupCtx, bundle.Charge, txn)
			if err != nil {
				return err
			}
			parts[i] = resolved
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	sourceParts, destParts := parts[0], parts[1]

	sourceLeg := newTransferEntry(bundle.Charge, source)
	sourceLeg.CreditAccountID1 = sourceParts.accountRef
	sourceLeg.DebitAccountID1 = sourceParts.transferRef
	sourceLeg.CreditLocalAmount1 = sourceParts.local
	sourceLeg.DebitLocalAmount1 = sourceParts.local
	setForeign(&sourceLeg, source, g.resolver.LocalCurrency())

	// The clearing account releases what it absorbed from the source; the
	// receiving account books what actually arrived.
	destLeg := newTransferEntry(bundle.Charge, destination)
	destLeg.CreditAccountID1 = destParts.transferRef
	destLeg.DebitAccountID1 = destParts.accountRef
	destLeg.CreditLocalAmount1 = sourceParts.local
	destLeg.DebitLocalAmount1 = destParts.local
	setForeign(&destLeg, destination, g.resolver.LocalCurrency())

	entries := []domain.LedgerEntry{sourceLeg, destLeg}
	for _, fee := range fees {
		leg, err := g.feeLeg(ctx, bundle.Charge, fee, destination)
		if err != nil {
			return nil, err
		}
		entries = append(entries, leg)
	}

	return entries, nil
}

func (g *InternalTransferGenerator) resolvePrincipal(ctx context.Context, charge domain.Charge, txn domain.TransactionRecord) (principalParts, error) {
	accountRef, err := g.resolver.ResolveFinancialAccount(ctx, txn.FinancialAccountID)
	if err != nil {
		return principalParts{}, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + txn.FinancialAccountID}
	}
	transferRef, err := g.resolver.ResolveTransferAccount(ctx, txn.Currency)
	if err != nil {
		return principalParts{}, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "transfer tax category for " + txn.Currency}
	}
	local, err := g.resolver.ToLocal(ctx, txn.Amount.Abs(), txn.Currency, txn.ValueDate)
	if err != nil {
		return principalParts{}, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
	}
	return principalParts{accountRef: accountRef, transferRef: transferRef, local: local}, nil
}

func newTransferEntry(charge domain.Charge, txn domain.TransactionRecord) domain.LedgerEntry {
	description := txn.SourceDescription
	if description == "" {
		description = "Internal transfer"
	}
	return domain.LedgerEntry{
		ID:          txn.TransactionID,
		InvoiceDate: txn.EventDate,
		ValueDate:   txn.ValueDate,
		Currency:    txn.Currency,
		Description: description,
		Reference:   charge.ChargeID,
		OwnerID:     charge.OwnerID,
	}
}

func setForeign(entry *domain.LedgerEntry, txn domain.TransactionRecord, localCurrency string) {
	if txn.Currency == localCurrency {
		return
	}
	foreign := txn.Amount.Abs()
	entry.CreditForeignAmount1 = &foreign
	entry.DebitForeignAmount1 = &foreign
}

// feeLeg layers a fee on top of the transfer. A supplemental fee is charged
// against the account it was drawn from; an exchange-linked fee is charged
// against the transfer's destination side.
func (g *InternalTransferGenerator) feeLeg(ctx context.Context, charge domain.Charge, fee, destination domain.TransactionRecord) (domain.LedgerEntry, error) {
	feesRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.feesTaxCategoryID)
	if err != nil {
		return domain.LedgerEntry{}, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "fees tax category"}
	}

	var creditRef string
	switch fee.FeeKind {
	case domain.FeeKindSupplemental:
		creditRef, err = g.resolver.ResolveFinancialAccount(ctx, fee.FinancialAccountID)
		if err != nil {
			return domain.LedgerEntry{}, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + fee.FinancialAccountID}
		}
	case domain.FeeKindExchange:
		creditRef, err = g.resolver.ResolveFinancialAccount(ctx, destination.FinancialAccountID)
		if err != nil {
			return domain.LedgerEntry{}, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "financial account " + destination.FinancialAccountID}
		}
	default:
		return domain.LedgerEntry{}, &apperrors.ValidationError{Charge: charge.ChargeID, Rule: fmt.Sprintf("unsupported fee kind %q on transaction %s", fee.FeeKind, fee.TransactionID)}
	}

	local, err := g.resolver.ToLocal(ctx, fee.Amount.Abs(), fee.Currency, fee.ValueDate)
	if err != nil {
		return domain.LedgerEntry{}, &apperrors.ExternalLookupError{Charge: charge.ChargeID, Provider: "exchange-rate", Err: err}
	}

	entry := domain.LedgerEntry{
		ID:                 fee.TransactionID,
		InvoiceDate:        fee.EventDate,
		ValueDate:          fee.ValueDate,
		Currency:           fee.Currency,
		CreditAccountID1:   creditRef,
		DebitAccountID1:    feesRef,
		CreditLocalAmount1: local,
		DebitLocalAmount1:  local,
		Description:        "Transfer fee",
		Reference:          charge.ChargeID,
		OwnerID:            charge.OwnerID,
	}
	setForeign(&entry, fee, g.resolver.LocalCurrency())

	return entry, nil
}
