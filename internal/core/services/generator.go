package services

import (
	"context"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
)

// ChargeBundle carries a charge together with every related row loaded for
// its generation. Generators are pure functions of the bundle and the
// resolver; they hold no mutable state between calls.
type ChargeBundle struct {
	Charge        domain.Charge
	Transactions  []domain.TransactionRecord
	SalaryRecords []domain.SalaryRecord
	TripExpenses  []domain.TripExpense
}

// Generator computes the candidate ledger entry set for one charge kind, or
// a structured failure naming the charge and the violated rule.
type Generator interface {
	Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error)
}

// generatorDispatcher selects the generator matching a charge's kind.
// Dispatch is a single switch on the tag; variants share no state.
type generatorDispatcher struct {
	internalTransfer Generator
	salary           Generator
	financial        Generator
	conversion       Generator
	businessTrip     Generator
}

func newGeneratorDispatcher(cfg *config.Config, resolver portssvc.ResolverSvcFacade) *generatorDispatcher {
	return &generatorDispatcher{
		internalTransfer: NewInternalTransferGenerator(cfg, resolver),
		salary:           NewSalaryGenerator(cfg, resolver),
		financial:        NewFinancialGenerator(cfg, resolver),
		conversion:       NewConversionGenerator(cfg, resolver),
		businessTrip:     NewBusinessTripGenerator(cfg, resolver),
	}
}

func (d *generatorDispatcher) generatorFor(kind domain.ChargeKind) (Generator, error) {
	switch kind {
	case domain.ChargeKindInternalTransfer:
		return d.internalTransfer, nil
	case domain.ChargeKindSalary:
		return d.salary, nil
	case domain.ChargeKindFinancial:
		return d.financial, nil
	case domain.ChargeKindConversion:
		return d.conversion, nil
	case domain.ChargeKindBusinessTrip:
		return d.businessTrip, nil
	default:
		return nil, fmt.Errorf("no ledger generator for charge kind %q", kind)
	}
}
