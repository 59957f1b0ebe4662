package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/core/reconcile"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"golang.org/x/sync/errgroup"
)

// ledgerService regenerates a charge's ledger: load everything related to the
// charge, dispatch to the kind's generator, validate the balance, reconcile
// against storage, and apply the plan transactionally.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	chargeRepo portsrepo.ChargeRepositoryFacade
	dispatcher *generatorDispatcher
	validator  *BalanceValidator
}

// NewLedgerService creates the ledger regeneration service.
func NewLedgerService(cfg *config.Config, repos portsrepo.RepositoryProvider, resolver portssvc.ResolverSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: repos.LedgerRepo,
		chargeRepo: repos.ChargeRepo,
		dispatcher: newGeneratorDispatcher(cfg, resolver),
		validator:  NewBalanceValidator(cfg, resolver),
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RegenerateLedger implements portssvc.LedgerSvcFacade.
func (s *ledgerService) RegenerateLedger(ctx context.Context, chargeID string, userID string) (*portssvc.RegenerationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	bundle, stored, err := s.loadChargeData(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	generator, err := s.dispatcher.generatorFor(bundle.Charge.Kind)
	if err != nil {
		return nil, &apperrors.ValidationError{Charge: chargeID, Rule: err.Error()}
	}

	candidates, err := generator.Generate(ctx, *bundle)
	if err != nil {
		return nil, err
	}
	candidates, err = s.validator.Validate(ctx, chargeID, candidates)
	if err != nil {
		return nil, err
	}

	if len(stored) == 0 {
		if err := s.ledgerRepo.InsertLedgerRecords(ctx, chargeID, candidates, userID); err != nil {
			return nil, fmt.Errorf("failed to insert ledger records for charge %s: %w", chargeID, err)
		}
		logger.Info("Ledger generated",
			slog.String("charge_id", chargeID), slog.Int("inserted", len(candidates)))
		return &portssvc.RegenerationResult{
			ChargeID: chargeID,
			Plan:     domain.DiffPlan{ToInsert: candidates},
		}, nil
	}

	plan := reconcile.BuildPlan(stored, candidates)
	if plan.IsEmpty() {
		logger.Info("Ledger unchanged", slog.String("charge_id", chargeID))
		return &portssvc.RegenerationResult{ChargeID: chargeID, Unchanged: true}, nil
	}

	if err := s.ledgerRepo.ApplyPlan(ctx, chargeID, plan, userID); err != nil {
		return nil, fmt.Errorf("failed to apply reconciliation plan for charge %s: %w", chargeID, err)
	}
	logger.Info("Ledger reconciled",
		slog.String("charge_id", chargeID),
		slog.Int("inserted", len(plan.ToInsert)),
		slog.Int("updated", len(plan.ToUpdate)),
		slog.Int("removed", len(plan.ToRemove)))

	return &portssvc.RegenerationResult{ChargeID: chargeID, Plan: plan}, nil
}

// loadChargeData fans out the independent reads for one charge. The related
// rows (transactions, salary records, trip expenses, stored ledger records)
// do not depend on each other, only on the charge existing.
func (s *ledgerService) loadChargeData(ctx context.Context, chargeID string) (*ChargeBundle, []domain.LedgerRecord, error) {
	charge, err := s.chargeRepo.FindChargeByID(ctx, chargeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load charge %s: %w", chargeID, err)
	}

	bundle := &ChargeBundle{Charge: *charge}
	var stored []domain.LedgerRecord

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		transactions, err := s.chargeRepo.FindTransactionsByChargeID(groupCtx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		bundle.Transactions = transactions
		return nil
	})
	group.Go(func() error {
		records, err := s.ledgerRepo.FindLedgerRecordsByChargeID(groupCtx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load stored ledger records: %w", err)
		}
		stored = records
		return nil
	})
	if charge.Kind == domain.ChargeKindSalary {
		group.Go(func() error {
			records, err := s.chargeRepo.FindSalaryRecordsByChargeID(groupCtx, chargeID)
			if err != nil {
				return fmt.Errorf("failed to load salary records: %w", err)
			}
			bundle.SalaryRecords = records
			return nil
		})
	}
	if charge.Kind == domain.ChargeKindBusinessTrip {
		group.Go(func() error {
			expenses, err := s.chargeRepo.FindTripExpensesByChargeID(groupCtx, chargeID)
			if err != nil {
				return fmt.Errorf("failed to load trip expenses: %w", err)
			}
			bundle.TripExpenses = expenses
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("charge %s: %w", chargeID, err)
	}

	return bundle, stored, nil
}

// RegenerateMany implements portssvc.LedgerSvcFacade. Charges are processed
// sequentially so a shared account's entries never interleave; one charge's
// failure is recorded and the rest continue.
func (s *ledgerService) RegenerateMany(ctx context.Context, chargeIDs []string, userID string) ([]portssvc.RegenerationResult, []error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var results []portssvc.RegenerationResult
	var failures []error
	for _, chargeID := range chargeIDs {
		if err := ctx.Err(); err != nil {
			failures = append(failures, fmt.Errorf("charge %s: %w", chargeID, err))
			continue
		}
		result, err := s.RegenerateLedger(ctx, chargeID, userID)
		if err != nil {
			logger.Warn("Charge regeneration failed",
				slog.String("charge_id", chargeID), slog.String("error", err.Error()))
			failures = append(failures, err)
			continue
		}
		results = append(results, *result)
	}
	return results, failures
}

// GetLedgerRecords implements portssvc.LedgerSvcFacade.
func (s *ledgerService) GetLedgerRecords(ctx context.Context, chargeID string) ([]domain.LedgerRecord, error) {
	if _, err := s.chargeRepo.FindChargeByID(ctx, chargeID); err != nil {
		return nil, fmt.Errorf("failed to load charge %s: %w", chargeID, err)
	}
	return s.ledgerRepo.FindLedgerRecordsByChargeID(ctx, chargeID)
}
