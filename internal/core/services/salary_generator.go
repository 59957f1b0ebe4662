package services

import (
	"context"
	"fmt"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
)

// SalaryGenerator turns a month's payroll records into ledger entries:
// one net-pay credit per employee, aggregated payable legs per authority and
// fund, and the fixed monthly expense-recognition legs. Everything is in
// local currency, so no rate lookups happen here.
type SalaryGenerator struct {
	resolver portssvc.ResolverSvcFacade
	accounts config.SalaryAccounts
}

// NewSalaryGenerator creates the salary generator.
func NewSalaryGenerator(cfg *config.Config, resolver portssvc.ResolverSvcFacade) Generator {
	return &SalaryGenerator{
		resolver: resolver,
		accounts: cfg.Salary,
	}
}

// fundTotals accumulates deposits per fund in first-seen order so output is
// deterministic across runs.
type fundTotals struct {
	order  []string
	totals map[string]decimal.Decimal
}

func newFundTotals() *fundTotals {
	return &fundTotals{totals: make(map[string]decimal.Decimal)}
}

func (f *fundTotals) add(fundID string, amount decimal.Decimal) {
	if _, seen := f.totals[fundID]; !seen {
		f.order = append(f.order, fundID)
	}
	f.totals[fundID] = f.totals[fundID].Add(amount)
}

// Generate implements Generator.
func (g *SalaryGenerator) Generate(ctx context.Context, bundle ChargeBundle) ([]domain.LedgerEntry, error) {
	charge := bundle.Charge
	if len(bundle.SalaryRecords) == 0 {
		return nil, &apperrors.ValidationError{Charge: charge.ChargeID, Rule: "salary charge has no salary records"}
	}

	month := bundle.SalaryRecords[0].Month
	var entries []domain.LedgerEntry

	gross := decimal.Zero
	incomeTax := decimal.Zero
	socialSecurity := decimal.Zero
	employerSS := decimal.Zero
	pensionExpense := decimal.Zero
	trainingExpense := decimal.Zero
	compensation := decimal.Zero
	zkufot := decimal.Zero
	pensionFunds := newFundTotals()
	trainingFunds := newFundTotals()

	for _, record := range bundle.SalaryRecords {
		if !record.BaseSalary.IsPositive() {
			return nil, &apperrors.ValidationError{
				Charge: charge.ChargeID,
				Rule:   fmt.Sprintf("salary record %s has no base salary", record.SalaryRecordID),
			}
		}

		employeeRef, err := g.resolver.ResolveEmployeeAccount(ctx, record.EmployeeID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "employee " + record.EmployeeID}
		}
		entries = append(entries, g.creditLeg(charge, record.SalaryRecordID, employeeRef, record.NetPay(), "Net salary "+month))

		gross = gross.Add(record.GrossSalary)
		incomeTax = incomeTax.Add(record.IncomeTax)
		socialSecurity = socialSecurity.Add(record.SocialSecurityEmployee).
			Add(record.HealthInsurance).
			Add(record.SocialSecurityEmployer)
		employerSS = employerSS.Add(record.SocialSecurityEmployer)
		pensionExpense = pensionExpense.Add(record.PensionEmployer)
		trainingExpense = trainingExpense.Add(record.TrainingEmployer)
		compensation = compensation.Add(record.CompensationEmployer)
		zkufot = zkufot.Add(record.Zkufot)

		pensionDeposit := record.PensionEmployee.Add(record.PensionEmployer).Add(record.CompensationEmployer)
		if pensionDeposit.IsPositive() {
			if record.PensionFundID == nil {
				return nil, &apperrors.ResolutionError{
					Charge:  charge.ChargeID,
					Concept: "pension fund for employee " + record.EmployeeID,
				}
			}
			pensionFunds.add(*record.PensionFundID, pensionDeposit)
		}

		trainingDeposit := record.TrainingEmployee.Add(record.TrainingEmployer)
		if trainingDeposit.IsPositive() {
			if record.TrainingFundID == nil {
				return nil, &apperrors.ResolutionError{
					Charge:  charge.ChargeID,
					Concept: "training fund for employee " + record.EmployeeID,
				}
			}
			trainingFunds.add(*record.TrainingFundID, trainingDeposit)
		}
	}

	// Aggregated payables owed to the authorities and the funds.
	payables := []struct {
		suffix     string
		categoryID string
		concept    string
		amount     decimal.Decimal
	}{
		{"social-security", g.accounts.SocialSecurityPayableID, "social security payable tax category", socialSecurity},
		{"income-tax", g.accounts.TaxAuthorityID, "tax authority tax category", incomeTax},
	}
	for _, payable := range payables {
		if payable.amount.IsZero() {
			continue
		}
		accountRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, payable.categoryID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: payable.concept}
		}
		entries = append(entries, g.creditLeg(charge, charge.ChargeID+":"+payable.suffix, accountRef, payable.amount, "Salary "+month))
	}

	for _, funds := range []*fundTotals{pensionFunds, trainingFunds} {
		for _, fundID := range funds.order {
			fundRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, fundID)
			if err != nil {
				return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "fund " + fundID}
			}
			entries = append(entries, g.creditLeg(charge, charge.ChargeID+":fund:"+fundID, fundRef, funds.totals[fundID], "Fund deposit "+month))
		}
	}

	// Monthly expense recognition.
	expenses := []struct {
		suffix     string
		categoryID string
		concept    string
		amount     decimal.Decimal
	}{
		{"gross-expense", g.accounts.GrossExpenseID, "gross salary expense tax category", gross},
		{"social-security-expense", g.accounts.SocialSecurityExpenseID, "employer social security expense tax category", employerSS},
		{"pension-expense", g.accounts.PensionExpenseID, "pension expense tax category", pensionExpense},
		{"training-expense", g.accounts.TrainingExpenseID, "training fund expense tax category", trainingExpense},
		{"compensation-expense", g.accounts.CompensationExpenseID, "compensation expense tax category", compensation},
	}
	for _, expense := range expenses {
		if expense.amount.IsZero() {
			continue
		}
		accountRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, expense.categoryID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: expense.concept}
		}
		entries = append(entries, g.debitLeg(charge, charge.ChargeID+":"+expense.suffix, accountRef, expense.amount, "Salary "+month))
	}

	// Zkufot is recognized as income and expensed in the same month; the two
	// legs always cancel out.
	if zkufot.IsPositive() {
		incomeRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.accounts.ZkufotIncomeID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "zkufot income tax category"}
		}
		expenseRef, err := g.resolver.ResolveTaxCategoryAccount(ctx, g.accounts.ZkufotExpenseID)
		if err != nil {
			return nil, &apperrors.ResolutionError{Charge: charge.ChargeID, Concept: "zkufot expense tax category"}
		}
		entries = append(entries,
			g.creditLeg(charge, charge.ChargeID+":zkufot-income", incomeRef, zkufot, "Zkufot "+month),
			g.debitLeg(charge, charge.ChargeID+":zkufot-expense", expenseRef, zkufot, "Zkufot "+month),
		)
	}

	return entries, nil
}

func (g *SalaryGenerator) creditLeg(charge domain.Charge, id, accountRef string, amount decimal.Decimal, description string) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:                 id,
		InvoiceDate:        charge.EventDate,
		ValueDate:          charge.EventDate,
		Currency:           g.resolver.LocalCurrency(),
		CreditAccountID1:   accountRef,
		CreditLocalAmount1: amount,
		Description:        description,
		Reference:          charge.ChargeID,
		OwnerID:            charge.OwnerID,
	}
}

func (g *SalaryGenerator) debitLeg(charge domain.Charge, id, accountRef string, amount decimal.Decimal, description string) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:                id,
		InvoiceDate:       charge.EventDate,
		ValueDate:         charge.EventDate,
		Currency:          g.resolver.LocalCurrency(),
		DebitAccountID1:   accountRef,
		DebitLocalAmount1: amount,
		Description:       description,
		Reference:         charge.ChargeID,
		OwnerID:           charge.OwnerID,
	}
}
