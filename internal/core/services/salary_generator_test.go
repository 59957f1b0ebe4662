package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/core/services"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SalaryGeneratorTestSuite struct {
	suite.Suite
	mockResolver *MockResolver
	generator    services.Generator
	charge       domain.Charge
}

func (suite *SalaryGeneratorTestSuite) SetupTest() {
	suite.mockResolver = newMockResolver()
	suite.generator = services.NewSalaryGenerator(testConfig(), suite.mockResolver)
	suite.charge = domain.Charge{
		ChargeID:  "charge-sal",
		OwnerID:   "owner-1",
		Kind:      domain.ChargeKindSalary,
		EventDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *SalaryGeneratorTestSuite) fullRecords() []domain.SalaryRecord {
	pensionFund := "pf-1"
	trainingA := "tf-1"
	trainingB := "tf-2"
	return []domain.SalaryRecord{
		{
			SalaryRecordID: "sal-a", ChargeID: "charge-sal", EmployeeID: "emp-a", Month: "2024-03",
			BaseSalary: decimal.NewFromInt(20000), GrossSalary: decimal.NewFromInt(21000),
			IncomeTax: decimal.NewFromInt(3000), SocialSecurityEmployee: decimal.NewFromInt(700),
			HealthInsurance: decimal.NewFromInt(600), SocialSecurityEmployer: decimal.NewFromInt(1100),
			CompensationEmployer: decimal.NewFromInt(1700),
			PensionFundID:        &pensionFund, PensionEmployee: decimal.NewFromInt(1260), PensionEmployer: decimal.NewFromInt(1365),
			TrainingFundID: &trainingA, TrainingEmployee: decimal.NewFromInt(525), TrainingEmployer: decimal.NewFromInt(1575),
			Zkufot: decimal.NewFromInt(300),
		},
		{
			SalaryRecordID: "sal-b", ChargeID: "charge-sal", EmployeeID: "emp-b", Month: "2024-03",
			BaseSalary: decimal.NewFromInt(10000), GrossSalary: decimal.NewFromInt(10000),
			IncomeTax: decimal.NewFromInt(800), SocialSecurityEmployee: decimal.NewFromInt(350),
			HealthInsurance: decimal.NewFromInt(300), SocialSecurityEmployer: decimal.NewFromInt(550),
			CompensationEmployer: decimal.NewFromInt(800),
			PensionFundID:        &pensionFund, PensionEmployee: decimal.NewFromInt(600), PensionEmployer: decimal.NewFromInt(650),
			TrainingFundID: &trainingB, TrainingEmployee: decimal.NewFromInt(250), TrainingEmployer: decimal.NewFromInt(750),
		},
	}
}

func (suite *SalaryGeneratorTestSuite) allowAllResolutions() {
	suite.mockResolver.On("ResolveEmployeeAccount", mock.Anything, "emp-a").Return("la-emp-a", nil)
	suite.mockResolver.On("ResolveEmployeeAccount", mock.Anything, "emp-b").Return("la-emp-b", nil)
	suite.mockResolver.On("ResolveTaxCategoryAccount", mock.Anything, mock.AnythingOfType("string")).
		Return("la-cat", nil)
}

func (suite *SalaryGeneratorTestSuite) TestFullPayrollBalances() {
	ctx := context.Background()
	suite.allowAllResolutions()

	entries, err := suite.generator.Generate(ctx, services.ChargeBundle{
		Charge:        suite.charge,
		SalaryRecords: suite.fullRecords(),
	})

	suite.Require().NoError(err)
	// 2 net legs, 2 authority payables, 3 fund deposits, 5 expense legs, and
	// the zkufot pair.
	suite.Require().Len(entries, 14)
	suite.True(accounting.LocalImbalance(entries).IsZero(),
		"payroll entry set must net to zero, got %s", accounting.LocalImbalance(entries))

	suite.Equal("la-emp-a", entries[0].CreditAccountID1)
	suite.True(entries[0].CreditLocalAmount1.Equal(decimal.NewFromInt(14915)))
	suite.Equal("la-emp-b", entries[1].CreditAccountID1)
	suite.True(entries[1].CreditLocalAmount1.Equal(decimal.NewFromInt(7700)))

	// Both employees deposit to pf-1; deposits aggregate into one leg.
	byID := make(map[string]domain.LedgerEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	fundLeg, ok := byID["charge-sal:fund:pf-1"]
	suite.Require().True(ok)
	suite.True(fundLeg.CreditLocalAmount1.Equal(decimal.NewFromInt(6375)))

	ssLeg, ok := byID["charge-sal:social-security"]
	suite.Require().True(ok)
	suite.True(ssLeg.CreditLocalAmount1.Equal(decimal.NewFromInt(3600)))

	grossLeg, ok := byID["charge-sal:gross-expense"]
	suite.Require().True(ok)
	suite.True(grossLeg.DebitLocalAmount1.Equal(decimal.NewFromInt(31000)))
}

func (suite *SalaryGeneratorTestSuite) TestDeterministicOutputOrder() {
	ctx := context.Background()
	suite.allowAllResolutions()
	bundle := services.ChargeBundle{Charge: suite.charge, SalaryRecords: suite.fullRecords()}

	first, err := suite.generator.Generate(ctx, bundle)
	suite.Require().NoError(err)
	for i := 0; i < 5; i++ {
		again, err := suite.generator.Generate(ctx, bundle)
		suite.Require().NoError(err)
		suite.Equal(first, again)
	}
}

func (suite *SalaryGeneratorTestSuite) TestMissingPensionFundIsResolutionError() {
	ctx := context.Background()
	records := suite.fullRecords()
	records[1].PensionFundID = nil

	suite.allowAllResolutions()

	_, err := suite.generator.Generate(ctx, services.ChargeBundle{
		Charge:        suite.charge,
		SalaryRecords: records,
	})

	var resolutionErr *apperrors.ResolutionError
	suite.Require().ErrorAs(err, &resolutionErr)
	suite.Equal("charge-sal", resolutionErr.ChargeID())
	suite.Contains(resolutionErr.Error(), "emp-b")
}

func (suite *SalaryGeneratorTestSuite) TestMissingBaseSalaryIsValidationError() {
	ctx := context.Background()
	records := suite.fullRecords()
	records[0].BaseSalary = decimal.Zero

	_, err := suite.generator.Generate(ctx, services.ChargeBundle{
		Charge:        suite.charge,
		SalaryRecords: records,
	})

	var validationErr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	suite.Contains(validationErr.Error(), "sal-a")
}

func (suite *SalaryGeneratorTestSuite) TestNoRecordsIsValidationError() {
	ctx := context.Background()

	_, err := suite.generator.Generate(ctx, services.ChargeBundle{Charge: suite.charge})

	var validationErr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
}

func TestSalaryGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(SalaryGeneratorTestSuite))
}
