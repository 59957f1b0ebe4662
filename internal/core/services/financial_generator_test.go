package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func financialCharge(day time.Time) domain.Charge {
	category := "tc-bank-fees"
	return domain.Charge{
		ChargeID:      "charge-fin",
		OwnerID:       "owner-1",
		Kind:          domain.ChargeKindFinancial,
		TaxCategoryID: &category,
		Description:   "Bank interest",
		EventDate:     day,
	}
}

func TestFinancialGeneratorExpenseSides(t *testing.T) {
	resolver := newMockResolver()
	generator := services.NewFinancialGenerator(testConfig(), resolver)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	txn := domain.TransactionRecord{
		TransactionID: "t-1", FinancialAccountID: "acc-1", Currency: "ILS",
		Amount: decimal.NewFromInt(-42), EventDate: day, ValueDate: day,
	}

	resolver.On("ResolveTaxCategoryAccount", mock.Anything, "tc-bank-fees").Return("la-cat", nil)
	resolver.On("ResolveFinancialAccount", mock.Anything, "acc-1").Return("la-1", nil)
	resolver.On("ToLocal", mock.Anything, decimal.NewFromInt(42), "ILS", day).Return(decimal.NewFromInt(42), nil)

	entries, err := generator.Generate(context.Background(), services.ChargeBundle{
		Charge:       financialCharge(day),
		Transactions: []domain.TransactionRecord{txn},
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Money left the account: expense debits the category.
	assert.Equal(t, "la-1", entries[0].CreditAccountID1)
	assert.Equal(t, "la-cat", entries[0].DebitAccountID1)
	assert.True(t, entries[0].CreditLocalAmount1.Equal(decimal.NewFromInt(42)))
}

func TestFinancialGeneratorIncomeSides(t *testing.T) {
	resolver := newMockResolver()
	generator := services.NewFinancialGenerator(testConfig(), resolver)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	txn := domain.TransactionRecord{
		TransactionID: "t-1", FinancialAccountID: "acc-1", Currency: "ILS",
		Amount: decimal.NewFromInt(42), EventDate: day, ValueDate: day,
	}

	resolver.On("ResolveTaxCategoryAccount", mock.Anything, "tc-bank-fees").Return("la-cat", nil)
	resolver.On("ResolveFinancialAccount", mock.Anything, "acc-1").Return("la-1", nil)
	resolver.On("ToLocal", mock.Anything, decimal.NewFromInt(42), "ILS", day).Return(decimal.NewFromInt(42), nil)

	entries, err := generator.Generate(context.Background(), services.ChargeBundle{
		Charge:       financialCharge(day),
		Transactions: []domain.TransactionRecord{txn},
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "la-cat", entries[0].CreditAccountID1)
	assert.Equal(t, "la-1", entries[0].DebitAccountID1)
}

func TestFinancialGeneratorRespectsLedgerLock(t *testing.T) {
	resolver := newMockResolver()
	cfg := testConfig()
	cfg.LedgerLockDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	generator := services.NewFinancialGenerator(cfg, resolver)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	_, err := generator.Generate(context.Background(), services.ChargeBundle{
		Charge: financialCharge(day),
		Transactions: []domain.TransactionRecord{{
			TransactionID: "t-1", FinancialAccountID: "acc-1", Currency: "ILS",
			Amount: decimal.NewFromInt(-42), EventDate: day, ValueDate: day,
		}},
	})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "2024-12-31")
	resolver.AssertNotCalled(t, "ResolveTaxCategoryAccount", mock.Anything, mock.Anything)
}

func TestFinancialGeneratorRequiresTaxCategory(t *testing.T) {
	resolver := newMockResolver()
	generator := services.NewFinancialGenerator(testConfig(), resolver)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	charge := financialCharge(day)
	charge.TaxCategoryID = nil

	_, err := generator.Generate(context.Background(), services.ChargeBundle{
		Charge: charge,
		Transactions: []domain.TransactionRecord{{
			TransactionID: "t-1", FinancialAccountID: "acc-1", Currency: "ILS",
			Amount: decimal.NewFromInt(-42), EventDate: day, ValueDate: day,
		}},
	})

	var resolutionErr *apperrors.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, "charge-fin", resolutionErr.ChargeID())
}
