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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func balancedEntry(id string, amount decimal.Decimal, currency string, day time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:                 id,
		InvoiceDate:        day,
		ValueDate:          day,
		Currency:           currency,
		CreditAccountID1:   "la-a",
		DebitAccountID1:    "la-b",
		CreditLocalAmount1: amount,
		DebitLocalAmount1:  amount,
		OwnerID:            "owner-1",
	}
}

func TestValidatePassesBalancedSet(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(100), "ILS", day),
		balancedEntry("e-2", decimal.NewFromInt(50), "ILS", day),
	}

	out, err := validator.Validate(context.Background(), "charge-1", entries)

	require.NoError(t, err)
	assert.Equal(t, entries, out)
	resolver.AssertNotCalled(t, "ResolveTaxCategoryAccount", mock.Anything, mock.Anything)
}

func TestValidateToleratesSubCentDrift(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	entry := balancedEntry("e-1", decimal.NewFromInt(100), "ILS", day)
	entry.DebitLocalAmount1 = decimal.RequireFromString("100.004")

	out, err := validator.Validate(context.Background(), "charge-1", []domain.LedgerEntry{entry})

	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestValidateClosesMultiDateMultiCurrencyGap(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)

	// Credits exceed debits by 5 across two days and two currencies.
	short := balancedEntry("e-2", decimal.NewFromInt(365), "ILS", day2)
	short.CreditLocalAmount1 = decimal.NewFromInt(370)
	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(370), "USD", day1),
		short,
	}

	resolver.On("ResolveTaxCategoryAccount", mock.Anything, "tc-exchange").Return("la-exchange", nil).Once()

	out, err := validator.Validate(context.Background(), "charge-1", entries)

	require.NoError(t, err)
	require.Len(t, out, 3)

	closing := out[2]
	assert.Equal(t, "charge-1:exchange-adjustment", closing.ID)
	assert.Equal(t, "la-exchange", closing.DebitAccountID1)
	assert.True(t, closing.DebitLocalAmount1.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, day2, closing.ValueDate)
	assert.Equal(t, "ILS", closing.Currency)
	assert.Equal(t, "owner-1", closing.OwnerID)
	assert.True(t, accounting.LocalImbalance(out).IsZero())
}

func TestValidateClosingLegCreditsWhenDebitsExceed(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	long := balancedEntry("e-2", decimal.NewFromInt(365), "ILS", day2)
	long.DebitLocalAmount1 = decimal.NewFromInt(372)
	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(365), "EUR", day1),
		long,
	}

	resolver.On("ResolveTaxCategoryAccount", mock.Anything, "tc-exchange").Return("la-exchange", nil).Once()

	out, err := validator.Validate(context.Background(), "charge-1", entries)

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "la-exchange", out[2].CreditAccountID1)
	assert.True(t, out[2].CreditLocalAmount1.Equal(decimal.NewFromInt(7)))
	assert.True(t, accounting.LocalImbalance(out).IsZero())
}

func TestValidateRejectsSingleDateImbalance(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// Two currencies but everything settles on one day.
	short := balancedEntry("e-2", decimal.NewFromInt(365), "ILS", day)
	short.CreditLocalAmount1 = decimal.NewFromInt(370)
	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(370), "USD", day),
		short,
	}

	_, err := validator.Validate(context.Background(), "charge-1", entries)

	var balanceErr *apperrors.BalanceError
	require.ErrorAs(t, err, &balanceErr)
	assert.Equal(t, "charge-1", balanceErr.ChargeID())
	assert.True(t, balanceErr.Delta.Equal(decimal.NewFromInt(5)))
	assert.Contains(t, balanceErr.Reason, "single value date")
	resolver.AssertNotCalled(t, "ResolveTaxCategoryAccount", mock.Anything, mock.Anything)
}

func TestValidateRejectsSingleCurrencyImbalance(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 3)

	short := balancedEntry("e-2", decimal.NewFromInt(365), "ILS", day2)
	short.CreditLocalAmount1 = decimal.NewFromInt(370)
	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(370), "ILS", day1),
		short,
	}

	_, err := validator.Validate(context.Background(), "charge-1", entries)

	var balanceErr *apperrors.BalanceError
	require.ErrorAs(t, err, &balanceErr)
	assert.Contains(t, balanceErr.Reason, "single currency")
}

func TestValidateUnresolvableExchangeCategory(t *testing.T) {
	resolver := newMockResolver()
	validator := services.NewBalanceValidator(testConfig(), resolver)
	day1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)

	short := balancedEntry("e-2", decimal.NewFromInt(365), "ILS", day2)
	short.CreditLocalAmount1 = decimal.NewFromInt(370)
	entries := []domain.LedgerEntry{
		balancedEntry("e-1", decimal.NewFromInt(370), "USD", day1),
		short,
	}

	resolver.On("ResolveTaxCategoryAccount", mock.Anything, "tc-exchange").Return("", apperrors.ErrNotFound).Once()

	_, err := validator.Validate(context.Background(), "charge-1", entries)

	var resolutionErr *apperrors.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, "charge-1", resolutionErr.ChargeID())
}
