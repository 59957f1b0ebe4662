package services_test

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock Resolver ---

type MockResolver struct {
	mock.Mock
	localCurrency string
}

func newMockResolver() *MockResolver {
	return &MockResolver{localCurrency: "ILS"}
}

func (m *MockResolver) LocalCurrency() string { return m.localCurrency }

func (m *MockResolver) ResolveRate(ctx context.Context, base, quote string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, base, quote, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockResolver) ToLocal(ctx context.Context, amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, currency, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockResolver) ResolveTaxCategoryAccount(ctx context.Context, taxCategoryID string) (string, error) {
	args := m.Called(ctx, taxCategoryID)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) ResolveFinancialAccount(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) ResolveTransferAccount(ctx context.Context, currency string) (string, error) {
	args := m.Called(ctx, currency)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) ResolveEmployeeAccount(ctx context.Context, employeeID string) (string, error) {
	args := m.Called(ctx, employeeID)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) InvalidateRates() {
	m.Called()
}

// --- Mock repositories ---

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindLedgerRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.LedgerRecord, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) InsertLedgerRecords(ctx context.Context, chargeID string, entries []domain.LedgerEntry, userID string) error {
	args := m.Called(ctx, chargeID, entries, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ApplyPlan(ctx context.Context, chargeID string, plan domain.DiffPlan, userID string) error {
	args := m.Called(ctx, chargeID, plan, userID)
	return args.Error(0)
}

type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) FindChargeByID(ctx context.Context, chargeID string) (*domain.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindTransactionsByChargeID(ctx context.Context, chargeID string) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRecord), args.Error(1)
}

func (m *MockChargeRepository) SaveCharge(ctx context.Context, charge domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) FindSalaryRecordsByChargeID(ctx context.Context, chargeID string) ([]domain.SalaryRecord, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalaryRecord), args.Error(1)
}

func (m *MockChargeRepository) FindTripExpensesByChargeID(ctx context.Context, chargeID string) ([]domain.TripExpense, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TripExpense), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindFinancialAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialAccount), args.Error(1)
}

func (m *MockAccountRepository) FindFinancialAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.FinancialAccount), args.Error(1)
}

func (m *MockAccountRepository) FindTaxCategoryByID(ctx context.Context, taxCategoryID string) (*domain.TaxCategory, error) {
	args := m.Called(ctx, taxCategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxCategory), args.Error(1)
}

func (m *MockAccountRepository) FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRateByCurrencyAndDate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindCryptoPrice(ctx context.Context, symbol, against string, date time.Time) (*domain.CryptoPrice, error) {
	args := m.Called(ctx, symbol, against, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CryptoPrice), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveCryptoPrice(ctx context.Context, price domain.CryptoPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

type MockPriceProvider struct {
	mock.Mock
}

func (m *MockPriceProvider) FetchRange(ctx context.Context, symbol, against string, from, to time.Time) ([]portssvc.PricePoint, error) {
	args := m.Called(ctx, symbol, against, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portssvc.PricePoint), args.Error(1)
}

// --- Shared fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		LocalCurrency:             "ILS",
		RateCacheTTL:              time.Hour,
		CryptoCurrencies:          []string{"BTC", "ETH"},
		FeesTaxCategoryID:         "tc-fees",
		ExchangeDifferenceID:      "tc-exchange",
		ConversionTaxCategoryID:   "tc-conversion",
		BusinessTripTaxCategoryID: "tc-trip",
		TransferCategories:        map[string]string{"USD": "tc-transfer-usd", "EUR": "tc-transfer-eur"},
		DefaultTransferCategoryID: "tc-transfer",
		Salary: config.SalaryAccounts{
			GrossExpenseID:          "tc-gross",
			SocialSecurityExpenseID: "tc-ss-expense",
			SocialSecurityPayableID: "tc-ss-payable",
			TaxAuthorityID:          "tc-tax-authority",
			PensionExpenseID:        "tc-pension-expense",
			TrainingExpenseID:       "tc-training-expense",
			CompensationExpenseID:   "tc-compensation-expense",
			ZkufotExpenseID:         "tc-zkufot-expense",
			ZkufotIncomeID:          "tc-zkufot-income",
		},
	}
}
