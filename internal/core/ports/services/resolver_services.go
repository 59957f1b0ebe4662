package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ResolverSvcFacade converts foreign amounts into local currency and resolves
// business concepts to ledger account identifiers. Every generator consumes
// it.
type ResolverSvcFacade interface {
	// LocalCurrency returns the configured local currency code.
	LocalCurrency() string

	// ResolveRate returns the conversion rate from base into quote for the
	// given value date. When either side is the local currency the lookup
	// short-circuits to a direct per-day rate instead of a cross rate.
	ResolveRate(ctx context.Context, base, quote string, date time.Time) (decimal.Decimal, error)

	// ToLocal converts an amount in the given currency into local currency
	// for the given value date.
	ToLocal(ctx context.Context, amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error)

	// ResolveTaxCategoryAccount returns the ledger account configured for a
	// tax category. apperrors.ErrNotFound when the category is missing or
	// carries no ledger account.
	ResolveTaxCategoryAccount(ctx context.Context, taxCategoryID string) (string, error)

	// ResolveFinancialAccount returns the ledger account configured for a
	// financial account.
	ResolveFinancialAccount(ctx context.Context, accountID string) (string, error)

	// ResolveTransferAccount returns the ledger account of the clearing tax
	// category used for internal transfers in the given currency.
	ResolveTransferAccount(ctx context.Context, currency string) (string, error)

	// ResolveEmployeeAccount returns the ledger account configured for an
	// employee.
	ResolveEmployeeAccount(ctx context.Context, employeeID string) (string, error)

	// InvalidateRates drops the in-memory rate cache, e.g. after a business
	// or rate table update.
	InvalidateRates()
}

// PricePoint is one externally sampled crypto price.
type PricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// CryptoPriceProvider is the external price API consulted when the local
// store has no cached sample for a crypto symbol and date.
type CryptoPriceProvider interface {
	// FetchRange returns price samples for symbol against a fiat currency
	// over [from, to], oldest first.
	FetchRange(ctx context.Context, symbol, against string, from, to time.Time) ([]PricePoint, error)
}
