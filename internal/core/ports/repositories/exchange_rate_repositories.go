package repositories

import (
	"context"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// ExchangeRateReader defines read operations for fiat exchange rates.
type ExchangeRateReader interface {
	// FindRateByCurrencyAndDate retrieves the rate from a currency into the
	// local currency for a given value date.
	FindRateByCurrencyAndDate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error)
}

// CryptoPriceStore defines the local cache tier for crypto prices.
type CryptoPriceStore interface {
	// FindCryptoPrice retrieves a cached price keyed by (date, symbol,
	// against-currency).
	FindCryptoPrice(ctx context.Context, symbol, against string, date time.Time) (*domain.CryptoPrice, error)

	// SaveCryptoPrice caches a price fetched from the external provider.
	SaveCryptoPrice(ctx context.Context, price domain.CryptoPrice) error
}

// ExchangeRateRepositoryFacade combines rate storage access.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	CryptoPriceStore
}
