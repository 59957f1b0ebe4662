package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for fiat rates and
// cached crypto prices.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// FindRateByCurrencyAndDate retrieves the rate from a currency into the local
// currency for a given value date. Rates are stored per calendar day.
func (r *PgxExchangeRateRepository) FindRateByCurrencyAndDate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error) {
	currency = strings.ToUpper(currency)
	day := date.UTC().Truncate(24 * time.Hour)

	query := `
		SELECT exchange_rate_id, currency, rate, date,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE currency = $1 AND date = $2;`

	var rate domain.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, currency, day).Scan(
		&rate.ExchangeRateID, &rate.Currency, &rate.Rate, &rate.Date,
		&rate.CreatedAt, &rate.CreatedBy, &rate.LastUpdatedAt, &rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exchange rate %s on %s: %w", currency, day.Format("2006-01-02"), apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find exchange rate for %s: %w", currency, err)
	}
	return &rate, nil
}

// FindCryptoPrice retrieves a cached price keyed by (date, symbol,
// against-currency).
func (r *PgxExchangeRateRepository) FindCryptoPrice(ctx context.Context, symbol, against string, date time.Time) (*domain.CryptoPrice, error) {
	symbol = strings.ToUpper(symbol)
	against = strings.ToUpper(against)
	day := date.UTC().Truncate(24 * time.Hour)

	query := `
		SELECT symbol, against, date, price, sampled_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM crypto_prices
		WHERE symbol = $1 AND against = $2 AND date = $3;`

	var price domain.CryptoPrice
	err := r.Pool.QueryRow(ctx, query, symbol, against, day).Scan(
		&price.Symbol, &price.Against, &price.Date, &price.Price, &price.SampledAt,
		&price.CreatedAt, &price.CreatedBy, &price.LastUpdatedAt, &price.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("crypto price %s/%s on %s: %w", symbol, against, day.Format("2006-01-02"), apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find crypto price %s/%s: %w", symbol, against, err)
	}
	return &price, nil
}

// SaveCryptoPrice caches a price fetched from the external provider. A
// concurrent fetch for the same key keeps the freshest sample.
func (r *PgxExchangeRateRepository) SaveCryptoPrice(ctx context.Context, price domain.CryptoPrice) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO crypto_prices (symbol, against, date, price, sampled_at,
		                           created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol, against, date)
		DO UPDATE SET price = EXCLUDED.price, sampled_at = EXCLUDED.sampled_at,
		              last_updated_at = EXCLUDED.last_updated_at
		WHERE crypto_prices.sampled_at < EXCLUDED.sampled_at;`

	_, err := r.Pool.Exec(ctx, query,
		strings.ToUpper(price.Symbol), strings.ToUpper(price.Against), price.Date.UTC().Truncate(24*time.Hour),
		price.Price, price.SampledAt,
		now, "system", now, "system",
	)
	if err != nil {
		return fmt.Errorf("failed to save crypto price %s/%s: %w", price.Symbol, price.Against, err)
	}
	return nil
}
