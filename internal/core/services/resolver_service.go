package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// cryptoLookbackWindow bounds how far back the external price API is sampled
// when the local store has no price for the requested date.
const cryptoLookbackWindow = 23 * time.Hour

// resolverService converts foreign amounts into local currency and resolves
// business concepts (financial accounts, tax categories, employees) to
// ledger account identifiers.
type resolverService struct {
	rateRepo      portsrepo.ExchangeRateRepositoryFacade
	accountRepo   portsrepo.AccountRepositoryFacade
	priceProvider portssvc.CryptoPriceProvider

	rateCache *gocache.Cache

	localCurrency             string
	cryptoSymbols             map[string]struct{}
	transferCategories        map[string]string
	defaultTransferCategoryID string
}

// NewResolverService creates a new resolver backed by the rate and account
// repositories plus the external crypto price provider. Rates are cached in
// memory for cfg.RateCacheTTL.
func NewResolverService(cfg *config.Config, rateRepo portsrepo.ExchangeRateRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, priceProvider portssvc.CryptoPriceProvider) portssvc.ResolverSvcFacade {
	crypto := make(map[string]struct{}, len(cfg.CryptoCurrencies))
	for _, symbol := range cfg.CryptoCurrencies {
		crypto[symbol] = struct{}{}
	}
	return &resolverService{
		rateRepo:                  rateRepo,
		accountRepo:               accountRepo,
		priceProvider:             priceProvider,
		rateCache:                 gocache.New(cfg.RateCacheTTL, 2*cfg.RateCacheTTL),
		localCurrency:             cfg.LocalCurrency,
		cryptoSymbols:             crypto,
		transferCategories:        cfg.TransferCategories,
		defaultTransferCategoryID: cfg.DefaultTransferCategoryID,
	}
}

var _ portssvc.ResolverSvcFacade = (*resolverService)(nil)

// LocalCurrency implements portssvc.ResolverSvcFacade.
func (s *resolverService) LocalCurrency() string { return s.localCurrency }

// ResolveRate implements portssvc.ResolverSvcFacade. When either currency is
// the local currency the lookup short-circuits to a direct per-day rate
// instead of a needless cross rate.
func (s *resolverService) ResolveRate(ctx context.Context, base, quote string, date time.Time) (decimal.Decimal, error) {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	if base == quote {
		return decimal.NewFromInt(1), nil
	}

	if s.isCrypto(base) {
		return s.cryptoPrice(ctx, base, quote, date)
	}
	if s.isCrypto(quote) {
		price, err := s.cryptoPrice(ctx, quote, base, date)
		if err != nil {
			return decimal.Zero, err
		}
		if price.IsZero() {
			return decimal.Zero, fmt.Errorf("zero price resolving %s/%s on %s", base, quote, date.Format("2006-01-02"))
		}
		return decimal.NewFromInt(1).Div(price), nil
	}

	switch {
	case quote == s.localCurrency:
		return s.fiatRate(ctx, base, date)
	case base == s.localCurrency:
		rate, err := s.fiatRate(ctx, quote, date)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(1).Div(rate), nil
	default:
		baseRate, err := s.fiatRate(ctx, base, date)
		if err != nil {
			return decimal.Zero, err
		}
		quoteRate, err := s.fiatRate(ctx, quote, date)
		if err != nil {
			return decimal.Zero, err
		}
		return baseRate.Div(quoteRate), nil
	}
}

// ToLocal implements portssvc.ResolverSvcFacade. Results are rounded to two
// decimal places, the precision ledger amounts are stored with.
func (s *resolverService) ToLocal(ctx context.Context, amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	if strings.ToUpper(currency) == s.localCurrency {
		return amount, nil
	}
	rate, err := s.ResolveRate(ctx, currency, s.localCurrency, date)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

func (s *resolverService) isCrypto(currency string) bool {
	_, ok := s.cryptoSymbols[currency]
	return ok
}

// fiatRate returns the stored rate from currency into local currency for the
// given value date, consulting the in-memory cache first.
func (s *resolverService) fiatRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	cacheKey := currency + "|" + date.Format("2006-01-02")
	if cached, found := s.rateCache.Get(cacheKey); found {
		return cached.(decimal.Decimal), nil
	}

	rate, err := s.rateRepo.FindRateByCurrencyAndDate(ctx, currency, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("no exchange rate for %s on %s: %w", currency, date.Format("2006-01-02"), err)
		}
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate for %s: %w", currency, err)
	}

	s.rateCache.SetDefault(cacheKey, rate.Rate)
	return rate.Rate, nil
}

// cryptoPrice resolves a crypto symbol through the two-tier lookup: local
// store first, then the external price API sampled over the trailing window
// ending at the requested date, picking the latest sample at or before it.
// Fetched values are cached back to the store keyed (date, symbol, against).
func (s *resolverService) cryptoPrice(ctx context.Context, symbol, against string, date time.Time) (decimal.Decimal, error) {
	stored, err := s.rateRepo.FindCryptoPrice(ctx, symbol, against, date)
	if err == nil {
		return stored.Price, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to look up cached %s/%s price: %w", symbol, against, err)
	}

	samples, err := s.priceProvider.FetchRange(ctx, symbol, against, date.Add(-cryptoLookbackWindow), date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price provider failed for %s/%s: %w", symbol, against, err)
	}

	// Samples arrive oldest first; take the latest one at or before target.
	var picked *portssvc.PricePoint
	for i := len(samples) - 1; i >= 0; i-- {
		if !samples[i].Timestamp.After(date) {
			picked = &samples[i]
			break
		}
	}
	if picked == nil {
		return decimal.Zero, fmt.Errorf("no %s/%s price sample at or before %s: %w", symbol, against, date.Format(time.RFC3339), apperrors.ErrNotFound)
	}

	price := domain.CryptoPrice{
		Symbol:    symbol,
		Against:   against,
		Date:      date,
		Price:     picked.Price,
		SampledAt: picked.Timestamp,
	}
	if saveErr := s.rateRepo.SaveCryptoPrice(ctx, price); saveErr != nil {
		// The price itself is good; a write-back failure only costs a
		// repeat fetch next time.
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to cache crypto price",
			slog.String("symbol", symbol), slog.String("against", against), slog.String("error", saveErr.Error()))
	}

	return picked.Price, nil
}

// ResolveTaxCategoryAccount implements portssvc.ResolverSvcFacade.
func (s *resolverService) ResolveTaxCategoryAccount(ctx context.Context, taxCategoryID string) (string, error) {
	if taxCategoryID == "" {
		return "", fmt.Errorf("tax category id is empty: %w", apperrors.ErrNotFound)
	}
	category, err := s.accountRepo.FindTaxCategoryByID(ctx, taxCategoryID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tax category %s: %w", taxCategoryID, err)
	}
	if category.LedgerAccountID == "" {
		return "", fmt.Errorf("tax category %s has no ledger account: %w", taxCategoryID, apperrors.ErrNotFound)
	}
	return category.LedgerAccountID, nil
}

// ResolveFinancialAccount implements portssvc.ResolverSvcFacade.
func (s *resolverService) ResolveFinancialAccount(ctx context.Context, accountID string) (string, error) {
	account, err := s.accountRepo.FindFinancialAccountByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve financial account %s: %w", accountID, err)
	}
	if account.LedgerAccountID == "" {
		return "", fmt.Errorf("financial account %s has no ledger account: %w", accountID, apperrors.ErrNotFound)
	}
	return account.LedgerAccountID, nil
}

// ResolveTransferAccount implements portssvc.ResolverSvcFacade. The clearing
// category is derived from the transfer currency, falling back to the default
// transfer category.
func (s *resolverService) ResolveTransferAccount(ctx context.Context, currency string) (string, error) {
	taxCategoryID, ok := s.transferCategories[strings.ToUpper(currency)]
	if !ok {
		taxCategoryID = s.defaultTransferCategoryID
	}
	if taxCategoryID == "" {
		return "", fmt.Errorf("no transfer tax category configured for %s: %w", currency, apperrors.ErrNotFound)
	}
	return s.ResolveTaxCategoryAccount(ctx, taxCategoryID)
}

// ResolveEmployeeAccount implements portssvc.ResolverSvcFacade.
func (s *resolverService) ResolveEmployeeAccount(ctx context.Context, employeeID string) (string, error) {
	employee, err := s.accountRepo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve employee %s: %w", employeeID, err)
	}
	if employee.LedgerAccountID == "" {
		return "", fmt.Errorf("employee %s has no ledger account: %w", employeeID, apperrors.ErrNotFound)
	}
	return employee.LedgerAccountID, nil
}

// InvalidateRates implements portssvc.ResolverSvcFacade.
func (s *resolverService) InvalidateRates() {
	s.rateCache.Flush()
}
