package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SalaryAccounts holds the tax category ids that drive the fixed monthly
// salary expense-recognition legs. Every id must resolve to a configured tax
// category; a missing id fails salary generation.
type SalaryAccounts struct {
	GrossExpenseID          string
	SocialSecurityExpenseID string
	SocialSecurityPayableID string
	TaxAuthorityID          string
	PensionExpenseID        string
	TrainingExpenseID       string
	CompensationExpenseID   string
	ZkufotExpenseID         string
	ZkufotIncomeID          string
}

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// LocalCurrency is the currency ledger records balance in.
	LocalCurrency string

	// LedgerLockDate closes the books: no financial charge may target a
	// period on or before it. Zero when no lock is configured.
	LedgerLockDate time.Time

	// RateCacheTTL bounds how long resolved exchange rates stay cached in
	// memory.
	RateCacheTTL time.Duration

	// PriceAPIBaseURL is the external crypto price endpoint.
	PriceAPIBaseURL string

	// CryptoCurrencies lists symbols resolved through the two-tier crypto
	// price lookup instead of the fiat rate table.
	CryptoCurrencies []string

	// Tax categories wired into the generators.
	FeesTaxCategoryID         string
	ExchangeDifferenceID      string
	ConversionTaxCategoryID   string
	BusinessTripTaxCategoryID string
	// TransferCategories maps a currency code to the clearing tax category
	// used for internal transfers in that currency; DefaultTransferCategoryID
	// covers the rest.
	TransferCategories        map[string]string
	DefaultTransferCategoryID string

	Salary SalaryAccounts
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOCAL_CURRENCY", "ILS")
	viper.SetDefault("LEDGER_LOCK_DATE", "")
	viper.SetDefault("RATE_CACHE_TTL", "1h")
	viper.SetDefault("PRICE_API_BASE_URL", "https://api.coingecko.com/api/v3")
	viper.SetDefault("CRYPTO_CURRENCIES", "BTC,ETH,USDC,GRT")
	viper.SetDefault("FEES_TAX_CATEGORY_ID", "")
	viper.SetDefault("EXCHANGE_DIFFERENCE_TAX_CATEGORY_ID", "")
	viper.SetDefault("CONVERSION_TAX_CATEGORY_ID", "")
	viper.SetDefault("BUSINESS_TRIP_TAX_CATEGORY_ID", "")
	viper.SetDefault("TRANSFER_TAX_CATEGORY_ID", "")
	viper.SetDefault("TRANSFER_TAX_CATEGORIES", "") // "USD=tc-usd,EUR=tc-eur"
	viper.SetDefault("SALARY_GROSS_EXPENSE_ID", "")
	viper.SetDefault("SALARY_SOCIAL_SECURITY_EXPENSE_ID", "")
	viper.SetDefault("SALARY_SOCIAL_SECURITY_PAYABLE_ID", "")
	viper.SetDefault("SALARY_TAX_AUTHORITY_ID", "")
	viper.SetDefault("SALARY_PENSION_EXPENSE_ID", "")
	viper.SetDefault("SALARY_TRAINING_EXPENSE_ID", "")
	viper.SetDefault("SALARY_COMPENSATION_EXPENSE_ID", "")
	viper.SetDefault("SALARY_ZKUFOT_EXPENSE_ID", "")
	viper.SetDefault("SALARY_ZKUFOT_INCOME_ID", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.LocalCurrency = strings.ToUpper(viper.GetString("LOCAL_CURRENCY"))

	if lockStr := viper.GetString("LEDGER_LOCK_DATE"); lockStr != "" {
		lock, err := time.Parse("2006-01-02", lockStr)
		if err != nil {
			log.Printf("Warning: Invalid value for LEDGER_LOCK_DATE ('%s'). Books stay unlocked.\n", lockStr)
		} else {
			cfg.LedgerLockDate = lock
		}
	}

	ttlStr := viper.GetString("RATE_CACHE_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		ttl = time.Hour
		log.Printf("Warning: Invalid value for RATE_CACHE_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.RateCacheTTL = ttl

	cfg.PriceAPIBaseURL = viper.GetString("PRICE_API_BASE_URL")
	for _, symbol := range strings.Split(viper.GetString("CRYPTO_CURRENCIES"), ",") {
		if symbol = strings.TrimSpace(strings.ToUpper(symbol)); symbol != "" {
			cfg.CryptoCurrencies = append(cfg.CryptoCurrencies, symbol)
		}
	}

	cfg.FeesTaxCategoryID = viper.GetString("FEES_TAX_CATEGORY_ID")
	cfg.ExchangeDifferenceID = viper.GetString("EXCHANGE_DIFFERENCE_TAX_CATEGORY_ID")
	cfg.ConversionTaxCategoryID = viper.GetString("CONVERSION_TAX_CATEGORY_ID")
	cfg.BusinessTripTaxCategoryID = viper.GetString("BUSINESS_TRIP_TAX_CATEGORY_ID")
	cfg.DefaultTransferCategoryID = viper.GetString("TRANSFER_TAX_CATEGORY_ID")

	cfg.TransferCategories = make(map[string]string)
	for _, pair := range strings.Split(viper.GetString("TRANSFER_TAX_CATEGORIES"), ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		currency, id, found := strings.Cut(pair, "=")
		if !found {
			log.Printf("Warning: Ignoring malformed TRANSFER_TAX_CATEGORIES entry '%s'.\n", pair)
			continue
		}
		cfg.TransferCategories[strings.ToUpper(strings.TrimSpace(currency))] = strings.TrimSpace(id)
	}

	cfg.Salary = SalaryAccounts{
		GrossExpenseID:          viper.GetString("SALARY_GROSS_EXPENSE_ID"),
		SocialSecurityExpenseID: viper.GetString("SALARY_SOCIAL_SECURITY_EXPENSE_ID"),
		SocialSecurityPayableID: viper.GetString("SALARY_SOCIAL_SECURITY_PAYABLE_ID"),
		TaxAuthorityID:          viper.GetString("SALARY_TAX_AUTHORITY_ID"),
		PensionExpenseID:        viper.GetString("SALARY_PENSION_EXPENSE_ID"),
		TrainingExpenseID:       viper.GetString("SALARY_TRAINING_EXPENSE_ID"),
		CompensationExpenseID:   viper.GetString("SALARY_COMPENSATION_EXPENSE_ID"),
		ZkufotExpenseID:         viper.GetString("SALARY_ZKUFOT_EXPENSE_ID"),
		ZkufotIncomeID:          viper.GetString("SALARY_ZKUFOT_INCOME_ID"),
	}

	return cfg, nil
}
