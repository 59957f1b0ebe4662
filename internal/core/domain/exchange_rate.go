package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one day's conversion rate from Currency into the local
// currency.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	Currency       string          `json:"currency"`
	Rate           decimal.Decimal `json:"rate"`
	Date           time.Time       `json:"date"`
	AuditFields
}

// CryptoPrice is a cached sample of a crypto asset's price against a fiat
// currency, keyed by (date, symbol, against).
type CryptoPrice struct {
	Symbol     string          `json:"symbol"`
	Against    string          `json:"against"`
	Date       time.Time       `json:"date"`
	Price      decimal.Decimal `json:"price"`
	SampledAt  time.Time       `json:"sampledAt"`
	AuditFields
}
