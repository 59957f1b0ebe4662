package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeKind distinguishes how a fee transaction attaches to its charge.
type FeeKind string

const (
	// FeeKindNone marks a regular, non-fee transaction.
	FeeKindNone FeeKind = ""
	// FeeKindSupplemental is a standalone fee charged against the owner's
	// own fee expense account.
	FeeKindSupplemental FeeKind = "SUPPLEMENTAL"
	// FeeKindExchange is a fee embedded in a transfer, charged against the
	// transfer's destination account.
	FeeKindExchange FeeKind = "EXCHANGE"
)

// TransactionRecord is a raw bank or card movement attached to a charge.
// Amount keeps the bank's sign convention: negative leaves the account,
// positive enters it.
type TransactionRecord struct {
	TransactionID      string          `json:"transactionID"`
	ChargeID           string          `json:"chargeID"`
	FinancialAccountID string          `json:"financialAccountID"`
	Currency           string          `json:"currency"`
	Amount             decimal.Decimal `json:"amount"`
	EventDate          time.Time       `json:"eventDate"` // date the movement was recorded
	ValueDate          time.Time       `json:"valueDate"` // date the money actually moved
	FeeKind            FeeKind         `json:"feeKind"`
	SourceDescription  string          `json:"sourceDescription"`
	AuditFields
}

// IsFee reports whether the transaction is a fee leg rather than a principal
// movement of the charge.
func (t TransactionRecord) IsFee() bool {
	return t.FeeKind != FeeKindNone
}
