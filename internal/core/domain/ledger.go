package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one freshly generated double-entry leg set for a charge.
// It is transient: entries live only for the duration of a generation request
// until the reconciliation plan is applied.
//
// Up to two accounts may appear on each side. The first local amount on each
// side is always set; second legs and foreign amounts are nil when unused.
// Foreign amounts are present only when Currency is not the local currency.
type LedgerEntry struct {
	ID          string    `json:"id"` // correlates to the source transaction/record, not a storage key
	InvoiceDate time.Time `json:"invoiceDate"`
	ValueDate   time.Time `json:"valueDate"`
	Currency    string    `json:"currency"`

	CreditAccountID1 string  `json:"creditAccountID1"`
	CreditAccountID2 *string `json:"creditAccountID2,omitempty"`
	DebitAccountID1  string  `json:"debitAccountID1"`
	DebitAccountID2  *string `json:"debitAccountID2,omitempty"`

	CreditForeignAmount1 *decimal.Decimal `json:"creditForeignAmount1,omitempty"`
	CreditForeignAmount2 *decimal.Decimal `json:"creditForeignAmount2,omitempty"`
	DebitForeignAmount1  *decimal.Decimal `json:"debitForeignAmount1,omitempty"`
	DebitForeignAmount2  *decimal.Decimal `json:"debitForeignAmount2,omitempty"`

	CreditLocalAmount1 decimal.Decimal  `json:"creditLocalAmount1"`
	CreditLocalAmount2 *decimal.Decimal `json:"creditLocalAmount2,omitempty"`
	DebitLocalAmount1  decimal.Decimal  `json:"debitLocalAmount1"`
	DebitLocalAmount2  *decimal.Decimal `json:"debitLocalAmount2,omitempty"`

	Description string `json:"description"`
	Reference   string `json:"reference"`
	OwnerID     string `json:"ownerID"`
}

// CreditLocalTotal sums the local-currency credit side of the entry.
func (e LedgerEntry) CreditLocalTotal() decimal.Decimal {
	total := e.CreditLocalAmount1
	if e.CreditLocalAmount2 != nil {
		total = total.Add(*e.CreditLocalAmount2)
	}
	return total
}

// DebitLocalTotal sums the local-currency debit side of the entry.
func (e LedgerEntry) DebitLocalTotal() decimal.Decimal {
	total := e.DebitLocalAmount1
	if e.DebitLocalAmount2 != nil {
		total = total.Add(*e.DebitLocalAmount2)
	}
	return total
}

// LedgerRecord is a persisted ledger entry. RecordID is the durable storage
// key; the embedded entry fields carry the accounting content compared during
// reconciliation.
type LedgerRecord struct {
	RecordID string `json:"recordID"`
	ChargeID string `json:"chargeID"`
	LedgerEntry
	AuditFields
}

// RecordUpdate pairs an existing storage id with the candidate entry whose
// field values replace the stored ones.
type RecordUpdate struct {
	RecordID string      `json:"recordID"`
	Entry    LedgerEntry `json:"entry"`
}

// DiffPlan is the outcome of reconciling freshly generated entries against
// the records already stored for the same charge. It is computed fresh on
// every regeneration and never persisted itself.
type DiffPlan struct {
	ToInsert []LedgerEntry  `json:"toInsert"`
	ToUpdate []RecordUpdate `json:"toUpdate"`
	ToRemove []string       `json:"toRemove"`
}

// IsEmpty reports whether applying the plan would perform no writes.
func (p DiffPlan) IsEmpty() bool {
	return len(p.ToInsert) == 0 && len(p.ToUpdate) == 0 && len(p.ToRemove) == 0
}
