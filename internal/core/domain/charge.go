package domain

import "time"

// ChargeKind discriminates which ledger generator applies to a charge.
type ChargeKind string

const (
	ChargeKindSalary           ChargeKind = "SALARY"
	ChargeKindInternalTransfer ChargeKind = "INTERNAL_TRANSFER"
	ChargeKindFinancial        ChargeKind = "FINANCIAL"
	ChargeKindConversion       ChargeKind = "CONVERSION"
	ChargeKindBusinessTrip     ChargeKind = "BUSINESS_TRIP"
)

// Charge is an accounting event grouping related transactions and documents
// under one owner. Its identity is immutable; edits to the business fields of
// its related rows trigger ledger regeneration.
type Charge struct {
	ChargeID      string     `json:"chargeID"`
	OwnerID       string     `json:"ownerID"`
	Kind          ChargeKind `json:"kind"`
	TaxCategoryID *string    `json:"taxCategoryID,omitempty"`
	Description   string     `json:"description"`
	EventDate     time.Time  `json:"eventDate"`
	AuditFields
}
