package dto

import (
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// RegenerateLedgerRequest triggers regeneration of one charge's ledger.
type RegenerateLedgerRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// RegenerateBatchRequest triggers regeneration of a batch of charges.
type RegenerateBatchRequest struct {
	ChargeIDs []string `json:"chargeIDs" binding:"required,min=1,dive,required"`
	UserID    string   `json:"userID" binding:"required"`
}

// LedgerRecordResponse defines the data returned for a stored ledger record.
type LedgerRecordResponse struct {
	RecordID    string    `json:"recordID"`
	ChargeID    string    `json:"chargeID"`
	EntryRef    string    `json:"entryRef"`
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

	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RegenerationResponse summarizes what one charge's regeneration did.
type RegenerationResponse struct {
	ChargeID  string `json:"chargeID"`
	Unchanged bool   `json:"unchanged"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Removed   int    `json:"removed"`
}

// BatchRegenerationResponse is the combined outcome of a batch run. Failed
// charges appear in Errors; their siblings still complete.
type BatchRegenerationResponse struct {
	Results []RegenerationResponse `json:"results"`
	Errors  []string               `json:"errors,omitempty"`
}

// ToLedgerRecordResponse converts a domain.LedgerRecord to its DTO.
func ToLedgerRecordResponse(record domain.LedgerRecord) LedgerRecordResponse {
	return LedgerRecordResponse{
		RecordID:             record.RecordID,
		ChargeID:             record.ChargeID,
		EntryRef:             record.ID,
		InvoiceDate:          record.InvoiceDate,
		ValueDate:            record.ValueDate,
		Currency:             record.Currency,
		CreditAccountID1:     record.CreditAccountID1,
		CreditAccountID2:     record.CreditAccountID2,
		DebitAccountID1:      record.DebitAccountID1,
		DebitAccountID2:      record.DebitAccountID2,
		CreditForeignAmount1: record.CreditForeignAmount1,
		CreditForeignAmount2: record.CreditForeignAmount2,
		DebitForeignAmount1:  record.DebitForeignAmount1,
		DebitForeignAmount2:  record.DebitForeignAmount2,
		CreditLocalAmount1:   record.CreditLocalAmount1,
		CreditLocalAmount2:   record.CreditLocalAmount2,
		DebitLocalAmount1:    record.DebitLocalAmount1,
		DebitLocalAmount2:    record.DebitLocalAmount2,
		Description:          record.Description,
		Reference:            record.Reference,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.LastUpdatedAt,
	}
}

// ToLedgerRecordResponses converts a slice of domain.LedgerRecord to DTOs.
func ToLedgerRecordResponses(records []domain.LedgerRecord) []LedgerRecordResponse {
	responses := make([]LedgerRecordResponse, len(records))
	for i, record := range records {
		responses[i] = ToLedgerRecordResponse(record)
	}
	return responses
}

// ToRegenerationResponse converts a service result to its DTO.
func ToRegenerationResponse(result portssvc.RegenerationResult) RegenerationResponse {
	return RegenerationResponse{
		ChargeID:  result.ChargeID,
		Unchanged: result.Unchanged,
		Inserted:  len(result.Plan.ToInsert),
		Updated:   len(result.Plan.ToUpdate),
		Removed:   len(result.Plan.ToRemove),
	}
}
