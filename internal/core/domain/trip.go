package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripExpense is one attendee's reimbursable expense on a business trip
// charge. Amount is in the expense currency; conversion to local currency
// happens at generation time using the expense date.
type TripExpense struct {
	TripExpenseID string          `json:"tripExpenseID"`
	ChargeID      string          `json:"chargeID"`
	EmployeeID    string          `json:"employeeID"`
	Destination   string          `json:"destination"`
	Category      string          `json:"category"` // flights, accommodation, per-diem, ...
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   time.Time       `json:"expenseDate"`
	AuditFields
}
