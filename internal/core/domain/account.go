package domain

// FinancialAccountType classifies a financial account by its provider.
type FinancialAccountType string

const (
	BankAccount   FinancialAccountType = "BANK_ACCOUNT"
	CreditCard    FinancialAccountType = "CARD"
	CryptoWallet  FinancialAccountType = "CRYPTO_WALLET"
	ClearingHouse FinancialAccountType = "CLEARING_HOUSE"
)

// FinancialAccount is a real-world account (bank, card, wallet) owned by a
// business. LedgerAccountID is the opaque ledger account its movements post
// to; an account without one cannot participate in generation.
type FinancialAccount struct {
	AccountID       string               `json:"accountID"`
	OwnerID         string               `json:"ownerID"`
	Type            FinancialAccountType `json:"type"`
	Currency        string               `json:"currency"`
	LedgerAccountID string               `json:"ledgerAccountID"`
	AuditFields
}

// TaxCategory maps a bookkeeping concept (fees, exchange differences, salary
// expenses, ...) to the ledger account entries post against.
type TaxCategory struct {
	TaxCategoryID   string `json:"taxCategoryID"`
	Name            string `json:"name"`
	LedgerAccountID string `json:"ledgerAccountID"`
	AuditFields
}

// Employee links a payroll employee to the ledger account used for net salary
// payments.
type Employee struct {
	EmployeeID      string `json:"employeeID"`
	OwnerID         string `json:"ownerID"`
	Name            string `json:"name"`
	LedgerAccountID string `json:"ledgerAccountID"`
	AuditFields
}
