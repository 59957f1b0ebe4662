package domain

import "github.com/shopspring/decimal"

// SalaryRecord holds one employee's payroll figures for one month.
// All amounts are in local currency.
type SalaryRecord struct {
	SalaryRecordID string `json:"salaryRecordID"`
	ChargeID       string `json:"chargeID"`
	EmployeeID     string `json:"employeeID"`
	Month          string `json:"month"` // YYYY-MM

	BaseSalary  decimal.Decimal `json:"baseSalary"`
	GrossSalary decimal.Decimal `json:"grossSalary"`

	// Statutory withholdings deducted from the employee.
	IncomeTax              decimal.Decimal `json:"incomeTax"`
	SocialSecurityEmployee decimal.Decimal `json:"socialSecurityEmployee"`
	HealthInsurance        decimal.Decimal `json:"healthInsurance"`

	// Employer-side contributions.
	SocialSecurityEmployer decimal.Decimal `json:"socialSecurityEmployer"`
	CompensationEmployer   decimal.Decimal `json:"compensationEmployer"`

	// Fund deposits. Fund IDs are nil when no fund is configured for the
	// employee; a positive amount with a nil fund ID is a resolution failure.
	PensionFundID    *string         `json:"pensionFundID,omitempty"`
	PensionEmployee  decimal.Decimal `json:"pensionEmployee"`
	PensionEmployer  decimal.Decimal `json:"pensionEmployer"`
	TrainingFundID   *string         `json:"trainingFundID,omitempty"`
	TrainingEmployee decimal.Decimal `json:"trainingEmployee"`
	TrainingEmployer decimal.Decimal `json:"trainingEmployer"`

	// Zkufot is the notional amount recognized and offset in the same month.
	Zkufot decimal.Decimal `json:"zkufot"`

	AuditFields
}

// NetPay is the direct payment owed to the employee: gross minus statutory
// withholdings and the employee's own fund deposits.
func (s SalaryRecord) NetPay() decimal.Decimal {
	return s.GrossSalary.
		Sub(s.IncomeTax).
		Sub(s.SocialSecurityEmployee).
		Sub(s.HealthInsurance).
		Sub(s.PensionEmployee).
		Sub(s.TrainingEmployee)
}
