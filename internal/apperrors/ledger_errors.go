package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerError is the common shape of every failure raised while generating
// ledger entries for a charge. It always names the charge so callers can
// decide whether to surface it to the user or log and move on.
type LedgerError interface {
	error
	ChargeID() string
}

// ResolutionError reports a business concept (tax category, financial
// account, employee) that is not configured with a ledger account.
// Fatal for the generation attempt; retrying without a configuration
// change cannot succeed.
type ResolutionError struct {
	Charge  string
	Concept string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("charge %s: %s is not configured with a ledger account", e.Charge, e.Concept)
}

func (e *ResolutionError) ChargeID() string { return e.Charge }

// ValidationError reports charge data that violates a generator precondition,
// e.g. an internal transfer without exactly two opposite-sign transactions.
type ValidationError struct {
	Charge string
	Rule   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("charge %s: %s", e.Charge, e.Rule)
}

func (e *ValidationError) ChargeID() string { return e.Charge }

// BalanceError reports a candidate entry set that does not net to zero in
// local currency and that no auto-closing rule could repair. Delta is the
// unresolved remainder; Reason names the condition that blocked auto-closing.
type BalanceError struct {
	Charge string
	Delta  decimal.Decimal
	Reason string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("charge %s: ledger entries do not balance, unresolved delta %s (%s)", e.Charge, e.Delta.String(), e.Reason)
}

func (e *BalanceError) ChargeID() string { return e.Charge }

// ExternalLookupError reports a failed call to an external provider such as
// the exchange-rate API. Potentially transient; the caller may retry the
// whole generation.
type ExternalLookupError struct {
	Charge   string
	Provider string
	Err      error
}

func (e *ExternalLookupError) Error() string {
	return fmt.Sprintf("charge %s: %s lookup failed: %v", e.Charge, e.Provider, e.Err)
}

func (e *ExternalLookupError) ChargeID() string { return e.Charge }

func (e *ExternalLookupError) Unwrap() error { return e.Err }
