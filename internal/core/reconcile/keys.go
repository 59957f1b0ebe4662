// Package reconcile compares freshly generated ledger entries against the
// records already stored for the same charge and produces an
// insert/update/delete plan. It is pure in-memory comparison: no I/O, no
// errors, safe to run inline or on a worker goroutine.
package reconcile

import (
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type keyKind int

const (
	textKey keyKind = iota
	amountKey
	dateKey
)

// fieldValue is one comparison key's value extracted from an entry, plus
// whether the field is populated at all. Absent fields compare equal only to
// other absent fields.
type fieldValue struct {
	kind    keyKind
	present bool
	text    string
	amount  decimal.Decimal
	date    time.Time
}

func textValue(s string) fieldValue {
	return fieldValue{kind: textKey, present: s != "", text: s}
}

func optTextValue(s *string) fieldValue {
	if s == nil {
		return fieldValue{kind: textKey}
	}
	return textValue(*s)
}

func amountValue(d decimal.Decimal) fieldValue {
	return fieldValue{kind: amountKey, present: true, amount: d}
}

func optAmountValue(d *decimal.Decimal) fieldValue {
	if d == nil {
		return fieldValue{kind: amountKey}
	}
	return amountValue(*d)
}

func dateValue(t time.Time) fieldValue {
	return fieldValue{kind: dateKey, present: !t.IsZero(), date: t}
}

// comparisonKey is one of the fixed fields that decide whether two ledger
// records represent the same accounting fact.
type comparisonKey struct {
	name string
	get  func(*domain.LedgerEntry) fieldValue
}

// comparisonKeys lists all 17 fields compared during reconciliation, in a
// fixed order. invoiceDate and valueDate are date keys; amount keys compare
// within accounting.Tolerance.
var comparisonKeys = []comparisonKey{
	{"creditAccount1", func(e *domain.LedgerEntry) fieldValue { return textValue(e.CreditAccountID1) }},
	{"creditAccount2", func(e *domain.LedgerEntry) fieldValue { return optTextValue(e.CreditAccountID2) }},
	{"creditForeignAmount1", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.CreditForeignAmount1) }},
	{"creditForeignAmount2", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.CreditForeignAmount2) }},
	{"creditLocalAmount1", func(e *domain.LedgerEntry) fieldValue { return amountValue(e.CreditLocalAmount1) }},
	{"creditLocalAmount2", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.CreditLocalAmount2) }},
	{"currency", func(e *domain.LedgerEntry) fieldValue { return textValue(e.Currency) }},
	{"debitAccount1", func(e *domain.LedgerEntry) fieldValue { return textValue(e.DebitAccountID1) }},
	{"debitAccount2", func(e *domain.LedgerEntry) fieldValue { return optTextValue(e.DebitAccountID2) }},
	{"debitForeignAmount1", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.DebitForeignAmount1) }},
	{"debitForeignAmount2", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.DebitForeignAmount2) }},
	{"debitLocalAmount1", func(e *domain.LedgerEntry) fieldValue { return amountValue(e.DebitLocalAmount1) }},
	{"debitLocalAmount2", func(e *domain.LedgerEntry) fieldValue { return optAmountValue(e.DebitLocalAmount2) }},
	{"description", func(e *domain.LedgerEntry) fieldValue { return textValue(e.Description) }},
	{"invoiceDate", func(e *domain.LedgerEntry) fieldValue { return dateValue(e.InvoiceDate) }},
	{"reference", func(e *domain.LedgerEntry) fieldValue { return textValue(e.Reference) }},
	{"valueDate", func(e *domain.LedgerEntry) fieldValue { return dateValue(e.ValueDate) }},
}

// exactEqual is the strict comparison used by the exact-match phase: date
// keys are truncated to the calendar day, amounts compare within Tolerance,
// everything else compares for strict equality including both-absent.
func exactEqual(a, b fieldValue) bool {
	if !a.present || !b.present {
		return a.present == b.present
	}
	switch a.kind {
	case amountKey:
		return accounting.AmountsEqual(a.amount, b.amount)
	case dateKey:
		return accounting.SameCalendarDay(a.date, b.date)
	default:
		return a.text == b.text
	}
}

// scoredEqual is the comparison used by the weighted phase. It matches
// exactEqual except for date keys, which compare by exact timestamp rather
// than calendar day. The asymmetry is deliberate: downstream behavior depends
// on it, so it is kept rather than unified with exactEqual.
func scoredEqual(a, b fieldValue) bool {
	if !a.present || !b.present {
		return a.present == b.present
	}
	switch a.kind {
	case amountKey:
		return accounting.AmountsEqual(a.amount, b.amount)
	case dateKey:
		return a.date.Equal(b.date)
	default:
		return a.text == b.text
	}
}
