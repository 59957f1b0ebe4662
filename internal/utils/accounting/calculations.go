package accounting

import (
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the maximum absolute difference under which two monetary
// amounts are considered the same value. It absorbs rounding drift from
// currency conversion; amounts differing by Tolerance or more are distinct.
var Tolerance = decimal.New(5, -3) // 0.005

// AmountsEqual reports whether two local-currency amounts agree within
// Tolerance.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// SameCalendarDay reports whether two timestamps fall on the same UTC
// calendar day, ignoring time of day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// SumLocal returns the local-currency credit and debit totals of an entry
// set.
func SumLocal(entries []domain.LedgerEntry) (credit, debit decimal.Decimal) {
	for _, e := range entries {
		credit = credit.Add(e.CreditLocalTotal())
		debit = debit.Add(e.DebitLocalTotal())
	}
	return credit, debit
}

// LocalImbalance returns credit minus debit for an entry set in local
// currency. A balanced set nets to zero within Tolerance.
func LocalImbalance(entries []domain.LedgerEntry) decimal.Decimal {
	credit, debit := SumLocal(entries)
	return credit.Sub(debit)
}
