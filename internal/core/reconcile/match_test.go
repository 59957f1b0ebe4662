package reconcile_test

import (
	"testing"
	"time"

	"github.com/finbooks/ledger_engine/internal/core/domain"
	"github.com/finbooks/ledger_engine/internal/core/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testEntry(id string, amount string, day time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:                 id,
		InvoiceDate:        day,
		ValueDate:          day,
		Currency:           "ILS",
		CreditAccountID1:   "acct-bank",
		DebitAccountID1:    "acct-fees",
		CreditLocalAmount1: dec(amount),
		DebitLocalAmount1:  dec(amount),
		Description:        "bank fee",
		Reference:          "ref-" + id,
		OwnerID:            "owner-1",
	}
}

func stored(recordID, chargeID string, entry domain.LedgerEntry) domain.LedgerRecord {
	return domain.LedgerRecord{RecordID: recordID, ChargeID: chargeID, LedgerEntry: entry}
}

var day = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func TestMatchExactFullyMatched(t *testing.T) {
	entries := []domain.LedgerEntry{
		testEntry("t1", "100", day),
		testEntry("t2", "250.50", day.AddDate(0, 0, 1)),
	}
	storage := []domain.LedgerRecord{
		stored("rec-1", "chg-1", entries[0]),
		stored("rec-2", "chg-1", entries[1]),
	}

	result := reconcile.MatchExact(storage, entries)

	assert.True(t, result.IsFullyMatched)
	assert.Equal(t, map[int]string{0: "rec-1", 1: "rec-2"}, result.FullMatches)
	assert.Empty(t, result.UnmatchedStorage)
	assert.Empty(t, result.UnmatchedCandidates)
}

func TestMatchExactIgnoresTimeOfDay(t *testing.T) {
	candidate := testEntry("t1", "100", day)
	storedEntry := candidate
	storedEntry.ValueDate = day.Add(14*time.Hour + 30*time.Minute)
	storedEntry.InvoiceDate = day.Add(9 * time.Hour)

	result := reconcile.MatchExact(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
		[]domain.LedgerEntry{candidate},
	)

	assert.True(t, result.IsFullyMatched, "same calendar day must match regardless of time of day")
}

func TestMatchExactAmountTolerance(t *testing.T) {
	t.Run("within tolerance", func(t *testing.T) {
		candidate := testEntry("t1", "100", day)
		storedEntry := testEntry("t1", "100.0049", day)

		result := reconcile.MatchExact(
			[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
			[]domain.LedgerEntry{candidate},
		)
		assert.True(t, result.IsFullyMatched)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		candidate := testEntry("t1", "100", day)
		storedEntry := testEntry("t1", "100.006", day)

		result := reconcile.MatchExact(
			[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
			[]domain.LedgerEntry{candidate},
		)
		assert.False(t, result.IsFullyMatched)
		assert.Len(t, result.UnmatchedStorage, 1)
		assert.Len(t, result.UnmatchedCandidates, 1)
	})
}

func TestMatchExactAbsentFieldsCompareEqual(t *testing.T) {
	candidate := testEntry("t1", "100", day)
	candidate.CreditAccountID2 = nil
	candidate.CreditLocalAmount2 = nil

	result := reconcile.MatchExact(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", candidate)},
		[]domain.LedgerEntry{candidate},
	)
	assert.True(t, result.IsFullyMatched)

	withSecond := candidate
	second := "acct-other"
	secondAmt := dec("5")
	withSecond.CreditAccountID2 = &second
	withSecond.CreditLocalAmount2 = &secondAmt

	result = reconcile.MatchExact(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", withSecond)},
		[]domain.LedgerEntry{candidate},
	)
	assert.False(t, result.IsFullyMatched, "absent field must not equal a populated one")
}

func TestMatchExactGreedyTakesFirstStorageRecord(t *testing.T) {
	entry := testEntry("t1", "100", day)
	storage := []domain.LedgerRecord{
		stored("rec-a", "chg-1", entry),
		stored("rec-b", "chg-1", entry),
	}

	result := reconcile.MatchExact(storage, []domain.LedgerEntry{entry})

	require.Equal(t, "rec-a", result.FullMatches[0], "first stored record wins")
	assert.False(t, result.IsFullyMatched, "length mismatch is never fully matched")
	require.Len(t, result.UnmatchedStorage, 1)
	assert.Equal(t, "rec-b", result.UnmatchedStorage[0].RecordID)
}

func TestMatchScoredPairsClosestCandidate(t *testing.T) {
	storedEntry := testEntry("t1", "100", day)
	edited := testEntry("t1", "105", day) // amount edited well past tolerance
	unrelated := domain.LedgerEntry{
		ID:                 "t9",
		InvoiceDate:        day.AddDate(0, 2, 0),
		ValueDate:          day.AddDate(0, 2, 0),
		Currency:           "USD",
		CreditAccountID1:   "acct-x",
		DebitAccountID1:    "acct-y",
		CreditLocalAmount1: dec("7"),
		DebitLocalAmount1:  dec("7"),
		Description:        "other",
		Reference:          "ref-t9",
		OwnerID:            "owner-2",
	}

	result := reconcile.MatchScored(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
		[]domain.LedgerEntry{unrelated, edited},
	)

	require.Len(t, result.Updates, 2)
	assert.Equal(t, "rec-1", result.Updates[0].RecordID)
	assert.Equal(t, "t1", result.Updates[0].Entry.ID, "edited entry outranks the unrelated one")
	assert.Empty(t, result.Updates[1].RecordID, "leftover candidate becomes an insert")
	assert.Empty(t, result.Removals)
}

func TestMatchScoredTieKeepsFirstSeen(t *testing.T) {
	storedEntry := testEntry("t1", "100", day)
	first := testEntry("t1", "100", day)
	first.ID = "cand-first"
	second := testEntry("t1", "100", day)
	second.ID = "cand-second"

	result := reconcile.MatchScored(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
		[]domain.LedgerEntry{first, second},
	)

	require.Len(t, result.Updates, 2)
	assert.Equal(t, "cand-first", result.Updates[0].Entry.ID, "equal score must not displace an earlier candidate")
}

func TestMatchScoredNoPositiveScoreRemoves(t *testing.T) {
	storedEntry := testEntry("t1", "100", day)
	hostile := domain.LedgerEntry{
		ID:                 "t9",
		InvoiceDate:        day.AddDate(1, 0, 0),
		ValueDate:          day.AddDate(1, 0, 0),
		Currency:           "USD",
		CreditAccountID1:   "acct-x",
		DebitAccountID1:    "acct-y",
		CreditLocalAmount1: dec("9999"),
		DebitLocalAmount1:  dec("9999"),
		Description:        "unrelated",
		Reference:          "other",
		OwnerID:            "owner-9",
	}

	result := reconcile.MatchScored(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
		[]domain.LedgerEntry{hostile},
	)

	assert.Equal(t, []string{"rec-1"}, result.Removals)
	require.Len(t, result.Updates, 1)
	assert.Empty(t, result.Updates[0].RecordID)
}

// The scored phase compares dates by exact timestamp while the exact phase
// truncates to the calendar day. The asymmetry is inherited behavior and is
// pinned here so nobody "fixes" it silently.
func TestMatchScoredDateComparesByTimestamp(t *testing.T) {
	storedEntry := testEntry("t1", "100", day)
	storedEntry.ValueDate = day.Add(10 * time.Hour)

	sameDayCandidate := testEntry("t1", "105", day) // midnight, same calendar day
	exactCandidate := testEntry("t1", "105", day)
	exactCandidate.ValueDate = day.Add(10 * time.Hour)
	exactCandidate.ID = "cand-exact"

	result := reconcile.MatchScored(
		[]domain.LedgerRecord{stored("rec-1", "chg-1", storedEntry)},
		[]domain.LedgerEntry{sameDayCandidate, exactCandidate},
	)

	require.Len(t, result.Updates, 2)
	assert.Equal(t, "cand-exact", result.Updates[0].Entry.ID,
		"timestamp-equal valueDate must outscore a same-day-but-midnight one")
}

func TestMatchScoredDeterministic(t *testing.T) {
	storage := []domain.LedgerRecord{
		stored("rec-1", "chg-1", testEntry("t1", "100", day)),
		stored("rec-2", "chg-1", testEntry("t2", "200", day.AddDate(0, 0, 1))),
	}
	candidates := []domain.LedgerEntry{
		testEntry("t2", "210", day.AddDate(0, 0, 1)),
		testEntry("t1", "110", day),
	}

	first := reconcile.MatchScored(storage, candidates)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, reconcile.MatchScored(storage, candidates))
	}
}
