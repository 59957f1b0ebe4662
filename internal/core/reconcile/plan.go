package reconcile

import "github.com/finbooks/ledger_engine/internal/core/domain"

// BuildPlan reconciles the validated candidate set against the records
// already stored for the charge and returns the writes needed to make
// storage reflect the candidates.
//
// An empty storage set short-circuits to a bulk insert. Otherwise the cheap
// exact phase runs first; when it fully matches (the common regeneration
// case, nothing changed) the plan is empty and no writes happen. Only the
// leftovers of the exact phase reach the weighted phase, which tolerates
// small representational drift instead of duplicating history.
func BuildPlan(storage []domain.LedgerRecord, candidates []domain.LedgerEntry) domain.DiffPlan {
	if len(storage) == 0 {
		return domain.DiffPlan{ToInsert: candidates}
	}

	exact := MatchExact(storage, candidates)
	if exact.IsFullyMatched {
		return domain.DiffPlan{}
	}

	scored := MatchScored(exact.UnmatchedStorage, exact.UnmatchedCandidates)

	plan := domain.DiffPlan{ToRemove: scored.Removals}
	for _, update := range scored.Updates {
		if update.RecordID == "" {
			plan.ToInsert = append(plan.ToInsert, update.Entry)
		} else {
			plan.ToUpdate = append(plan.ToUpdate, update)
		}
	}
	return plan
}
