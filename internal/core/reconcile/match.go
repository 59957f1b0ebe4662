package reconcile

import "github.com/finbooks/ledger_engine/internal/core/domain"

// ExactMatchResult is the outcome of the exact-match phase.
type ExactMatchResult struct {
	// FullMatches maps candidate index (in generation order) to the storage
	// record id it matched.
	FullMatches map[int]string
	// UnmatchedStorage holds storage records no candidate matched, in stored
	// order.
	UnmatchedStorage []domain.LedgerRecord
	// UnmatchedCandidates holds candidates with no exact storage match, in
	// generation order.
	UnmatchedCandidates []domain.LedgerEntry
	// IsFullyMatched is true when both sets have equal length and every
	// candidate found a match. It is the idempotence signal: a fully matched
	// regeneration performs no writes.
	IsFullyMatched bool
}

// MatchExact pairs candidates with storage records by strict equality over
// all comparison keys. Matching is greedy and order dependent: each candidate
// takes the first still-unmatched storage record it equals, and a fixed match
// is never revisited.
func MatchExact(storage []domain.LedgerRecord, candidates []domain.LedgerEntry) ExactMatchResult {
	result := ExactMatchResult{
		FullMatches: make(map[int]string),
	}

	unmatched := make([]domain.LedgerRecord, len(storage))
	copy(unmatched, storage)

	for i := range candidates {
		found := -1
		for j := range unmatched {
			if entriesExactEqual(&unmatched[j].LedgerEntry, &candidates[i]) {
				found = j
				break
			}
		}
		if found >= 0 {
			result.FullMatches[i] = unmatched[found].RecordID
			unmatched = append(unmatched[:found], unmatched[found+1:]...)
		} else {
			result.UnmatchedCandidates = append(result.UnmatchedCandidates, candidates[i])
		}
	}

	result.UnmatchedStorage = unmatched
	result.IsFullyMatched = len(storage) == len(candidates) && len(result.FullMatches) == len(candidates)
	return result
}

func entriesExactEqual(stored, candidate *domain.LedgerEntry) bool {
	for _, key := range comparisonKeys {
		if !exactEqual(key.get(stored), key.get(candidate)) {
			return false
		}
	}
	return true
}

// ScoredMatchResult is the outcome of the weighted partial-match phase.
type ScoredMatchResult struct {
	// Updates holds matched pairs (storage id kept, field values replaced by
	// the candidate's) followed by every still-unmatched candidate carrying
	// an empty record id, which signals an insert.
	Updates []domain.RecordUpdate
	// Removals holds storage record ids that matched no candidate.
	Removals []string
}

// MatchScored pairs the remaining records by weighted field scoring. For each
// storage record, in stored order, every still-unmatched candidate is scored;
// the candidate with the strictly largest positive score wins and leaves the
// pool. Ties keep the first-seen candidate, and a fixed match is never
// re-optimized, so the result is deterministic for a given ordering.
func MatchScored(storage []domain.LedgerRecord, candidates []domain.LedgerEntry) ScoredMatchResult {
	var result ScoredMatchResult

	pool := make([]domain.LedgerEntry, len(candidates))
	copy(pool, candidates)

	for i := range storage {
		best := 0.0
		bestIdx := -1
		for j := range pool {
			if sc := scoreEntries(&storage[i].LedgerEntry, &pool[j]); sc > best {
				best = sc
				bestIdx = j
			}
		}
		if bestIdx >= 0 {
			result.Updates = append(result.Updates, domain.RecordUpdate{
				RecordID: storage[i].RecordID,
				Entry:    pool[bestIdx],
			})
			pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
		} else {
			result.Removals = append(result.Removals, storage[i].RecordID)
		}
	}

	for _, candidate := range pool {
		result.Updates = append(result.Updates, domain.RecordUpdate{Entry: candidate})
	}

	return result
}

// scoreEntries sums, over every comparison key, +weight when the values agree
// and -weight when they disagree. A populated storage field weighs 1.0, an
// absent one 0.5, so agreement on real data counts double agreement on gaps.
func scoreEntries(stored, candidate *domain.LedgerEntry) float64 {
	score := 0.0
	for _, key := range comparisonKeys {
		sv := key.get(stored)
		cv := key.get(candidate)
		weight := 0.5
		if sv.present {
			weight = 1.0
		}
		if scoredEqual(sv, cv) {
			score += weight
		} else {
			score -= weight
		}
	}
	return score
}
