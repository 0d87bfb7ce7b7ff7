package match

import (
	"sort"

	"github.com/yojanamitra-core/server/internal/model"
)

// ScoredScheme pairs a scheme with its evaluation result for ranking.
type ScoredScheme struct {
	Scheme model.Scheme
	Result
}

// Density is the share of evaluable criteria the profile satisfied. Rewards
// schemes fully satisfied by a sparse profile over partial matches on richer
// ones.
func (s ScoredScheme) Density() float64 {
	total := s.TotalEvaluable
	if total < 1 {
		total = 1
	}
	return float64(s.MatchedCount) / float64(total)
}

// Rank orders eligible candidates: matched count descending, then match
// density descending, then soonest deadline first with missing deadlines
// last, then scheme ID ascending for determinism.
func Rank(candidates []ScoredScheme) []ScoredScheme {
	eligible := make([]ScoredScheme, 0, len(candidates))
	for _, c := range candidates {
		if c.Eligible {
			eligible = append(eligible, c)
		}
	}
	sortScored(eligible)
	return eligible
}

// RankAll orders every candidate regardless of eligibility. Diagnostic use
// only; never on the user-facing query path.
func RankAll(candidates []ScoredScheme) []ScoredScheme {
	out := make([]ScoredScheme, len(candidates))
	copy(out, candidates)
	sortScored(out)
	return out
}

func sortScored(s []ScoredScheme) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.MatchedCount != b.MatchedCount {
			return a.MatchedCount > b.MatchedCount
		}
		if da, db := a.Density(), b.Density(); da != db {
			return da > db
		}
		switch {
		case a.Scheme.Deadline != nil && b.Scheme.Deadline == nil:
			return true
		case a.Scheme.Deadline == nil && b.Scheme.Deadline != nil:
			return false
		case a.Scheme.Deadline != nil && b.Scheme.Deadline != nil:
			if !a.Scheme.Deadline.Equal(*b.Scheme.Deadline) {
				return a.Scheme.Deadline.Before(*b.Scheme.Deadline)
			}
		}
		return a.Scheme.ID < b.Scheme.ID
	})
}
