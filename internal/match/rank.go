package match

import (
	"cmp"
	"slices"
)

// MinSuggestionScore is the lowest similarity a candidate needs to be suggested.
const MinSuggestionScore = 0.5

type scored struct {
	name  string
	score float64
}

// Rank orders candidates by Score to name, best first.
// Candidates scoring below MinSuggestionScore are dropped; at most limit names are returned.
func Rank(name string, candidates []string, limit int) []string {
	var all []scored

	for _, c := range candidates {
		s := Score(name, c)
		if s < MinSuggestionScore {
			continue
		}

		all = append(all, scored{name: c, score: s})
	}

	slices.SortStableFunc(all, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.name)
	}

	return out
}
