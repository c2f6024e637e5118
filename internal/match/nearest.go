package match

import "sort"

// DefaultThreshold is the minimum Ratio a candidate needs to be accepted by Closest.
const DefaultThreshold = 0.3

// suggestThreshold is stricter than DefaultThreshold: a wrong "did you mean"
// hint is worse than none.
const suggestThreshold = 0.6

// Closest returns the index of the candidate most similar to value, its score,
// and whether that score reaches threshold. Comparison is caseless unless
// caseSensitive is set. Ties go to the earliest candidate.
func Closest(value string, candidates []string, threshold float64, caseSensitive bool) (int, float64, bool) {
	best, bestScore := -1, -1.0

	key := value
	if !caseSensitive {
		key = Fold(value)
	}

	for i, c := range candidates {
		if !caseSensitive {
			c = Fold(c)
		}

		score := Ratio(key, c)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < threshold {
		return -1, bestScore, false
	}

	return best, bestScore, true
}

// Candidate is a ranked name suggestion.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is sorted by score descending, then by name.
type CandidateList []Candidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Names returns the candidate names in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i := range c {
		names[i] = c[i].Name
	}

	return names
}

// Suggest ranks known names by identifier similarity to name and returns at most
// limit of them that look like plausible misspellings.
func Suggest(name string, known []string, limit int) CandidateList {
	var out CandidateList

	for _, k := range known {
		score := IdentRatio(name, k)
		if score >= suggestThreshold {
			out = append(out, Candidate{Name: k, Score: score})
		}
	}

	sort.Sort(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
