package typoutil

import "sort"

// Suggestion is a candidate term within the edit limit of a query.
type Suggestion struct {
	Term     string `json:"term"`
	Distance int    `json:"distance"`
}

// Closest returns up to limit terms within maxDistance edits of term, nearest
// first. Ties keep the order of terms. Exact matches are not suggestions.
// A non-positive limit returns every match.
func Closest(term string, terms []string, maxDistance, limit int) []Suggestion {
	out := make([]Suggestion, 0)
	if term == "" || maxDistance <= 0 {
		return out
	}

	for _, candidate := range terms {
		if candidate == term {
			continue
		}
		if d := Distance(term, candidate, maxDistance); d <= maxDistance {
			out = append(out, Suggestion{Term: candidate, Distance: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MaxDistanceFor scales the edit budget with the length of term so that
// short names do not collect unrelated suggestions.
func MaxDistanceFor(term string) int {
	switch n := len([]rune(term)); {
	case n <= 3:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}
