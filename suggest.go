package korloc

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance caps the edit distance Suggest accepts; every call scans
// the whole token list.
const maxSuggestDistance = 3

// Suggest returns up to limit locations filed under tokens within maxDistance
// edits of query, closest first, then in token order. It is meant for the
// "did you mean" case where Search finds nothing, and follows the same
// short-circuit rules as Search.
func (x *Index) Suggest(query string, maxDistance, limit int) []Location {
	s := x.snap.Load()
	if s == nil || limit <= 0 || maxDistance <= 0 {
		return nil
	}
	q, ok := normalizeQuery(query)
	if !ok {
		return nil
	}
	if maxDistance > maxSuggestDistance {
		maxDistance = maxSuggestDistance
	}

	type hit struct {
		order int
		dist  int
	}
	var hits []hit
	for order, key := range s.tokens {
		if d := levenshtein.ComputeDistance(q, key); d <= maxDistance {
			hits = append(hits, hit{order: order, dist: d})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].dist < hits[b].dist
	})

	var results []Location
	seen := make(map[int]bool)
	for _, h := range hits {
		for _, i := range s.postings[s.tokens[h.order]] {
			if len(results) >= limit {
				return results
			}
			if !seen[i] {
				seen[i] = true
				results = append(results, s.locations[i])
			}
		}
	}
	return results
}
