package analytics

import (
	"cmp"
	"slices"
)

// Count pairs a grouping key with the number of items that produced it.
type Count[K cmp.Ordered] struct {
	Key   K
	Count int
}

// Ranking is a list of counts ordered by count descending, then key ascending.
type Ranking[K cmp.Ordered] []Count[K]

// Rank groups items by the key returned from key and orders the groups by
// frequency. Items for which key reports false are not counted.
func Rank[T any, K cmp.Ordered](items []T, key func(T) (K, bool)) Ranking[K] {
	counts := make(map[K]int)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		counts[k]++
	}

	ranking := make(Ranking[K], 0, len(counts))
	for k, n := range counts {
		ranking = append(ranking, Count[K]{Key: k, Count: n})
	}
	slices.SortFunc(ranking, func(a, b Count[K]) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return ranking
}

// Top returns at most n leading entries.
func (r Ranking[K]) Top(n int) Ranking[K] {
	if n <= 0 {
		return Ranking[K]{}
	}
	if n > len(r) {
		n = len(r)
	}
	return slices.Clone(r[:n])
}

// First returns the highest ranked entry. The boolean is false when there is no data.
func (r Ranking[K]) First() (Count[K], bool) {
	if len(r) == 0 {
		return Count[K]{}, false
	}
	return r[0], true
}

// Total sums all counts of the ranking.
func (r Ranking[K]) Total() int {
	total := 0
	for _, c := range r {
		total += c.Count
	}
	return total
}
