package pathmatch

import "sort"

// topK maintains the best-scoring matches seen so far within a single
// worker's shard, as a slice kept sorted by Less via binary-search
// insertion — not a heap, per spec.md §4.3 ("the original keeps this as
// a sorted Vec with a binary-search insert, not a binary heap, because
// the bound K is small and the comparison is cheap").
type topK struct {
	limit   int
	entries []PathMatch
}

func newTopK(limit int) *topK {
	return &topK{limit: limit, entries: make([]PathMatch, 0, limit)}
}

// minScore returns the cutoff a new candidate must beat to be worth
// scoring in full: 0 until the heap fills, then the current worst
// entry's score once it is at capacity.
func (k *topK) minScore() float64 {
	if len(k.entries) < k.limit {
		return 0
	}
	return k.entries[len(k.entries)-1].Score
}

// insert places m into the sorted slice. When the slice is already at
// limit, m is dropped unless it beats the worst entry, which it then
// evicts.
func (k *topK) insert(m PathMatch) {
	if len(k.entries) >= k.limit && !Less(m, k.entries[len(k.entries)-1]) {
		return
	}

	i := sort.Search(len(k.entries), func(i int) bool {
		return Less(m, k.entries[i])
	})

	k.entries = append(k.entries, PathMatch{})
	copy(k.entries[i+1:], k.entries[i:])
	k.entries[i] = m

	if len(k.entries) > k.limit {
		k.entries = k.entries[:k.limit]
	}
}

func (k *topK) sorted() []PathMatch {
	return k.entries
}
