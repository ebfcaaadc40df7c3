package engine

import (
	"sort"

	"github.com/blockberries/stepberry/types"
)

// Tally counts votes per key, at most one vote per distinct source. Each key
// also remembers the highest weight (proposal number, term) seen for it.
type Tally[K comparable] struct {
	order []K
	byKey map[K]*TallyEntry[K]
}

// TallyEntry is the aggregated vote count for one key
type TallyEntry[K comparable] struct {
	Key     K
	Sources []types.NodeID
	Highest uint64

	seen map[types.NodeID]struct{}
}

// Count returns the number of distinct sources that voted for the key.
func (e *TallyEntry[K]) Count() int {
	return len(e.Sources)
}

// NewTally creates an empty tally.
func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{byKey: make(map[K]*TallyEntry[K])}
}

// Add records a vote for key from source with the given weight. It returns
// true if the source had not yet voted for the key. Duplicate votes still
// raise the highest weight.
func (t *Tally[K]) Add(key K, source types.NodeID, weight uint64) bool {
	e, ok := t.byKey[key]
	if !ok {
		e = &TallyEntry[K]{Key: key, seen: make(map[types.NodeID]struct{})}
		t.byKey[key] = e
		t.order = append(t.order, key)
	}
	if weight > e.Highest {
		e.Highest = weight
	}
	if _, dup := e.seen[source]; dup {
		return false
	}
	e.seen[source] = struct{}{}
	e.Sources = append(e.Sources, source)
	return true
}

// Count returns the number of distinct sources for key.
func (t *Tally[K]) Count(key K) int {
	if e, ok := t.byKey[key]; ok {
		return e.Count()
	}
	return 0
}

// Len returns the number of distinct keys.
func (t *Tally[K]) Len() int {
	return len(t.order)
}

// Entries returns the entries in first-seen order.
func (t *Tally[K]) Entries() []*TallyEntry[K] {
	out := make([]*TallyEntry[K], len(t.order))
	for i, k := range t.order {
		out[i] = t.byKey[k]
	}
	return out
}

// Reached returns the entries whose count meets quorum, ordered by highest
// weight descending. Ties keep first-seen order.
func (t *Tally[K]) Reached(quorum int) []*TallyEntry[K] {
	var out []*TallyEntry[K]
	for _, k := range t.order {
		if e := t.byKey[k]; e.Count() >= quorum {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Highest > out[j].Highest
	})
	return out
}

// Counts returns key -> distinct source count.
func (t *Tally[K]) Counts() map[K]int {
	out := make(map[K]int, len(t.order))
	for _, k := range t.order {
		out[k] = t.byKey[k].Count()
	}
	return out
}
