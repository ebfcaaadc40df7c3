package engine

import (
	"testing"

	"github.com/blockberries/stepberry/types"
)

func TestTallyDistinctSources(t *testing.T) {
	tally := NewTally[string]()
	if !tally.Add("value1", 2, 1) {
		t.Error("first vote should count")
	}
	if tally.Add("value1", 2, 1) {
		t.Error("duplicate vote should not count")
	}
	tally.Add("value1", 3, 1)
	tally.Add("value2", 3, 2)

	if got := tally.Count("value1"); got != 2 {
		t.Errorf("expected 2 votes for value1, got %d", got)
	}
	if got := tally.Count("missing"); got != 0 {
		t.Errorf("expected 0 votes for unknown key, got %d", got)
	}
	if tally.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", tally.Len())
	}
}

func TestTallyReachedOrdersByWeight(t *testing.T) {
	tally := NewTally[string]()
	for _, src := range []types.NodeID{2, 3} {
		tally.Add("low", src, 1)
		tally.Add("high", src, 4)
	}
	tally.Add("minority", 4, 9)

	reached := tally.Reached(2)
	if len(reached) != 2 {
		t.Fatalf("expected 2 quorate keys, got %d", len(reached))
	}
	if reached[0].Key != "high" || reached[0].Highest != 4 {
		t.Errorf("expected high first, got %s (%d)", reached[0].Key, reached[0].Highest)
	}
	if reached[1].Key != "low" {
		t.Errorf("expected low second, got %s", reached[1].Key)
	}

	counts := tally.Counts()
	if counts["minority"] != 1 || counts["high"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestTallyDuplicateRaisesWeight(t *testing.T) {
	tally := NewTally[types.NodeID]()
	tally.Add(1, 2, 1)
	tally.Add(1, 2, 3)
	entries := tally.Entries()
	if len(entries) != 1 || entries[0].Count() != 1 || entries[0].Highest != 3 {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}
