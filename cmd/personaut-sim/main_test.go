package main

import "testing"

func TestParsePairs(t *testing.T) {
	got := parsePairs("hopeful=0.8, excited=0.5,anxious=0.2")
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	if got["hopeful"] != 0.8 || got["excited"] != 0.5 || got["anxious"] != 0.2 {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestParsePairsSkipsMalformedEntries(t *testing.T) {
	got := parsePairs("hopeful=0.8,,broken,also=notanumber")
	if len(got) != 1 || got["hopeful"] != 0.8 {
		t.Errorf("expected only the valid entry, got %v", got)
	}
}

func TestParsePairsEmpty(t *testing.T) {
	if got := parsePairs(""); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
