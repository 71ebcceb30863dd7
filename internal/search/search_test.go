package search

import (
	"testing"
	"time"
)

func TestFuzzyEmptyQueryReturnsAllUnscored(t *testing.T) {
	in := []Summary{{ID: "1", Title: "Attention Is All You Need"}, {ID: "2", Title: "The Go Programming Language"}}
	out := Fuzzy("", in)
	if len(out) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(out))
	}
	for i, r := range out {
		if r.Score != 0 {
			t.Errorf("expected score 0 for empty query, got %v", r.Score)
		}
		if r.Summary.ID != in[i].ID {
			t.Errorf("expected input order preserved")
		}
	}
}

func TestFuzzyOnlyMatchesSubsequence(t *testing.T) {
	in := []Summary{
		{ID: "hit", Title: "The Go Programming Language"},
		{ID: "miss", Title: "Rust in Action"},
	}
	out := Fuzzy("gopl", in)
	if len(out) != 1 || out[0].Summary.ID != "hit" {
		t.Fatalf("expected only %q to match, got %+v", "hit", out)
	}
}

func TestFuzzySortedDescending(t *testing.T) {
	in := []Summary{
		{ID: "weak", Title: "xxxxxGoxxxxx"},
		{ID: "strong", Title: "Go"},
	}
	out := Fuzzy("go", in)
	if len(out) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(out))
	}
	if out[0].Summary.ID != "strong" {
		t.Errorf("expected the tighter match to rank first, got %+v", out)
	}
	if out[0].Score < out[1].Score {
		t.Errorf("expected descending scores, got %v then %v", out[0].Score, out[1].Score)
	}
}

func TestFrecencyMoreRecentScoresHigher(t *testing.T) {
	now := time.Now()
	recent := Frecency(5, now.Add(-1*time.Hour), now)
	old := Frecency(5, now.Add(-100*24*time.Hour), now)
	if recent <= old {
		t.Fatalf("expected more recent access to score higher: recent=%v old=%v", recent, old)
	}
}

func TestFrecencyMoreAccessesScoresHigher(t *testing.T) {
	now := time.Now()
	same := now.Add(-time.Hour)
	low := Frecency(1, same, now)
	high := Frecency(16, same, now)
	if high <= low {
		t.Fatalf("expected more accesses to score higher: low=%v high=%v", low, high)
	}
}

func TestBoostWithFrecencyCapsAtHalfScore(t *testing.T) {
	boosted := BoostWithFrecency(10, 1000)
	if boosted > 15 {
		t.Fatalf("boost must not exceed 0.5*score above base: got %v", boosted)
	}
}
