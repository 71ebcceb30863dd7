package dedupe

import (
	"testing"

	"github.com/omniscope/omniscope/internal/model"
)

func cardWithDOI(id, doi string) *model.BookCard {
	return &model.BookCard{ID: id, Identifiers: &model.Identifiers{DOI: doi}}
}

func TestByDOIGroupsExactMatches(t *testing.T) {
	cards := []*model.BookCard{
		cardWithDOI("a", "10.1234/a"),
		cardWithDOI("b", "10.1234/a"),
		cardWithDOI("c", "10.5678/c"),
	}
	groups := ByDOI(cards)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}
	if groups[0].Value != "10.1234/a" || len(groups[0].IDs) != 2 {
		t.Errorf("unexpected group: %+v", groups[0])
	}
}

func TestByDOIIgnoresSingletonsAndEmpty(t *testing.T) {
	cards := []*model.BookCard{
		cardWithDOI("a", "10.1234/a"),
		{ID: "b"},
	}
	if groups := ByDOI(cards); len(groups) != 0 {
		t.Fatalf("expected no groups, got %+v", groups)
	}
}

func cardWithTitle(id, title string) *model.BookCard {
	return &model.BookCard{ID: id, Metadata: model.Metadata{Title: title}}
}

// Mirrors dedup.rs's test_find_by_title_fuzzy: punctuation, case, and
// whitespace differences should still merge, but an unrelated title and a
// title whose edit distance puts it below the 0.9 similarity threshold
// must not.
func TestByTitleFuzzyGroupsNearDuplicates(t *testing.T) {
	cards := []*model.BookCard{
		cardWithTitle("a1", "Attention Is All You Need"),
		cardWithTitle("a2", "Attention is all you need!"),
		cardWithTitle("a3", "Attention  is all you   need"),
		cardWithTitle("b1", "BERT: Pre-training of Deep Bidirectional Transformers"),
		cardWithTitle("b2", "bert pretraining of deep bidirectional transformers"),
		cardWithTitle("c1", "Some completely unrelated long title"),
	}

	groups := ByTitleFuzzy(cards)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}

	sizes := map[int]bool{}
	for _, g := range groups {
		sizes[len(g.IDs)] = true
	}
	if !sizes[3] || !sizes[2] {
		t.Fatalf("expected one group of 3 (attention) and one of 2 (bert), got sizes %v", sizes)
	}
}

func TestByTitleFuzzyRejectsBelowThresholdSimilarity(t *testing.T) {
	cards := []*model.BookCard{
		cardWithTitle("a", "Introduction to Algorithms"),
		cardWithTitle("b", "Introduction to Algebra"),
	}
	if groups := ByTitleFuzzy(cards); len(groups) != 0 {
		t.Fatalf("expected no groups for dissimilar titles, got %+v", groups)
	}
}

func TestByTitleFuzzyIgnoresEmptyTitles(t *testing.T) {
	cards := []*model.BookCard{
		cardWithTitle("a", ""),
		cardWithTitle("b", ""),
	}
	if groups := ByTitleFuzzy(cards); len(groups) != 0 {
		t.Fatalf("expected no groups for empty titles, got %+v", groups)
	}
}
