// Package dedupe groups cards that share a normalized external identifier
// (spec.md §8: "Duplicate detection by DOI"), plus a fuzzy-title strategy
// for cards that carry no identifier at all — grounded on
// original_source/crates/omniscope-science/src/dedup.rs's DuplicateFinder,
// which exposes exactly these three strategies (ByDoi, ByIsbn,
// ByTitleFuzzy). It is a thin supplement to internal/enrich: the pipeline
// needs to know which cards already carry an identifier before fetching,
// and the library core needs the same grouping to warn about likely-
// duplicate imports.
package dedupe

import (
	"strings"
	"unicode"

	"github.com/omniscope/omniscope/internal/model"
)

// Group is a set of card IDs that share the same identifier value.
type Group struct {
	Kind  string // "doi", "arxiv", "isbn13", or "title_fuzzy"
	Value string
	IDs   []string
}

// ByDOI groups cards whose identifiers.doi matches, case-insensitively
// (DOIs are already lower-cased by internal/identifier, but defensively
// re-normalized here since cards may have been hand-edited on disk).
func ByDOI(cards []*model.BookCard) []Group {
	return groupBy(cards, "doi", func(c *model.BookCard) string {
		if c.Identifiers == nil {
			return ""
		}
		return strings.ToLower(c.Identifiers.DOI)
	})
}

// ByArxivID groups cards sharing the same bare arXiv ID (version ignored).
func ByArxivID(cards []*model.BookCard) []Group {
	return groupBy(cards, "arxiv", func(c *model.BookCard) string {
		if c.Identifiers == nil {
			return ""
		}
		return c.Identifiers.ArxivID
	})
}

// ByISBN13 groups cards sharing the same ISBN-13.
func ByISBN13(cards []*model.BookCard) []Group {
	return groupBy(cards, "isbn13", func(c *model.BookCard) string {
		if c.Identifiers == nil {
			return ""
		}
		return c.Identifiers.ISBN13
	})
}

// titleFuzzySimilarity is the minimum Levenshtein similarity (1 - distance /
// max-length) for two titles to be considered the same document, matching
// dedup.rs's threshold.
const titleFuzzySimilarity = 0.9

// ByTitleFuzzy groups cards whose normalized titles are near-duplicates by
// Levenshtein distance, for documents with no shared identifier to key off
// of (e.g. two manual imports of the same paper under slightly different
// filenames). Grounded on dedup.rs's find_by_title_fuzzy: a single pass
// assigns each unassigned card to a fresh group, then folds in every later
// unassigned card whose title similarity exceeds 0.9, skipping the
// Levenshtein computation entirely when the length difference alone rules
// out a match (dedup.rs's "if lengths differ by more than 10%, they can't
// have > 0.9 similarity" fast path).
func ByTitleFuzzy(cards []*model.BookCard) []Group {
	titles := make([]string, len(cards))
	for i, c := range cards {
		titles[i] = normalizeTitle(c.Metadata.Title)
	}

	assigned := make([]bool, len(cards))
	var groups []Group

	for i, titleA := range titles {
		if assigned[i] || titleA == "" {
			continue
		}
		ids := []string{cards[i].ID}
		assigned[i] = true

		for j := i + 1; j < len(cards); j++ {
			if assigned[j] {
				continue
			}
			titleB := titles[j]
			if titleB == "" {
				continue
			}

			maxLen := len(titleA)
			if len(titleB) > maxLen {
				maxLen = len(titleB)
			}
			if maxLen == 0 {
				continue
			}
			lenDiff := len(titleA) - len(titleB)
			if lenDiff < 0 {
				lenDiff = -lenDiff
			}
			if float64(lenDiff)/float64(maxLen) > 0.1 {
				continue
			}

			distance := levenshtein(titleA, titleB)
			similarity := 1.0 - float64(distance)/float64(maxLen)
			if similarity > titleFuzzySimilarity {
				ids = append(ids, cards[j].ID)
				assigned[j] = true
			}
		}

		if len(ids) > 1 {
			groups = append(groups, Group{Kind: "title_fuzzy", Value: titleA, IDs: ids})
		}
	}

	return groups
}

// normalizeTitle lower-cases a title, drops everything but letters/digits/
// whitespace, and collapses runs of whitespace to a single space — mirrors
// dedup.rs's normalize_title so punctuation and spacing differences never
// defeat the similarity check.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshtein computes the classic edit distance between two strings with a
// two-row dynamic-programming table (O(min(len)) space). Operates on runes
// so multi-byte characters count as one edit, not one per UTF-8 byte.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func groupBy(cards []*model.BookCard, kind string, key func(*model.BookCard) string) []Group {
	order := make([]string, 0)
	byKey := make(map[string][]string)
	for _, c := range cards {
		k := key(c)
		if k == "" {
			continue
		}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], c.ID)
	}

	var groups []Group
	for _, k := range order {
		ids := byKey[k]
		if len(ids) < 2 {
			continue
		}
		groups = append(groups, Group{Kind: kind, Value: k, IDs: ids})
	}
	return groups
}
