// Package search implements the fuzzy matcher and the frecency scorer
// spec.md §4.15 describes, independent of any specific rendering toolkit.
//
// The matcher shape (build one searchable string per candidate, run a
// smart-case subsequence match, keep the matched positions for
// highlighting) is grounded on petar-djukic-research-engine's
// internal/search fuzzy-ranking package, generalized from that repo's
// paper-title matching to spec.md's title+authors+tags summary shape.
package search

import (
	"sort"
	"strings"
	"unicode"
)

// Summary is the minimal projection search needs from a book: enough to
// build the single searchable string spec.md §4.15 specifies.
type Summary struct {
	ID      string
	Title   string
	Authors []string
	Tags    []string
}

func (s Summary) searchable() string {
	var b strings.Builder
	b.WriteString(s.Title)
	for _, a := range s.Authors {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	for _, t := range s.Tags {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return b.String()
}

// Result is one scored match.
type Result struct {
	Summary   Summary
	Score     float64
	Positions []int // rune offsets into the searchable string that matched
}

// Fuzzy runs a smart-case fuzzy subsequence match of query against the
// searchable string built from each summary, and returns results sorted by
// descending score. An empty query returns every input with score 0,
// preserving input order.
func Fuzzy(query string, summaries []Summary) []Result {
	if strings.TrimSpace(query) == "" {
		out := make([]Result, len(summaries))
		for i, s := range summaries {
			out[i] = Result{Summary: s}
		}
		return out
	}

	smartCase := hasUpper(query)
	queryRunes := []rune(query)
	if !smartCase {
		queryRunes = []rune(strings.ToLower(query))
	}

	var out []Result
	for _, s := range summaries {
		haystack := []rune(s.searchable())
		cmp := haystack
		if !smartCase {
			cmp = []rune(strings.ToLower(s.searchable()))
		}
		positions, ok := subsequenceMatch(queryRunes, cmp)
		if !ok {
			continue
		}
		out = append(out, Result{
			Summary:   s,
			Score:     score(queryRunes, haystack, positions),
			Positions: positions,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// subsequenceMatch reports whether every rune of query appears in haystack
// in order, greedily picking the earliest available position for each, and
// returns the matched positions.
func subsequenceMatch(query, haystack []rune) ([]int, bool) {
	positions := make([]int, 0, len(query))
	hi := 0
	for _, q := range query {
		found := false
		for ; hi < len(haystack); hi++ {
			if haystack[hi] == q {
				positions = append(positions, hi)
				hi++
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return positions, true
}

// score rewards shorter gaps between matched runes and matches near the
// start of the string, roughly matching petar-djukic-research-engine's
// fuzzy-ranking weights (title-prefix matches rank over scattered ones).
func score(query, haystack []rune, positions []int) float64 {
	if len(positions) == 0 {
		return 0
	}
	base := 100.0 * float64(len(query)) / float64(len(haystack)+1)

	gapPenalty := 0.0
	for i := 1; i < len(positions); i++ {
		gap := positions[i] - positions[i-1] - 1
		gapPenalty += float64(gap)
	}

	startBonus := 10.0 / float64(positions[0]+1)

	s := base - gapPenalty*0.5 + startBonus
	if s < 0 {
		s = 0
	}
	return s
}

// BoostWithFrecency adds a frecency-derived bonus to a fuzzy score, capped
// at half the original score (spec.md §4.15: "adds min(0.2*s*frecency/10,
// 0.5*s)").
func BoostWithFrecency(s float64, frecency float64) float64 {
	boost := 0.2 * s * frecency / 10
	cap := 0.5 * s
	if boost > cap {
		boost = cap
	}
	return s + boost
}
