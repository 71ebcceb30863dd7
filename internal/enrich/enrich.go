// Package enrich implements the enrichment pipeline spec.md §4.11
// describes: walk a card's identifiers, query external sources in a fixed
// priority order, and merge each hit's PartialMetadata into the card field
// by field.
//
// The per-field merge strategies (PreferExisting/PreferSource) and the
// "sequences never shrink" list-union rule are grounded on
// petar-djukic-research-engine's internal/acquire merge step, generalized
// from that repo's single-source overwrite to spec.md's two-strategy,
// multi-source reconciliation with a per-field EnrichmentReport.
package enrich

import (
	"context"

	"github.com/omniscope/omniscope/internal/model"
	"github.com/omniscope/omniscope/internal/sources"
)

// Strategy selects how a field already present on the card is handled when
// a source also supplies a value for it (spec.md §4.11).
type Strategy string

const (
	// PreferExisting keeps the card's current value, filling only absent fields.
	PreferExisting Strategy = "prefer_existing"
	// PreferSource overwrites with the source's value and records provenance.
	PreferSource Strategy = "prefer_source"
)

// FieldDecision records what happened to one field during one source's merge.
type FieldDecision struct {
	Field   string
	Source  string
	Applied bool // true iff the card's value changed
}

// Report lists every per-field decision made during one Enrich call.
type Report struct {
	Decisions []FieldDecision
}

func (r *Report) record(field, source string, applied bool) {
	r.Decisions = append(r.Decisions, FieldDecision{Field: field, Source: source, Applied: applied})
}

// binding pairs a named source with the function that derives the lookup
// id for FetchMetadata from a card's identifiers, per spec.md §4.10's
// per-source identifier expectations.
type binding struct {
	source sources.Source
	idFor  func(*model.BookCard) (string, bool)
}

// Pipeline queries a fixed, ordered set of sources and merges their results
// into a card.
type Pipeline struct {
	bindings []binding
}

// New returns a Pipeline over the given sources in priority order (first =
// highest priority). Unrecognized source names are queried using DOI if
// present, so a caller-supplied custom Source still participates.
func New(srcs ...sources.Source) *Pipeline {
	p := &Pipeline{}
	for _, s := range srcs {
		p.bindings = append(p.bindings, binding{source: s, idFor: idForSource(s.Name())})
	}
	return p
}

func idForSource(name string) func(*model.BookCard) (string, bool) {
	switch name {
	case "crossref", "openalex", "unpaywall":
		return func(c *model.BookCard) (string, bool) {
			if c.Identifiers == nil || c.Identifiers.DOI == "" {
				return "", false
			}
			return c.Identifiers.DOI, true
		}
	case "semantic_scholar":
		return func(c *model.BookCard) (string, bool) {
			if c.Identifiers == nil {
				return "", false
			}
			switch {
			case c.Identifiers.DOI != "":
				return "DOI:" + c.Identifiers.DOI, true
			case c.Identifiers.ArxivID != "":
				return "arXiv:" + c.Identifiers.ArxivID, true
			case c.Identifiers.SemanticScholar != "":
				return c.Identifiers.SemanticScholar, true
			}
			return "", false
		}
	case "openlibrary":
		return func(c *model.BookCard) (string, bool) {
			if c.Identifiers == nil {
				return "", false
			}
			if c.Identifiers.ISBN13 != "" {
				return c.Identifiers.ISBN13, true
			}
			if c.Identifiers.ISBN10 != "" {
				return c.Identifiers.ISBN10, true
			}
			return "", false
		}
	case "arxiv":
		return func(c *model.BookCard) (string, bool) {
			if c.Identifiers == nil || c.Identifiers.ArxivID == "" {
				return "", false
			}
			return c.Identifiers.ArxivID, true
		}
	default:
		return func(c *model.BookCard) (string, bool) {
			if c.Identifiers == nil || c.Identifiers.DOI == "" {
				return "", false
			}
			return c.Identifiers.DOI, true
		}
	}
}

// Enrich walks card's identifiers across the pipeline's sources in priority
// order, merging each hit into card under strategy, and returns the
// per-field decision report. card is mutated in place and Touch()ed if any
// field changed.
func (p *Pipeline) Enrich(ctx context.Context, card *model.BookCard, strategy Strategy) (*Report, error) {
	report := &Report{}
	changed := false

	for _, b := range p.bindings {
		id, ok := b.idFor(card)
		if !ok {
			continue
		}
		pm, err := b.source.FetchMetadata(ctx, id)
		if err != nil {
			continue // source errors are recovered at the adapter boundary per spec.md §7
		}
		if pm == nil {
			continue
		}
		if mergeOne(card, *pm, b.source.Name(), strategy, report) {
			changed = true
		}
	}

	if changed {
		card.Touch()
	}
	return report, nil
}

func mergeOne(card *model.BookCard, pm sources.PartialMetadata, source string, strategy Strategy, report *Report) bool {
	changed := false

	changed = mergeString(&card.Metadata.Title, pm.Title, "metadata.title", source, strategy, card, report) || changed
	changed = mergeString(&card.Metadata.Subtitle, pm.Subtitle, "metadata.subtitle", source, strategy, card, report) || changed
	changed = mergeString(&card.Metadata.Publisher, pm.Publisher, "metadata.publisher", source, strategy, card, report) || changed
	changed = mergeString(&card.Metadata.Language, pm.Language, "metadata.language", source, strategy, card, report) || changed

	if pm.Year != nil && (card.Metadata.Year == nil || strategy == PreferSource) {
		applied := card.Metadata.Year == nil || *card.Metadata.Year != *pm.Year
		card.Metadata.Year = pm.Year
		if applied {
			recordSource(card, "metadata.year", source)
		}
		report.record("metadata.year", source, applied)
		changed = changed || applied
	}

	if len(pm.Authors) > 0 {
		before := len(card.Metadata.Authors)
		card.Metadata.Authors = unionPreserveOrder(card.Metadata.Authors, pm.Authors)
		applied := len(card.Metadata.Authors) != before
		if applied {
			recordSource(card, "metadata.authors", source)
		}
		report.record("metadata.authors", source, applied)
		changed = changed || applied
	}

	if card.Identifiers == nil {
		card.Identifiers = &model.Identifiers{}
	}
	changed = mergeString(&card.Identifiers.DOI, pm.DOI, "identifiers.doi", source, strategy, card, report) || changed
	changed = mergeString(&card.Identifiers.ArxivID, pm.ArxivID, "identifiers.arxiv_id", source, strategy, card, report) || changed
	changed = mergeString(&card.Identifiers.ISBN13, pm.ISBN13, "identifiers.isbn13", source, strategy, card, report) || changed
	changed = mergeString(&card.Identifiers.ISBN10, pm.ISBN10, "identifiers.isbn10", source, strategy, card, report) || changed
	changed = mergeString(&card.Identifiers.OpenAlexID, pm.OpenAlexID, "identifiers.openalex_id", source, strategy, card, report) || changed
	changed = mergeString(&card.Identifiers.SemanticScholar, pm.S2ID, "identifiers.semantic_scholar_id", source, strategy, card, report) || changed

	if pm.Abstract != "" {
		changed = mergeString(&card.AI.Summary, pm.Abstract, "ai.summary", source, strategy, card, report) || changed
	}

	if pm.IsOpenAccess || len(pm.OAURLs) > 0 {
		if card.OpenAccess == nil {
			card.OpenAccess = &model.OpenAccess{}
		}
		applied := false
		if pm.IsOpenAccess && !card.OpenAccess.IsOpen {
			card.OpenAccess.IsOpen = true
			applied = true
		}
		before := len(card.OpenAccess.PDFURLs)
		card.OpenAccess.PDFURLs = unionPreserveOrder(card.OpenAccess.PDFURLs, pm.OAURLs)
		if len(card.OpenAccess.PDFURLs) != before {
			applied = true
		}
		if applied {
			recordSource(card, "open_access", source)
		}
		report.record("open_access", source, applied)
		changed = changed || applied
	}

	if pm.CitationCount > card.CitationGraph.Count {
		card.CitationGraph.Count = pm.CitationCount
		recordSource(card, "citation_graph.count", source)
		report.record("citation_graph.count", source, true)
		changed = true
	}

	return changed
}

// mergeString applies strategy to one scalar field, recording provenance
// on card.MetadataSources when the value changes.
func mergeString(field *string, incoming, fieldName, source string, strategy Strategy, card *model.BookCard, report *Report) bool {
	if incoming == "" {
		return false
	}
	var applied bool
	switch strategy {
	case PreferSource:
		applied = *field != incoming
		*field = incoming
	default: // PreferExisting
		if *field == "" {
			*field = incoming
			applied = true
		}
	}
	if applied {
		recordSource(card, fieldName, source)
	}
	report.record(fieldName, source, applied)
	return applied
}

func recordSource(card *model.BookCard, field, source string) {
	if card.MetadataSources == nil {
		card.MetadataSources = make(map[string]string)
	}
	card.MetadataSources[field] = source
}

// unionPreserveOrder appends values from incoming not already present in
// existing, preserving existing's order and never shrinking it (spec.md
// §4.11: "sequences never shrink during enrichment").
func unionPreserveOrder(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	out := existing
	for _, v := range incoming {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
