package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/errs"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// CrossRef wraps the CrossRef REST API (https://api.crossref.org).
// Metadata fetches are keyed by DOI; it also exposes the text-query
// endpoint spec.md §4.10 names, used by internal/refs to resolve loose
// reference strings to a DOI.
type CrossRef struct {
	client *httpclient.Client
	cache  *diskcache.Cache
}

// NewCrossRef returns a CrossRef adapter backed by client and cache
// (namespace "crossref").
func NewCrossRef(client *httpclient.Client, cache *diskcache.Cache) *CrossRef {
	return &CrossRef{client: client, cache: cache}
}

func (c *CrossRef) Name() string            { return "crossref" }
func (c *CrossRef) SourceType() SourceType  { return TypeMetadata }
func (c *CrossRef) RequiresAuth() bool      { return false }
func (c *CrossRef) RateLimit() time.Duration { return time.Second }

type crossrefWork struct {
	DOI       string              `json:"DOI"`
	Title     []string            `json:"title"`
	Subtitle  []string            `json:"subtitle"`
	Author    []crossrefAuthor    `json:"author"`
	Publisher string              `json:"publisher"`
	Language  string              `json:"language"`
	Issued    crossrefDateParts   `json:"issued"`
	Abstract  string              `json:"abstract"`
	ISBN      []string            `json:"ISBN"`
	Reference []crossrefReference `json:"reference"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefReference struct {
	DOI string `json:"DOI"`
}

func (a crossrefAuthor) fullName() string {
	name := strings.TrimSpace(a.Given + " " + a.Family)
	if name == "" {
		return a.Family
	}
	return name
}

func (d crossrefDateParts) year() *int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return nil
	}
	return intPtr(d.DateParts[0][0])
}

type crossrefMessageEnvelope struct {
	Message crossrefWork `json:"message"`
}

// FetchMetadata looks up a work by DOI.
func (c *CrossRef) FetchMetadata(ctx context.Context, doi string) (*PartialMetadata, error) {
	cacheKey := "work:" + doi
	var cached crossrefMessageEnvelope
	if ok, err := c.cache.Get(cacheKey, &cached); err == nil && ok {
		return toPartialMetadata(cached.Message), nil
	}

	body, err := c.client.Get(ctx, "https://api.crossref.org/works/"+url.PathEscape(doi))
	if err != nil {
		return nil, err
	}
	var env crossrefMessageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse crossref work %q: %w", doi, err)
	}
	_ = c.cache.Set(cacheKey, env)
	return toPartialMetadata(env.Message), nil
}

func toPartialMetadata(w crossrefWork) *PartialMetadata {
	authors := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		authors = append(authors, a.fullName())
	}
	var refs []string
	for _, r := range w.Reference {
		if r.DOI != "" {
			refs = append(refs, r.DOI)
		}
	}
	pm := &PartialMetadata{
		DOI:           w.DOI,
		Authors:       authors,
		Publisher:     w.Publisher,
		Language:      w.Language,
		Year:          w.Issued.year(),
		Abstract:      w.Abstract,
		ReferenceDOIs: refs,
	}
	if len(w.Title) > 0 {
		pm.Title = w.Title[0]
	}
	if len(w.Subtitle) > 0 {
		pm.Subtitle = w.Subtitle[0]
	}
	if len(w.ISBN) > 0 {
		pm.ISBN13 = w.ISBN[0]
	}
	return pm
}

type crossrefSearchEnvelope struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

// Search runs a free-text bibliographic search.
func (c *CrossRef) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := "https://api.crossref.org/works?" + url.Values{"query": {query}, "rows": {"20"}}.Encode()
	body, err := c.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var env crossrefSearchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse crossref search: %w", err)
	}
	out := make([]SearchResult, 0, len(env.Message.Items))
	for _, w := range env.Message.Items {
		authors := make([]string, 0, len(w.Author))
		for _, a := range w.Author {
			authors = append(authors, a.fullName())
		}
		title := ""
		if len(w.Title) > 0 {
			title = w.Title[0]
		}
		out = append(out, SearchResult{ID: w.DOI, Title: title, Authors: authors, Year: w.Issued.year(), DOI: w.DOI})
	}
	return out, nil
}

// TextQueryResult is one hit from TextQuery: a candidate DOI with a
// normalized-to-[0,1] relevance score.
type TextQueryResult struct {
	DOI   string
	Score float64
}

// TextQuery issues CrossRef's bibliographic text-query endpoint, used by
// internal/refs to resolve an unstructured reference string to a DOI. The
// raw relevance score is normalized to [0,1] by dividing by 100 when it
// exceeds 1 (spec.md §4.10).
func (c *CrossRef) TextQuery(ctx context.Context, text string) (*TextQueryResult, error) {
	u := "https://api.crossref.org/works?" + url.Values{
		"query.bibliographic": {text},
		"rows":                {"1"},
	}.Encode()
	body, err := c.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var env struct {
		Message struct {
			Items []struct {
				DOI   string  `json:"DOI"`
				Score float64 `json:"score"`
			} `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse crossref text query: %w", err)
	}
	if len(env.Message.Items) == 0 {
		return nil, &errs.IdentifierNotFound{Kind: "doi"}
	}

	item := env.Message.Items[0]
	score := item.Score
	if score > 1 {
		score /= 100
	}
	return &TextQueryResult{DOI: item.DOI, Score: score}, nil
}

// FindDownloadURL is unsupported: CrossRef is a metadata-only source.
func (c *CrossRef) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	return nil, nil
}

// HealthCheck probes the CrossRef API root.
func (c *CrossRef) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := c.client.Get(ctx, "https://api.crossref.org/works?rows=0")
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
