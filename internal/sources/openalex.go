package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// OpenAlex wraps the OpenAlex works API.
type OpenAlex struct {
	client *httpclient.Client
	cache  *diskcache.Cache
}

// NewOpenAlex returns an OpenAlex adapter backed by client and cache
// (namespace "openalex").
func NewOpenAlex(client *httpclient.Client, cache *diskcache.Cache) *OpenAlex {
	return &OpenAlex{client: client, cache: cache}
}

func (o *OpenAlex) Name() string             { return "openalex" }
func (o *OpenAlex) SourceType() SourceType   { return TypeMetadata }
func (o *OpenAlex) RequiresAuth() bool       { return false }
func (o *OpenAlex) RateLimit() time.Duration { return 100 * time.Millisecond }

type openAlexWork struct {
	ID                     string              `json:"id"`
	DOI                    string              `json:"doi"`
	Title                  string              `json:"title"`
	PublicationYear        int                 `json:"publication_year"`
	Authorships            []openAlexAuthor    `json:"authorships"`
	AbstractInvertedIndex  map[string][]int    `json:"abstract_inverted_index"`
	OpenAccess             openAlexOpenAccess  `json:"open_access"`
	Language               string              `json:"language"`
}

type openAlexAuthor struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

// reconstructAbstract rebuilds OpenAlex's inverted-index abstract encoding
// by sorting (position, word) pairs and rejoining with single spaces
// (spec.md §4.10).
func reconstructAbstract(inverted map[string][]int) string {
	if len(inverted) == 0 {
		return ""
	}
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range inverted {
		for _, p := range positions {
			pairs = append(pairs, posWord{pos: p, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })
	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

func openAlexToPartial(w openAlexWork) *PartialMetadata {
	authors := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		authors = append(authors, a.Author.DisplayName)
	}
	pm := &PartialMetadata{
		Title:        w.Title,
		Authors:      authors,
		Language:     w.Language,
		DOI:          strings.TrimPrefix(w.DOI, "https://doi.org/"),
		OpenAlexID:   strings.TrimPrefix(w.ID, "https://openalex.org/"),
		Abstract:     reconstructAbstract(w.AbstractInvertedIndex),
		IsOpenAccess: w.OpenAccess.IsOA,
	}
	if w.PublicationYear != 0 {
		pm.Year = intPtr(w.PublicationYear)
	}
	if w.OpenAccess.OAURL != "" {
		pm.OAURLs = []string{w.OpenAccess.OAURL}
	}
	return pm
}

// FetchMetadata looks up a work by DOI.
func (o *OpenAlex) FetchMetadata(ctx context.Context, doi string) (*PartialMetadata, error) {
	cacheKey := "work:" + doi
	var cached openAlexWork
	if ok, err := o.cache.Get(cacheKey, &cached); err == nil && ok {
		return openAlexToPartial(cached), nil
	}

	body, err := o.client.Get(ctx, "https://api.openalex.org/works/https://doi.org/"+url.PathEscape(doi))
	if err != nil {
		return nil, err
	}
	var w openAlexWork
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("parse openalex work %q: %w", doi, err)
	}
	_ = o.cache.Set(cacheKey, w)
	return openAlexToPartial(w), nil
}

// Search runs a free-text work search.
func (o *OpenAlex) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := "https://api.openalex.org/works?" + url.Values{"search": {query}, "per_page": {"20"}}.Encode()
	body, err := o.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var env struct {
		Results []openAlexWork `json:"results"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse openalex search: %w", err)
	}
	out := make([]SearchResult, 0, len(env.Results))
	for _, w := range env.Results {
		pm := openAlexToPartial(w)
		out = append(out, SearchResult{ID: pm.OpenAlexID, Title: pm.Title, Authors: pm.Authors, Year: pm.Year, DOI: pm.DOI})
	}
	return out, nil
}

// FindDownloadURL returns the best open-access URL, if any.
func (o *OpenAlex) FindDownloadURL(ctx context.Context, doi string) (*DownloadURL, error) {
	pm, err := o.FetchMetadata(ctx, doi)
	if err != nil || pm == nil || len(pm.OAURLs) == 0 {
		return nil, err
	}
	return &DownloadURL{URL: pm.OAURLs[0]}, nil
}

// HealthCheck probes the OpenAlex works endpoint.
func (o *OpenAlex) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := o.client.Get(ctx, "https://api.openalex.org/works?per_page=1")
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
