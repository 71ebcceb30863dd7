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

// CORE wraps the CORE.ac.uk aggregator API, which requires an API key
// (https://core.ac.uk/services/api) passed as a query parameter.
type CORE struct {
	client *httpclient.Client
	cache  *diskcache.Cache
	apiKey string
}

// NewCORE returns a CORE adapter. apiKey may be empty, in which case
// RequiresAuth reports true and lookups return errs.AuthRequired-shaped
// failures from the underlying API rather than being short-circuited here.
func NewCORE(client *httpclient.Client, cache *diskcache.Cache, apiKey string) *CORE {
	return &CORE{client: client, cache: cache, apiKey: apiKey}
}

func (c *CORE) Name() string             { return "core" }
func (c *CORE) SourceType() SourceType   { return TypeFullText }
func (c *CORE) RequiresAuth() bool       { return true }
func (c *CORE) RateLimit() time.Duration { return time.Second }

type coreWork struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Abstract     string         `json:"abstract"`
	YearPublished int           `json:"yearPublished"`
	Authors      []coreAuthor   `json:"authors"`
	DOI          string         `json:"doi"`
	Language     coreLanguage   `json:"language"`
	DownloadURL  string         `json:"downloadUrl"`
}

type coreAuthor struct {
	Name string `json:"name"`
}

type coreLanguage struct {
	Code string `json:"code"`
}

func coreToPartial(w coreWork) *PartialMetadata {
	authors := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		authors = append(authors, a.Name)
	}
	pm := &PartialMetadata{
		Title:    w.Title,
		Authors:  authors,
		Abstract: w.Abstract,
		DOI:      w.DOI,
		Language: w.Language.Code,
	}
	if w.YearPublished != 0 {
		pm.Year = intPtr(w.YearPublished)
	}
	if w.DownloadURL != "" {
		pm.IsOpenAccess = true
		pm.OAURLs = []string{w.DownloadURL}
	}
	return pm
}

func (c *CORE) query(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	return c.client.Get(ctx, "https://api.core.ac.uk/v3/"+path+"?"+params.Encode())
}

// FetchMetadata looks up a work by CORE's numeric work ID.
func (c *CORE) FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error) {
	cacheKey := "work:" + id
	var cached coreWork
	if ok, err := c.cache.Get(cacheKey, &cached); err == nil && ok {
		return coreToPartial(cached), nil
	}

	body, err := c.query(ctx, "works/"+url.PathEscape(id), url.Values{})
	if err != nil {
		return nil, err
	}
	var w coreWork
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("parse core work %q: %w", id, err)
	}
	_ = c.cache.Set(cacheKey, w)
	return coreToPartial(w), nil
}

// Search runs a full-text search across CORE's aggregated corpus.
func (c *CORE) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := c.query(ctx, "search/works", url.Values{"q": {query}, "limit": {"20"}})
	if err != nil {
		return nil, err
	}
	var env struct {
		Results []coreWork `json:"results"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse core search: %w", err)
	}
	out := make([]SearchResult, 0, len(env.Results))
	for _, w := range env.Results {
		pm := coreToPartial(w)
		out = append(out, SearchResult{ID: fmt.Sprintf("%d", w.ID), Title: pm.Title, Authors: pm.Authors, Year: pm.Year, DOI: pm.DOI})
	}
	return out, nil
}

// FindDownloadURL returns CORE's full-text download link, if the work has one.
func (c *CORE) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	pm, err := c.FetchMetadata(ctx, id)
	if err != nil || pm == nil || len(pm.OAURLs) == 0 {
		return nil, err
	}
	return &DownloadURL{URL: pm.OAURLs[0], MimeType: "application/pdf"}, nil
}

// HealthCheck probes the search endpoint with a minimal query.
func (c *CORE) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := c.query(ctx, "search/works", url.Values{"q": {"test"}, "limit": {"1"}})
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
