package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// Arxiv wraps arXiv's Atom-feed export API.
//
// The feed element shapes are grounded on other_examples' SciFind
// arxiv-provider.go (ArxivFeed/ArxivEntry), adapted to this package's
// PartialMetadata/SearchResult shapes instead of that repo's Paper model.
type Arxiv struct {
	client *httpclient.Client
	cache  *diskcache.Cache
}

// NewArxiv returns an Arxiv adapter backed by client and cache (namespace "arxiv").
func NewArxiv(client *httpclient.Client, cache *diskcache.Cache) *Arxiv {
	return &Arxiv{client: client, cache: cache}
}

func (a *Arxiv) Name() string             { return "arxiv" }
func (a *Arxiv) SourceType() SourceType   { return TypeMetadata }
func (a *Arxiv) RequiresAuth() bool       { return false }
func (a *Arxiv) RateLimit() time.Duration { return 3 * time.Second }

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

func (a *Arxiv) query(ctx context.Context, params url.Values) (*arxivFeed, error) {
	reqURL := "https://export.arxiv.org/api/query?" + params.Encode()
	body, err := a.client.Get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}
	return &feed, nil
}

func extractArxivID(entryID string) string {
	parts := strings.Split(entryID, "/")
	id := parts[len(parts)-1]
	if idx := strings.LastIndex(id, "v"); idx > 0 {
		id = id[:idx]
	}
	return id
}

func entryToPartial(e arxivEntry) *PartialMetadata {
	authors := make([]string, 0, len(e.Authors))
	for _, au := range e.Authors {
		authors = append(authors, au.Name)
	}
	var year *int
	if len(e.Published) >= 4 {
		var y int
		if _, err := fmt.Sscanf(e.Published[:4], "%d", &y); err == nil {
			year = &y
		}
	}
	return &PartialMetadata{
		Title:    strings.TrimSpace(e.Title),
		Authors:  authors,
		Abstract: strings.TrimSpace(e.Summary),
		Year:     year,
		ArxivID:  extractArxivID(e.ID),
	}
}

// FetchMetadata looks up a single paper by its arXiv ID (without version suffix).
func (a *Arxiv) FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error) {
	cacheKey := "meta:" + id
	var cached PartialMetadata
	if ok, err := a.cache.Get(cacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	feed, err := a.query(ctx, url.Values{"id_list": {id}, "max_results": {"1"}})
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}
	pm := entryToPartial(feed.Entries[0])
	_ = a.cache.Set(cacheKey, pm)
	return pm, nil
}

// Search runs a title/abstract search.
func (a *Arxiv) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := fmt.Sprintf("ti:%q OR abs:%q", query, query)
	feed, err := a.query(ctx, url.Values{"search_query": {q}, "max_results": {"20"}})
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		pm := entryToPartial(e)
		out = append(out, SearchResult{ID: pm.ArxivID, Title: pm.Title, Authors: pm.Authors, Year: pm.Year, URL: e.ID})
	}
	return out, nil
}

// FindDownloadURL returns the canonical arXiv PDF URL for id.
func (a *Arxiv) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	return &DownloadURL{URL: "https://arxiv.org/pdf/" + id + ".pdf", MimeType: "application/pdf"}, nil
}

// HealthCheck probes the arXiv query API with a minimal request.
func (a *Arxiv) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := a.query(ctx, url.Values{"search_query": {"cat:cs.AI"}, "max_results": {"0"}})
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
