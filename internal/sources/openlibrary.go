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

// OpenLibrary wraps the Open Library Books API, keyed by ISBN.
type OpenLibrary struct {
	client *httpclient.Client
	cache  *diskcache.Cache
}

// NewOpenLibrary returns an OpenLibrary adapter backed by client and cache
// (namespace "openlibrary").
func NewOpenLibrary(client *httpclient.Client, cache *diskcache.Cache) *OpenLibrary {
	return &OpenLibrary{client: client, cache: cache}
}

func (l *OpenLibrary) Name() string             { return "openlibrary" }
func (l *OpenLibrary) SourceType() SourceType   { return TypeMetadata }
func (l *OpenLibrary) RequiresAuth() bool       { return false }
func (l *OpenLibrary) RateLimit() time.Duration { return 200 * time.Millisecond }

type openLibraryBook struct {
	Title      string                 `json:"title"`
	Subtitle   string                 `json:"subtitle"`
	Authors    []openLibraryAuthorRef `json:"authors"`
	Publishers []openLibraryNamed     `json:"publishers"`
	PublishDate string                `json:"publish_date"`
	Identifiers struct {
		OpenLibrary []string `json:"openlibrary"`
	} `json:"identifiers"`
}

type openLibraryAuthorRef struct {
	Name string `json:"name"`
}

type openLibraryNamed struct {
	Name string `json:"name"`
}

// FetchMetadata looks up a book by ISBN (10 or 13).
func (l *OpenLibrary) FetchMetadata(ctx context.Context, isbn string) (*PartialMetadata, error) {
	cacheKey := "isbn:" + isbn
	var cached map[string]openLibraryBook
	if ok, err := l.cache.Get(cacheKey, &cached); err == nil && ok {
		return openLibraryToPartial(cached, isbn), nil
	}

	bibkey := "ISBN:" + isbn
	u := "https://openlibrary.org/api/books?" + url.Values{"bibkeys": {bibkey}, "format": {"json"}, "jscmd": {"data"}}.Encode()
	body, err := l.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var result map[string]openLibraryBook
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse openlibrary response %q: %w", isbn, err)
	}
	_ = l.cache.Set(cacheKey, result)
	return openLibraryToPartial(result, isbn), nil
}

func openLibraryToPartial(result map[string]openLibraryBook, isbn string) *PartialMetadata {
	book, ok := result["ISBN:"+isbn]
	if !ok {
		return nil
	}
	authors := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		authors = append(authors, a.Name)
	}
	pm := &PartialMetadata{
		Title:    book.Title,
		Subtitle: book.Subtitle,
		Authors:  authors,
	}
	if len(book.Publishers) > 0 {
		pm.Publisher = book.Publishers[0].Name
	}
	if len(isbn) == 13 {
		pm.ISBN13 = isbn
	} else {
		pm.ISBN10 = isbn
	}
	return pm
}

// Search is unsupported: Open Library's data API only resolves by ISBN here.
func (l *OpenLibrary) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return nil, nil
}

// FindDownloadURL is unsupported: Open Library is metadata-only for this integration.
func (l *OpenLibrary) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	return nil, nil
}

// HealthCheck probes the books API with a well-known ISBN.
func (l *OpenLibrary) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := l.FetchMetadata(ctx, "0306406152")
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
