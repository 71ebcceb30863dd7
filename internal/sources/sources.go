// Package sources implements the external bibliographic/full-text source
// adapters spec.md §4.10 describes: CrossRef, arXiv, OpenAlex, Unpaywall,
// OpenLibrary, CORE, Semantic Scholar, and the mirror-rotating download
// sources Sci-Hub and Anna's Archive.
//
// Every adapter wraps one internal/httpclient.Client (rate-limited) and one
// internal/diskcache.Cache (namespace = source name, TTL per source), the
// pairing spec.md §4.10 requires. The adapter shape is a struct wrapping
// an HTTP client plus a small set of named operations, logged with plain
// log.Printf rather than a structured logger.
package sources

import (
	"context"
	"time"
)

// SourceType classifies what kind of thing a source provides.
type SourceType string

const (
	TypeMetadata    SourceType = "metadata"
	TypeFullText    SourceType = "full_text"
	TypeCitationGraph SourceType = "citation_graph"
)

// SearchResult is one hit from Source.Search.
type SearchResult struct {
	ID      string // the source's native identifier for this result
	Title   string
	Authors []string
	Year    *int
	DOI     string
	URL     string
}

// DownloadURL is a candidate file location found by FindDownloadURL.
type DownloadURL struct {
	URL      string
	MimeType string
	Mirror   string // which mirror served this, for mirror-rotating sources
}

// PartialMetadata is what FetchMetadata returns: a sparse subset of
// internal/model.Metadata/Identifiers/OpenAccess, with the contributing
// source name attached per field by internal/enrich.
type PartialMetadata struct {
	Title       string
	Subtitle    string
	Authors     []string
	Year        *int
	Publisher   string
	Language    string
	DOI         string
	ArxivID     string
	ISBN13      string
	ISBN10      string
	OpenAlexID  string
	S2ID        string
	Abstract    string
	IsOpenAccess bool
	OAURLs      []string
	ReferenceDOIs []string
	CitationCount int
}

// SourceStatus is the result of a HealthCheck.
type SourceStatus struct {
	Available   bool
	LastChecked time.Time
	LatencyMS   *int64
	ActiveMirror string
}

// Source is the uniform capability set every external adapter exposes
// (spec.md §4.10).
type Source interface {
	Name() string
	SourceType() SourceType
	RequiresAuth() bool
	RateLimit() time.Duration

	Search(ctx context.Context, query string) ([]SearchResult, error)
	FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error)
	FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error)
	HealthCheck(ctx context.Context) (SourceStatus, error)
}

func intPtr(v int) *int { return &v }
