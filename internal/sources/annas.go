package sources

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// AnnasArchive is a mirror-rotating full-text search/download source
// (spec.md §4.9/§4.10). Unlike SciHub it exposes a search endpoint, so
// Search and FetchMetadata both work, keyed by the md5 hash it assigns
// each file.
type AnnasArchive struct {
	client *httpclient.Client
	cache  *diskcache.Cache
	mirror *mirrorSet
}

var defaultAnnasMirrors = []string{
	"https://annas-archive.org",
	"https://annas-archive.se",
}

func NewAnnasArchive(client *httpclient.Client, cache *diskcache.Cache, mirrors []string) *AnnasArchive {
	if len(mirrors) == 0 {
		mirrors = defaultAnnasMirrors
	}
	return &AnnasArchive{client: client, cache: cache, mirror: newMirrorSet(mirrors)}
}

func (a *AnnasArchive) Name() string             { return "annas_archive" }
func (a *AnnasArchive) SourceType() SourceType   { return TypeFullText }
func (a *AnnasArchive) RequiresAuth() bool       { return false }
func (a *AnnasArchive) RateLimit() time.Duration { return 3 * time.Second }

var annasResultRe = regexp.MustCompile(`(?i)<a[^>]+href="(/md5/[a-f0-9]+)"[^>]*>\s*(?:<[^>]+>\s*)*([^<]{3,200})`)

// Search runs a free-text search across Anna's Archive's catalog.
func (a *AnnasArchive) Search(ctx context.Context, query string) ([]SearchResult, error) {
	results, err := tryEachMirror(a.mirror, func(ctx context.Context, base string) ([]SearchResult, error) {
		u := base + "/search?" + url.Values{"q": {query}}.Encode()
		body, err := a.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}
		matches := annasResultRe.FindAllStringSubmatch(string(body), 20)
		out := make([]SearchResult, 0, len(matches))
		for _, m := range matches {
			out = append(out, SearchResult{ID: md5FromPath(m[1]), Title: m[2], URL: base + m[1]})
		}
		return out, nil
	})(ctx)
	return results, err
}

// FetchMetadata is unsupported: Anna's Archive's entry pages aren't a
// structured metadata API; title/author data comes from the Search results
// themselves.
func (a *AnnasArchive) FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error) {
	return nil, nil
}

var annasDownloadLinkRe = regexp.MustCompile(`(?i)<a[^>]+href="([^"]+\.(?:pdf|epub)[^"]*)"[^>]*>[^<]*(?:fast|slow)[^<]*(?:partner|download)`)

// FindDownloadURL resolves id's (an md5 hash) slow-or-fast partner download
// link, rotating mirrors on failure.
func (a *AnnasArchive) FindDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	cacheKey := "md5:" + id
	var cachedURL string
	if ok, err := a.cache.Get(cacheKey, &cachedURL); err == nil && ok {
		return &DownloadURL{URL: cachedURL}, nil
	}

	result, err := tryEachMirror(a.mirror, func(ctx context.Context, base string) (DownloadURL, error) {
		body, err := a.client.Get(ctx, base+"/md5/"+id)
		if err != nil {
			return DownloadURL{}, err
		}
		m := annasDownloadLinkRe.FindStringSubmatch(string(body))
		if m == nil {
			return DownloadURL{}, &notFoundErr{}
		}
		return DownloadURL{URL: resolveRelative(base, m[1]), Mirror: base}, nil
	})(ctx)
	if err != nil {
		return nil, err
	}
	_ = a.cache.Set(cacheKey, result.URL)
	return &result, nil
}

// HealthCheck probes the currently active mirror's root page.
func (a *AnnasArchive) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := a.client.Get(ctx, a.mirror.current())
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}

func md5FromPath(path string) string {
	const prefix = "/md5/"
	if len(path) > len(prefix) {
		return path[len(prefix):]
	}
	return path
}
