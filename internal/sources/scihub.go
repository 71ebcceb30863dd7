package sources

import (
	"context"
	"regexp"
	"time"

	"github.com/omniscope/omniscope/internal/diskcache"
	"github.com/omniscope/omniscope/internal/httpclient"
)

// SciHub is a mirror-rotating full-text download source resolved by DOI
// (spec.md §4.9/§4.10). It has no structured metadata API of its own;
// FetchMetadata and Search are unsupported.
type SciHub struct {
	client *httpclient.Client
	cache  *diskcache.Cache
	mirror *mirrorSet
}

var defaultSciHubMirrors = []string{
	"https://sci-hub.se",
	"https://sci-hub.st",
	"https://sci-hub.ru",
}

// NewSciHub returns a SciHub adapter rotating across mirrors (or
// defaultSciHubMirrors if mirrors is empty).
func NewSciHub(client *httpclient.Client, cache *diskcache.Cache, mirrors []string) *SciHub {
	if len(mirrors) == 0 {
		mirrors = defaultSciHubMirrors
	}
	return &SciHub{client: client, cache: cache, mirror: newMirrorSet(mirrors)}
}

func (s *SciHub) Name() string             { return "sci_hub" }
func (s *SciHub) SourceType() SourceType   { return TypeFullText }
func (s *SciHub) RequiresAuth() bool       { return false }
func (s *SciHub) RateLimit() time.Duration { return 2 * time.Second }

// FetchMetadata is unsupported: Sci-Hub serves files, not structured metadata.
func (s *SciHub) FetchMetadata(ctx context.Context, id string) (*PartialMetadata, error) {
	return nil, nil
}

// Search is unsupported.
func (s *SciHub) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return nil, nil
}

var sciHubPDFLinkRe = regexp.MustCompile(`(?i)location\.href\s*=\s*'([^']+\.pdf[^']*)'|<embed[^>]+src=["']([^"']+)["']`)

// FindDownloadURL resolves doi's PDF location by fetching the mirror's
// landing page and scraping its embed/redirect link, rotating mirrors on
// failure (spec.md §4.9).
func (s *SciHub) FindDownloadURL(ctx context.Context, doi string) (*DownloadURL, error) {
	cacheKey := "doi:" + doi
	var cachedURL string
	if ok, err := s.cache.Get(cacheKey, &cachedURL); err == nil && ok {
		return &DownloadURL{URL: cachedURL, MimeType: "application/pdf"}, nil
	}

	result, err := tryEachMirror(s.mirror, func(ctx context.Context, base string) (DownloadURL, error) {
		body, err := s.client.Get(ctx, base+"/"+doi)
		if err != nil {
			return DownloadURL{}, err
		}
		m := sciHubPDFLinkRe.FindStringSubmatch(string(body))
		if m == nil {
			return DownloadURL{}, &notFoundErr{}
		}
		link := m[1]
		if link == "" {
			link = m[2]
		}
		link = resolveRelative(base, link)
		return DownloadURL{URL: link, MimeType: "application/pdf", Mirror: base}, nil
	})(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(cacheKey, result.URL)
	return &result, nil
}

// HealthCheck probes the currently active mirror's root page.
func (s *SciHub) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := s.client.Get(ctx, s.mirror.current())
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}

type notFoundErr struct{}

func (e *notFoundErr) Error() string { return "no download link found on mirror" }

func resolveRelative(base, link string) string {
	if len(link) >= 2 && link[:2] == "//" {
		return "https:" + link
	}
	if len(link) > 0 && link[0] == '/' {
		return base + link
	}
	return link
}
