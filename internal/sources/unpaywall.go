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

// Unpaywall wraps the Unpaywall API, which resolves by DOI and a contact
// email passed as a query parameter, not a credential (spec.md §4.10).
type Unpaywall struct {
	client *httpclient.Client
	cache  *diskcache.Cache
	email  string
}

// NewUnpaywall returns an Unpaywall adapter. email is sent on every request
// per Unpaywall's usage policy.
func NewUnpaywall(client *httpclient.Client, cache *diskcache.Cache, email string) *Unpaywall {
	return &Unpaywall{client: client, cache: cache, email: email}
}

func (u *Unpaywall) Name() string             { return "unpaywall" }
func (u *Unpaywall) SourceType() SourceType   { return TypeMetadata }
func (u *Unpaywall) RequiresAuth() bool       { return false }
func (u *Unpaywall) RateLimit() time.Duration { return 100 * time.Millisecond }

type unpaywallResponse struct {
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	IsOA      bool   `json:"is_oa"`
	OAStatus  string `json:"oa_status"`
	BestOALoc *struct {
		URL           string `json:"url"`
		URLForPDF     string `json:"url_for_pdf"`
		License       string `json:"license"`
		HostType      string `json:"host_type"`
	} `json:"best_oa_location"`
}

func (u *Unpaywall) fetch(ctx context.Context, doi string) (*unpaywallResponse, error) {
	cacheKey := "doi:" + doi
	var cached unpaywallResponse
	if ok, err := u.cache.Get(cacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	reqURL := "https://api.unpaywall.org/v2/" + url.PathEscape(doi) + "?" + url.Values{"email": {u.email}}.Encode()
	body, err := u.client.Get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	var resp unpaywallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse unpaywall response %q: %w", doi, err)
	}
	_ = u.cache.Set(cacheKey, resp)
	return &resp, nil
}

// FetchMetadata resolves open-access status and location for a DOI.
func (u *Unpaywall) FetchMetadata(ctx context.Context, doi string) (*PartialMetadata, error) {
	resp, err := u.fetch(ctx, doi)
	if err != nil {
		return nil, err
	}
	pm := &PartialMetadata{DOI: resp.DOI, Title: resp.Title, IsOpenAccess: resp.IsOA}
	if resp.BestOALoc != nil {
		url := resp.BestOALoc.URLForPDF
		if url == "" {
			url = resp.BestOALoc.URL
		}
		if url != "" {
			pm.OAURLs = []string{url}
		}
	}
	return pm, nil
}

// Search is unsupported: Unpaywall only resolves by DOI.
func (u *Unpaywall) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return nil, nil
}

// FindDownloadURL returns the best open-access location for a DOI.
func (u *Unpaywall) FindDownloadURL(ctx context.Context, doi string) (*DownloadURL, error) {
	resp, err := u.fetch(ctx, doi)
	if err != nil || resp.BestOALoc == nil {
		return nil, err
	}
	url := resp.BestOALoc.URLForPDF
	if url == "" {
		url = resp.BestOALoc.URL
	}
	if url == "" {
		return nil, nil
	}
	return &DownloadURL{URL: url, MimeType: "application/pdf"}, nil
}

// HealthCheck probes Unpaywall with a well-known DOI.
func (u *Unpaywall) HealthCheck(ctx context.Context) (SourceStatus, error) {
	start := time.Now()
	_, err := u.fetch(ctx, "10.1038/nphys1170")
	if err != nil {
		return SourceStatus{Available: false, LastChecked: time.Now()}, err
	}
	latency := time.Since(start).Milliseconds()
	return SourceStatus{Available: true, LastChecked: time.Now(), LatencyMS: &latency}, nil
}
