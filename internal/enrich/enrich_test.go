package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscope/omniscope/internal/model"
	"github.com/omniscope/omniscope/internal/sources"
)

// fakeSource is a minimal sources.Source stand-in for pipeline tests.
type fakeSource struct {
	name string
	meta map[string]*sources.PartialMetadata
}

func (f *fakeSource) Name() string                 { return f.name }
func (f *fakeSource) SourceType() sources.SourceType { return sources.TypeMetadata }
func (f *fakeSource) RequiresAuth() bool            { return false }
func (f *fakeSource) RateLimit() time.Duration      { return 0 }
func (f *fakeSource) Search(ctx context.Context, q string) ([]sources.SearchResult, error) {
	return nil, nil
}
func (f *fakeSource) FetchMetadata(ctx context.Context, id string) (*sources.PartialMetadata, error) {
	return f.meta[id], nil
}
func (f *fakeSource) FindDownloadURL(ctx context.Context, id string) (*sources.DownloadURL, error) {
	return nil, nil
}
func (f *fakeSource) HealthCheck(ctx context.Context) (sources.SourceStatus, error) {
	return sources.SourceStatus{Available: true}, nil
}

func TestEnrichPreferExistingFillsOnlyAbsentFields(t *testing.T) {
	year := 2017
	crossref := &fakeSource{name: "crossref", meta: map[string]*sources.PartialMetadata{
		"10.48550/arxiv.1706.03762": {
			Title:   "Attention Is All You Need",
			Authors: []string{"Ashish Vaswani"},
			Year:    &year,
			DOI:     "10.48550/arxiv.1706.03762",
		},
	}}
	card := model.NewCard(model.Metadata{Title: "existing title"})
	card.Identifiers = &model.Identifiers{DOI: "10.48550/arxiv.1706.03762"}

	p := New(crossref)
	report, err := p.Enrich(context.Background(), card, PreferExisting)
	require.NoError(t, err)

	assert.Equal(t, "existing title", card.Metadata.Title, "PreferExisting must not overwrite an existing value")
	assert.Contains(t, card.Metadata.Authors, "Ashish Vaswani")
	require.NotNil(t, card.Metadata.Year)
	assert.Equal(t, 2017, *card.Metadata.Year)
	assert.NotEmpty(t, report.Decisions)
}

func TestEnrichPreferSourceOverwritesAndRecordsProvenance(t *testing.T) {
	crossref := &fakeSource{name: "crossref", meta: map[string]*sources.PartialMetadata{
		"10.1234/x": {Title: "Correct Title"},
	}}
	card := model.NewCard(model.Metadata{Title: "wrong title"})
	card.Identifiers = &model.Identifiers{DOI: "10.1234/x"}

	p := New(crossref)
	_, err := p.Enrich(context.Background(), card, PreferSource)
	require.NoError(t, err)

	assert.Equal(t, "Correct Title", card.Metadata.Title)
	assert.Equal(t, "crossref", card.MetadataSources["metadata.title"])
}

func TestEnrichAuthorsUnionNeverShrinks(t *testing.T) {
	crossref := &fakeSource{name: "crossref", meta: map[string]*sources.PartialMetadata{
		"10.1234/x": {Authors: []string{"Second Author"}},
	}}
	card := model.NewCard(model.Metadata{Authors: []string{"First Author"}})
	card.Identifiers = &model.Identifiers{DOI: "10.1234/x"}

	p := New(crossref)
	_, err := p.Enrich(context.Background(), card, PreferSource)
	require.NoError(t, err)

	assert.Equal(t, []string{"First Author", "Second Author"}, card.Metadata.Authors)
}

func TestEnrichSkipsSourceWithoutMatchingIdentifier(t *testing.T) {
	openlibrary := &fakeSource{name: "openlibrary", meta: map[string]*sources.PartialMetadata{}}
	card := model.NewCard(model.Metadata{Title: "no identifiers"})

	p := New(openlibrary)
	report, err := p.Enrich(context.Background(), card, PreferSource)
	require.NoError(t, err)
	assert.Empty(t, report.Decisions)
}
