package model

// Metadata carries the descriptive bibliographic fields of a BookCard.
type Metadata struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Year        *int     `json:"year,omitempty"` // signed; negative = BCE
	ISBNs       []string `json:"isbns,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Language    string   `json:"language,omitempty"`
	Pages       int      `json:"pages,omitempty"`
	Edition     string   `json:"edition,omitempty"`
	Series      string   `json:"series,omitempty"`
	SeriesIndex string   `json:"series_index,omitempty"`
}

// Identifiers carries the external identifier surface for a BookCard.
// All fields are already normalized (see internal/identifier).
type Identifiers struct {
	DOI             string `json:"doi,omitempty"`
	ArxivID         string `json:"arxiv_id,omitempty"`
	ArxivVersion    int    `json:"arxiv_version,omitempty"`
	ISBN13          string `json:"isbn13,omitempty"`
	ISBN10          string `json:"isbn10,omitempty"`
	PMID            string `json:"pmid,omitempty"`
	PMCID           string `json:"pmcid,omitempty"`
	OpenAlexID      string `json:"openalex_id,omitempty"`
	SemanticScholar string `json:"semantic_scholar_id,omitempty"`
	MAG             string `json:"mag,omitempty"`
	DBLPKey         string `json:"dblp_key,omitempty"`
}

// IsEmpty reports whether no identifier is set.
func (i *Identifiers) IsEmpty() bool {
	if i == nil {
		return true
	}
	return *i == Identifiers{}
}

// DocumentType enumerates the publication.document_type values from spec.md §3.
type DocumentType string

const (
	DocBook       DocumentType = "book"
	DocArticle    DocumentType = "article"
	DocConference DocumentType = "conference"
	DocPreprint   DocumentType = "preprint"
	DocThesis     DocumentType = "thesis"
	DocReport     DocumentType = "report"
	DocDataset    DocumentType = "dataset"
	DocSoftware   DocumentType = "software"
	DocPatent     DocumentType = "patent"
	DocStandard   DocumentType = "standard"
	DocChapter    DocumentType = "chapter"
	DocWebpage    DocumentType = "webpage"
	DocOther      DocumentType = "other"
)

// Publication carries venue information for non-book documents.
type Publication struct {
	DocumentType DocumentType `json:"document_type,omitempty"`
	Journal      string       `json:"journal,omitempty"`
	Conference   string       `json:"conference,omitempty"`
	Venue        string       `json:"venue,omitempty"`
	Volume       string       `json:"volume,omitempty"`
	Issue        string       `json:"issue,omitempty"`
	PageRange    string       `json:"page_range,omitempty"`
}

// CitationGraph encodes citation edges by card ID, not by pointer; cycles
// are permitted and benign (see spec.md §9).
type CitationGraph struct {
	Count          int      `json:"count,omitempty"`
	ReferencesIDs  []string `json:"references_ids,omitempty"`
	CitedByIDs     []string `json:"cited_by_ids,omitempty"`
}

// OpenAccessStatus enumerates known open-access status labels (e.g. Unpaywall's).
type OpenAccessStatus string

const (
	OAGold     OpenAccessStatus = "gold"
	OAGreen    OpenAccessStatus = "green"
	OAHybrid   OpenAccessStatus = "hybrid"
	OABronze   OpenAccessStatus = "bronze"
	OAClosed   OpenAccessStatus = "closed"
	OAUnknown  OpenAccessStatus = "unknown"
)

// OpenAccess carries open-access availability for a card.
type OpenAccess struct {
	IsOpen   bool             `json:"is_open,omitempty"`
	Status   OpenAccessStatus `json:"status,omitempty"`
	License  string           `json:"license,omitempty"`
	URL      string           `json:"url,omitempty"`
	PDFURLs  []string         `json:"pdf_urls,omitempty"`
}

// FileFormat enumerates the supported book file formats.
type FileFormat string

const (
	FormatPDF   FileFormat = "pdf"
	FormatEPUB  FileFormat = "epub"
	FormatDJVU  FileFormat = "djvu"
	FormatMOBI  FileFormat = "mobi"
	FormatFB2   FileFormat = "fb2"
	FormatTXT   FileFormat = "txt"
	FormatHTML  FileFormat = "html"
	FormatAZW3  FileFormat = "azw3"
	FormatCBZ   FileFormat = "cbz"
	FormatCBR   FileFormat = "cbr"
	FormatOther FileFormat = "other"
)

// FormatFromExt maps a lower-cased file extension (without the dot) to a FileFormat.
func FormatFromExt(ext string) FileFormat {
	switch ext {
	case "pdf", "epub", "djvu", "mobi", "fb2", "txt", "html", "azw3", "cbz", "cbr":
		return FileFormat(ext)
	default:
		return FormatOther
	}
}

// ReadStatus enumerates a card's reading progress.
type ReadStatus string

const (
	StatusUnread  ReadStatus = "unread"
	StatusReading ReadStatus = "reading"
	StatusRead    ReadStatus = "read"
	StatusDNF     ReadStatus = "dnf"
)

// Priority enumerates a card's organizational priority.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Organization carries the user's library/folder/tag/rating state for a card.
type Organization struct {
	LibraryIDs   []string          `json:"library_ids,omitempty"`
	FolderPaths  []string          `json:"folder_paths,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Rating       int               `json:"rating,omitempty"` // 0-5
	ReadStatus   ReadStatus        `json:"read_status,omitempty"`
	Priority     Priority          `json:"priority,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// AIData carries AI-derived enrichment of a card. Out of scope for this
// module's own operations (AI-provider integration is an external
// collaborator per spec.md §1) but the shape is part of the card schema.
type AIData struct {
	Summary         string   `json:"summary,omitempty"`
	TOC             []string `json:"toc,omitempty"`
	KeyTopics       []string `json:"key_topics,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	IndexedAt       *Time    `json:"indexed_at,omitempty"`
	IndexVersion    int      `json:"index_version,omitempty"`
	EmbeddingModel  string   `json:"embedding_model,omitempty"`
	EmbeddingStored bool     `json:"embedding_stored,omitempty"`
}

// WebLinks carries external web identifiers/links for a card.
type WebLinks struct {
	OpenLibraryID string            `json:"openlibrary_id,omitempty"`
	GoodreadsID   string            `json:"goodreads_id,omitempty"`
	CoverURL      string            `json:"cover_url,omitempty"`
	Sources       map[string]string `json:"sources,omitempty"`
}

// Note is one entry in a card's note list.
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp Time   `json:"timestamp"`
	Author    string `json:"author,omitempty"`
}
