package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/omniscope/omniscope/internal/errs"
)

// FileStatus enumerates the tri-state a card's file association can be in
// (spec.md §3 invariant: Present / Missing / NeverHadFile, never a fourth).
type FileStatus string

const (
	FileStatusPresent FileStatus = "present"
	FileStatusMissing FileStatus = "missing"
)

// FileInfo describes the book file associated with a card. A nil
// *FileInfo on BookCard means NeverHadFile. When Status is
// FileStatusMissing, Path and AddedAt retain their last-known values and
// LastSeenAt records when the file was last confirmed present.
type FileInfo struct {
	Status     FileStatus `json:"status"`
	Path       string     `json:"path"`
	Format     FileFormat `json:"format,omitempty"`
	SizeBytes  int64      `json:"size_bytes,omitempty"`
	SHA256     string     `json:"sha256,omitempty"`
	AddedAt    Time       `json:"added_at,omitempty"`
	LastSeenAt Time       `json:"last_seen_at,omitempty"`
}

// NewFilePresent constructs a FileInfo in the Present state.
func NewFilePresent(path string, format FileFormat, sizeBytes int64, sha256 string, addedAt Time) *FileInfo {
	return &FileInfo{Status: FileStatusPresent, Path: path, Format: format, SizeBytes: sizeBytes, SHA256: sha256, AddedAt: addedAt}
}

// MarkMissing transitions a Present FileInfo to Missing, preserving the
// last-known path and recording lastSeen.
func (f *FileInfo) MarkMissing(lastSeen Time) *FileInfo {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Status = FileStatusMissing
	cp.LastSeenAt = lastSeen
	return &cp
}

// Validate checks the shape invariant without touching the filesystem;
// disk-presence/size checks are the caller's responsibility (internal/fssync).
func (f *FileInfo) Validate() error {
	if f == nil {
		return nil // NeverHadFile
	}
	switch f.Status {
	case FileStatusPresent:
		if f.Path == "" {
			return &errs.Validation{Msg: "file.path required when status is present"}
		}
	case FileStatusMissing:
		if f.Path == "" || f.LastSeenAt.IsZero() {
			return &errs.Validation{Msg: "file.path and file.last_seen_at required when status is missing"}
		}
	default:
		return &errs.Validation{Msg: fmt.Sprintf("unknown file status %q", f.Status)}
	}
	return nil
}

// BookCard is the canonical record of one document (spec.md §3).
type BookCard struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`

	Metadata         Metadata          `json:"metadata"`
	Identifiers      *Identifiers      `json:"identifiers,omitempty"`
	Publication      *Publication      `json:"publication,omitempty"`
	CitationGraph    CitationGraph     `json:"citation_graph"`
	OpenAccess       *OpenAccess       `json:"open_access,omitempty"`
	File             *FileInfo         `json:"file,omitempty"`
	Organization     Organization      `json:"organization"`
	AI               AIData            `json:"ai"`
	Web              WebLinks          `json:"web"`
	Notes            []Note            `json:"notes,omitempty"`
	MetadataSources  map[string]string `json:"metadata_sources,omitempty"`

	// extra preserves any unrecognized top-level fields so round-tripping a
	// card written by a newer schema version doesn't silently drop data
	// (spec.md §6: "unknown fields on read must be preserved on write").
	extra map[string]json.RawMessage `json:"-"`
}

// NewCard creates a fresh card with a new ID and created/updated timestamps
// set to now.
func NewCard(meta Metadata) *BookCard {
	now := Now()
	return &BookCard{
		ID:        NewID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  meta,
	}
}

// Touch increments Version and sets UpdatedAt to now. Every mutation of a
// card must call Touch before persisting (spec.md §3 invariant).
func (c *BookCard) Touch() {
	c.Version++
	c.UpdatedAt = Now()
}

// AddNote appends a note to the card and touches it (spec.md §3:
// "notes: ordered list of (ID, text, timestamp, author)"). Note IDs use a
// random UUID rather than a ULID: a card's note list is already ordered by
// append position, so nothing reads time-ordering out of the ID itself.
func (c *BookCard) AddNote(text, author string) *Note {
	n := Note{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: Now(),
		Author:    author,
	}
	c.Notes = append(c.Notes, n)
	c.Touch()
	return &c.Notes[len(c.Notes)-1]
}

// Validate checks the structural invariants from spec.md §3 that don't
// require filesystem access.
func (c *BookCard) Validate() error {
	if c.ID == "" {
		return &errs.Validation{Msg: "card id must not be empty"}
	}
	if c.UpdatedAt.Time.Before(c.CreatedAt.Time) {
		return &errs.Validation{Msg: "updated_at must not precede created_at"}
	}
	if c.Organization.Rating < 0 || c.Organization.Rating > 5 {
		return &errs.Validation{Msg: "rating must be between 0 and 5"}
	}
	return c.File.Validate()
}

// cardAlias avoids infinite recursion in MarshalJSON/UnmarshalJSON.
type cardAlias BookCard

// MarshalJSON combines the known fields with any preserved unknown fields.
// Known fields always win if a key collides (schema fields are authoritative).
func (c BookCard) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(cardAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes known fields into the struct and stashes any
// remaining top-level keys in extra for later round-tripping.
func (c *BookCard) UnmarshalJSON(data []byte) error {
	var alias cardAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = BookCard(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known, err := json.Marshal(cardAlias(*c))
	if err != nil {
		return err
	}
	var knownKeys map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownKeys); err != nil {
		return err
	}
	for k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}
