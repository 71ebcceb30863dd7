// Package index implements the relational query index over the card store
// (spec.md §4.3): a denormalized SQLite database supporting full-text
// search, filtering, frecency, and folder membership. The index is a pure
// projection of the card store — SyncFromCards can always rebuild it from
// scratch.
//
// The schema-migration idiom (a numbered, idempotent sequence recorded in a
// schema_migrations table) and the WAL/foreign-key pragmas generalize a
// single fixed schema into an ordered migration list per spec.md §4.3.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/omniscope/omniscope/internal/model"
)

// Index is the relational query index living at <library>/.libr/db/omniscope.db.
type Index struct {
	db *sql.DB
}

// Open opens (creating if necessary) the index database at path, configures
// WAL mode and foreign-key enforcement, and applies any outstanding schema
// migrations.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index %q: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return idx, nil
}

// Close releases the database handle.
func (idx *Index) Close() error { return idx.db.Close() }

// migration is one numbered, idempotent schema step.
type migration struct {
	version int
	apply   func(*sql.DB) error
}

var migrations = []migration{
	{version: 1, apply: migration1},
}

func migration1(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS libraries (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS folders (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    type       TEXT NOT NULL CHECK (type IN ('physical','virtual','library-root')),
    parent_id  TEXT REFERENCES folders(id) ON DELETE SET NULL,
    library_id TEXT,
    disk_path  TEXT,
    icon       TEXT NOT NULL DEFAULT '',
    color      TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);
CREATE INDEX IF NOT EXISTS idx_folders_disk_path ON folders(disk_path);

CREATE TABLE IF NOT EXISTS books (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL DEFAULT '',
    year             INTEGER,
    isbn_head        TEXT NOT NULL DEFAULT '',
    doi              TEXT NOT NULL DEFAULT '',
    arxiv_id         TEXT NOT NULL DEFAULT '',
    file_path        TEXT NOT NULL DEFAULT '',
    file_format      TEXT NOT NULL DEFAULT '',
    rating           INTEGER NOT NULL DEFAULT 0,
    read_status      TEXT NOT NULL DEFAULT 'unread',
    access_count     INTEGER NOT NULL DEFAULT 0,
    last_accessed_at INTEGER NOT NULL DEFAULT 0,
    frecency_score   REAL NOT NULL DEFAULT 0,
    file_presence    TEXT NOT NULL DEFAULT '',
    folder_id        TEXT REFERENCES folders(id) ON DELETE SET NULL,
    authors_json     TEXT NOT NULL DEFAULT '[]',
    tags_json        TEXT NOT NULL DEFAULT '[]',
    libraries_json   TEXT NOT NULL DEFAULT '[]',
    folders_json     TEXT NOT NULL DEFAULT '[]',
    key_topics_json  TEXT NOT NULL DEFAULT '[]',
    summary          TEXT NOT NULL DEFAULT '',
    created_at       INTEGER NOT NULL DEFAULT 0,
    updated_at       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_books_year ON books(year);
CREATE INDEX IF NOT EXISTS idx_books_doi ON books(doi);
CREATE INDEX IF NOT EXISTS idx_books_arxiv ON books(arxiv_id);
CREATE INDEX IF NOT EXISTS idx_books_folder ON books(folder_id);

CREATE TABLE IF NOT EXISTS book_virtual_folders (
    book_id   TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    folder_id TEXT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    PRIMARY KEY (book_id, folder_id)
);

CREATE TABLE IF NOT EXISTS action_log (
    id         TEXT PRIMARY KEY,
    action     TEXT NOT NULL,
    payload    TEXT NOT NULL,
    snapshot   TEXT NOT NULL,
    ts         INTEGER NOT NULL,
    reversed   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_action_log_ts ON action_log(ts DESC);

CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(
    book_id UNINDEXED, title, authors, tags, summary, key_topics
);
`)
	return err
}

func (idx *Index) migrate() error {
	if _, err := idx.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at INTEGER NOT NULL)`); err != nil {
		return err
	}
	applied := make(map[int]bool)
	rows, err := idx.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := m.apply(idx.db); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := idx.db.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().Unix()); err != nil {
			return err
		}
	}
	return nil
}

// --- JSON helpers ---

func jsonList(vals []string) string {
	if vals == nil {
		vals = []string{}
	}
	b, _ := json.Marshal(vals)
	return string(b)
}

func unjsonList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// Summary is the denormalized projection of one book row, the shape every
// list_* query returns.
type Summary struct {
	ID            string
	Title         string
	Authors       []string
	Year          *int
	Tags          []string
	Libraries     []string
	Folders       []string
	KeyTopics     []string
	DOI           string
	ArxivID       string
	ISBNHead      string
	FilePath      string
	FileFormat    string
	Rating        int
	ReadStatus    string
	FolderID      string
	AccessCount   int
	LastAccessed  time.Time
	FrecencyScore float64
	Summary       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func isbnHead(c *model.BookCard) string {
	if c.Identifiers == nil {
		return ""
	}
	if c.Identifiers.ISBN13 != "" {
		return c.Identifiers.ISBN13
	}
	return c.Identifiers.ISBN10
}

func filePathFormat(c *model.BookCard) (path, format string) {
	if c.File == nil {
		return "", ""
	}
	return c.File.Path, string(c.File.Format)
}

func readStatus(c *model.BookCard) string {
	if c.Organization.ReadStatus == "" {
		return string(model.StatusUnread)
	}
	return string(c.Organization.ReadStatus)
}

func filePresence(c *model.BookCard) string {
	if c.File == nil {
		return "never_had_file"
	}
	return string(c.File.Status)
}

// Upsert writes or overwrites card's row and its FTS entry.
func (idx *Index) Upsert(c *model.BookCard) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	path, format := filePathFormat(c)

	_, err = tx.Exec(`
INSERT INTO books (
    id, title, year, isbn_head, doi, arxiv_id, file_path, file_format, rating,
    read_status, file_presence, folder_id, authors_json, tags_json, libraries_json,
    folders_json, key_topics_json, summary, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
    title=excluded.title, year=excluded.year, isbn_head=excluded.isbn_head,
    doi=excluded.doi, arxiv_id=excluded.arxiv_id, file_path=excluded.file_path,
    file_format=excluded.file_format, rating=excluded.rating, read_status=excluded.read_status,
    file_presence=excluded.file_presence, folder_id=excluded.folder_id,
    authors_json=excluded.authors_json, tags_json=excluded.tags_json,
    libraries_json=excluded.libraries_json, folders_json=excluded.folders_json,
    key_topics_json=excluded.key_topics_json, summary=excluded.summary, updated_at=excluded.updated_at`,
		c.ID, c.Metadata.Title, c.Metadata.Year, isbnHead(c),
		identOrEmpty(c), arxivOrEmpty(c), path, format, c.Organization.Rating,
		readStatus(c), filePresence(c), firstOrEmpty(c.Organization.FolderPaths),
		jsonList(c.Metadata.Authors), jsonList(c.Organization.Tags), jsonList(c.Organization.LibraryIDs),
		jsonList(c.Organization.FolderPaths), jsonList(c.AI.KeyTopics), c.AI.Summary,
		c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert book %q: %w", c.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM books_fts WHERE book_id = ?`, c.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO books_fts (book_id, title, authors, tags, summary, key_topics) VALUES (?,?,?,?,?,?)`,
		c.ID, c.Metadata.Title, strings.Join(c.Metadata.Authors, " "), strings.Join(c.Organization.Tags, " "),
		c.AI.Summary, strings.Join(c.AI.KeyTopics, " ")); err != nil {
		return err
	}

	for _, tag := range c.Organization.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, tag); err != nil {
			return err
		}
	}
	for _, lib := range c.Organization.LibraryIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO libraries (id, name) VALUES (?, ?)`, lib, lib); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func identOrEmpty(c *model.BookCard) string {
	if c.Identifiers == nil {
		return ""
	}
	return c.Identifiers.DOI
}

func arxivOrEmpty(c *model.BookCard) string {
	if c.Identifiers == nil {
		return ""
	}
	return c.Identifiers.ArxivID
}

func firstOrEmpty(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// FindByIdentifier looks up a single card ID by DOI, arXiv ID, ISBN head, or
// exact title, in that order, stopping at the first non-empty match that
// hits. Used by internal/refs to cross-check resolved references against the
// local library (spec.md §4.12: "is_in_library is set to the matched card
// ID when found").
func (idx *Index) FindByIdentifier(doi, arxivID, isbnHead, title string) (string, bool, error) {
	lookups := []struct {
		col, val string
	}{
		{"doi", doi},
		{"arxiv_id", arxivID},
		{"isbn_head", isbnHead},
		{"title", title},
	}
	for _, l := range lookups {
		if l.val == "" {
			continue
		}
		var id string
		err := idx.db.QueryRow(fmt.Sprintf("SELECT id FROM books WHERE %s = ? LIMIT 1", l.col), l.val).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return "", false, err
		}
		return id, true, nil
	}
	return "", false, nil
}

// Delete cascades through join tables and removes the FTS row.
func (idx *Index) Delete(id string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.Exec(`DELETE FROM books_fts WHERE book_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM books WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

const summaryColumns = `id, title, authors_json, year, tags_json, libraries_json, folders_json,
    key_topics_json, doi, arxiv_id, isbn_head, file_path, file_format, rating, read_status,
    folder_id, access_count, last_accessed_at, frecency_score, summary, created_at, updated_at`

func scanSummary(rows *sql.Rows) (Summary, error) {
	var s Summary
	var authors, tags, libs, folders, topics string
	var year sql.NullInt64
	var lastAccessed, createdAt, updatedAt int64
	if err := rows.Scan(&s.ID, &s.Title, &authors, &year, &tags, &libs, &folders, &topics,
		&s.DOI, &s.ArxivID, &s.ISBNHead, &s.FilePath, &s.FileFormat, &s.Rating, &s.ReadStatus,
		&s.FolderID, &s.AccessCount, &lastAccessed, &s.FrecencyScore, &s.Summary, &createdAt, &updatedAt); err != nil {
		return Summary{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		s.Year = &y
	}
	s.Authors = unjsonList(authors)
	s.Tags = unjsonList(tags)
	s.Libraries = unjsonList(libs)
	s.Folders = unjsonList(folders)
	s.KeyTopics = unjsonList(topics)
	if lastAccessed > 0 {
		s.LastAccessed = time.Unix(lastAccessed, 0).UTC()
	}
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return s, nil
}

func (idx *Index) query(clause string, args ...any) ([]Summary, error) {
	rows, err := idx.db.Query(`SELECT `+summaryColumns+` FROM books `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListBooks returns all books ordered by title, paginated. limit <= 0 means unlimited.
func (idx *Index) ListBooks(limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	return idx.query(`ORDER BY LOWER(title) LIMIT ? OFFSET ?`, limit, offset)
}

// ListByLibrary returns books whose libraries_json contains libraryID.
func (idx *Index) ListByLibrary(libraryID string) ([]Summary, error) {
	return idx.query(`WHERE EXISTS (SELECT 1 FROM json_each(libraries_json) WHERE value = ?) ORDER BY LOWER(title)`, libraryID)
}

// ListByTag returns books carrying tag.
func (idx *Index) ListByTag(tag string) ([]Summary, error) {
	return idx.query(`WHERE EXISTS (SELECT 1 FROM json_each(tags_json) WHERE value = ?) ORDER BY LOWER(title)`, tag)
}

// ListByFolderID returns books whose physical folder_id matches id.
func (idx *Index) ListByFolderID(id string) ([]Summary, error) {
	return idx.query(`WHERE folder_id = ? ORDER BY LOWER(title)`, id)
}

// ListByVirtualFolder returns books joined to a virtual folder.
func (idx *Index) ListByVirtualFolder(folderID string) ([]Summary, error) {
	rows, err := idx.db.Query(`SELECT `+summaryColumns+` FROM books b
JOIN book_virtual_folders vf ON vf.book_id = b.id
WHERE vf.folder_id = ? ORDER BY LOWER(b.title)`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListWithArxivID returns every book carrying a non-empty arxiv_id.
func (idx *Index) ListWithArxivID() ([]Summary, error) {
	return idx.query(`WHERE arxiv_id != '' ORDER BY LOWER(title)`)
}

// ListAllFilePaths returns every non-empty file path currently indexed.
func (idx *Index) ListAllFilePaths() ([]string, error) {
	rows, err := idx.db.Query(`SELECT file_path FROM books WHERE file_path != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAllFolderPaths returns every physical folder's disk_path.
func (idx *Index) ListAllFolderPaths() ([]string, error) {
	rows, err := idx.db.Query(`SELECT disk_path FROM folders WHERE type = 'physical' AND disk_path IS NOT NULL AND disk_path != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByStatus returns a map of read_status -> count.
func (idx *Index) CountByStatus() (map[string]int, error) {
	return countGroupBy(idx.db, `SELECT read_status, COUNT(*) FROM books GROUP BY read_status`)
}

// CountByRating returns a map of rating -> count.
func (idx *Index) CountByRating() (map[string]int, error) {
	return countGroupBy(idx.db, `SELECT CAST(rating AS TEXT), COUNT(*) FROM books GROUP BY rating`)
}

// CountByYear returns a map of year -> count (books with no year are omitted).
func (idx *Index) CountByYear() (map[string]int, error) {
	return countGroupBy(idx.db, `SELECT CAST(year AS TEXT), COUNT(*) FROM books WHERE year IS NOT NULL GROUP BY year`)
}

func countGroupBy(db *sql.DB, query string) (map[string]int, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// Stats is the aggregate returned by Stats().
type Stats struct {
	Total        int
	ByStatus     map[string]int
	ByFormat     map[string]int
	WithFile     int
	WithSummary  int
}

// Stats returns totals by status/format/with-file/with-summary (spec.md §4.3).
func (idx *Index) Stats() (Stats, error) {
	var s Stats
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&s.Total); err != nil {
		return Stats{}, err
	}
	byStatus, err := idx.CountByStatus()
	if err != nil {
		return Stats{}, err
	}
	s.ByStatus = byStatus

	byFormat, err := countGroupBy(idx.db, `SELECT file_format, COUNT(*) FROM books WHERE file_format != '' GROUP BY file_format`)
	if err != nil {
		return Stats{}, err
	}
	s.ByFormat = byFormat

	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM books WHERE file_path != ''`).Scan(&s.WithFile); err != nil {
		return Stats{}, err
	}
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM books WHERE summary != ''`).Scan(&s.WithSummary); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// Search runs a full-text query over title/authors/tags/summary/key_topics
// and returns matching book IDs ranked by FTS5's bm25 relevance.
func (idx *Index) Search(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := idx.db.Query(`SELECT book_id FROM books_fts WHERE books_fts MATCH ? ORDER BY bm25(books_fts) LIMIT ?`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecordAccess stores the given access_count, last_accessed_at and
// frecency_score on a book's row as supplied; it does not increment the
// count or compute the score itself (see internal/search.Frecency).
func (idx *Index) RecordAccess(id string, accessCount int, lastAccessed time.Time, frecency float64) error {
	_, err := idx.db.Exec(`UPDATE books SET access_count=?, last_accessed_at=?, frecency_score=? WHERE id=?`,
		accessCount, lastAccessed.Unix(), frecency, id)
	return err
}

// UpsertFolder writes or overwrites a folder row.
func (idx *Index) UpsertFolder(f model.Folder) error {
	var parentID, libID any
	if f.ParentID != "" {
		parentID = f.ParentID
	}
	if f.LibraryID != "" {
		libID = f.LibraryID
	}
	_, err := idx.db.Exec(`
INSERT INTO folders (id, name, type, parent_id, library_id, disk_path, icon, color, sort_order)
VALUES (?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
    name=excluded.name, type=excluded.type, parent_id=excluded.parent_id,
    library_id=excluded.library_id, disk_path=excluded.disk_path,
    icon=excluded.icon, color=excluded.color, sort_order=excluded.sort_order`,
		f.ID, f.Name, string(f.Type), parentID, libID, f.DiskPath, f.Icon, f.Color, f.SortOrder)
	return err
}

// DeleteFolder removes a folder row; ON DELETE SET NULL/CASCADE handles dependents.
func (idx *Index) DeleteFolder(id string) error {
	_, err := idx.db.Exec(`DELETE FROM folders WHERE id = ?`, id)
	return err
}

// AllFolders returns every folder row, for internal/foldertree.Build.
func (idx *Index) AllFolders() ([]model.Folder, error) {
	rows, err := idx.db.Query(`SELECT id, name, type, COALESCE(parent_id,''), COALESCE(library_id,''), COALESCE(disk_path,''), icon, color, sort_order FROM folders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Folder
	for rows.Next() {
		var f model.Folder
		var ftype string
		if err := rows.Scan(&f.ID, &f.Name, &ftype, &f.ParentID, &f.LibraryID, &f.DiskPath, &f.Icon, &f.Color, &f.SortOrder); err != nil {
			return nil, err
		}
		f.Type = model.FolderType(ftype)
		out = append(out, f)
	}
	return out, rows.Err()
}

// FolderByDiskPath finds a physical folder by its relative disk path.
func (idx *Index) FolderByDiskPath(path string) (model.Folder, bool, error) {
	row := idx.db.QueryRow(`SELECT id, name, type, COALESCE(parent_id,''), COALESCE(library_id,''), COALESCE(disk_path,''), icon, color, sort_order
FROM folders WHERE disk_path = ? AND type = 'physical'`, path)
	var f model.Folder
	var ftype string
	err := row.Scan(&f.ID, &f.Name, &ftype, &f.ParentID, &f.LibraryID, &f.DiskPath, &f.Icon, &f.Color, &f.SortOrder)
	if err == sql.ErrNoRows {
		return model.Folder{}, false, nil
	}
	if err != nil {
		return model.Folder{}, false, err
	}
	f.Type = model.FolderType(ftype)
	return f, true, nil
}

// SyncFromCards fully reconciles the index against the card store directory:
// every card produces an upsert, and rows with no corresponding card file
// are removed (spec.md §4.3).
func (idx *Index) SyncFromCards(cards []*model.BookCard) error {
	present := make(map[string]bool, len(cards))
	for _, c := range cards {
		if err := idx.Upsert(c); err != nil {
			return err
		}
		present[c.ID] = true
	}

	rows, err := idx.db.Query(`SELECT id FROM books`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if !present[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if err := idx.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// AppendAction inserts a new, non-reversed action_log row.
func (idx *Index) AppendAction(id, action string, payload, snapshot []byte, ts time.Time) error {
	_, err := idx.db.Exec(`INSERT INTO action_log (id, action, payload, snapshot, ts, reversed) VALUES (?,?,?,?,?,0)`,
		id, action, string(payload), string(snapshot), ts.Unix())
	return err
}

// ActionLogEntry mirrors one row of the action_log table.
type ActionLogEntry struct {
	ID       string
	Action   string
	Payload  []byte
	Snapshot []byte
	TS       time.Time
	Reversed bool
}

// MostRecentUnreversed returns the most recent entry with reversed = 0, or
// ok=false if none exist.
func (idx *Index) MostRecentUnreversed() (ActionLogEntry, bool, error) {
	row := idx.db.QueryRow(`SELECT id, action, payload, snapshot, ts, reversed FROM action_log WHERE reversed = 0 ORDER BY ts DESC LIMIT 1`)
	return scanAction(row)
}

// MostRecentReversed returns the most recently reversed entry (for redo), or ok=false.
func (idx *Index) MostRecentReversed() (ActionLogEntry, bool, error) {
	row := idx.db.QueryRow(`SELECT id, action, payload, snapshot, ts, reversed FROM action_log WHERE reversed = 1 ORDER BY ts DESC LIMIT 1`)
	return scanAction(row)
}

// EntriesSince returns every entry with ts >= since, reversed or not (see
// each entry's Reversed field), oldest first.
func (idx *Index) EntriesSince(since time.Time) ([]ActionLogEntry, error) {
	rows, err := idx.db.Query(`SELECT id, action, payload, snapshot, ts, reversed FROM action_log WHERE ts >= ? ORDER BY ts ASC`, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActionLogEntry
	for rows.Next() {
		var e ActionLogEntry
		var ts int64
		var reversed int
		var payload, snapshot string
		if err := rows.Scan(&e.ID, &e.Action, &payload, &snapshot, &ts, &reversed); err != nil {
			return nil, err
		}
		e.Payload = []byte(payload)
		e.Snapshot = []byte(snapshot)
		e.TS = time.Unix(ts, 0).UTC()
		e.Reversed = reversed != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetReversed flips an action_log entry's reversed flag.
func (idx *Index) SetReversed(id string, reversed bool) error {
	v := 0
	if reversed {
		v = 1
	}
	_, err := idx.db.Exec(`UPDATE action_log SET reversed = ? WHERE id = ?`, v, id)
	return err
}

func scanAction(row *sql.Row) (ActionLogEntry, bool, error) {
	var e ActionLogEntry
	var ts int64
	var reversed int
	var payload, snapshot string
	err := row.Scan(&e.ID, &e.Action, &payload, &snapshot, &ts, &reversed)
	if err == sql.ErrNoRows {
		return ActionLogEntry{}, false, nil
	}
	if err != nil {
		return ActionLogEntry{}, false, err
	}
	e.Payload = []byte(payload)
	e.Snapshot = []byte(snapshot)
	e.TS = time.Unix(ts, 0).UTC()
	e.Reversed = reversed != 0
	return e, true, nil
}
