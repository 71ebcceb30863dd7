// Package libroot locates, validates, and initializes an omniscope
// library's on-disk layout (spec.md §4.4, §6). Discovery follows a
// "walk up from a path, consult an environment override" idiom,
// generalized to library roots instead of a single config file.
package libroot

import (
	"os"
	"path/filepath"

	"github.com/omniscope/omniscope/internal/errs"
	"github.com/omniscope/omniscope/internal/manifest"
	"github.com/omniscope/omniscope/internal/model"
)

// EnvOverride is the environment variable that, if set, is consulted before
// walking ancestors (spec.md §6: OMNISCOPE_LIBRARY).
const EnvOverride = "OMNISCOPE_LIBRARY"

// dotDir is the name of a library's metadata subdirectory.
const dotDir = ".libr"

// Root describes a located, validated library root and its derived paths.
type Root struct {
	Path     string // library root directory
	Manifest manifest.Manifest
}

func dot(root string) string           { return filepath.Join(root, dotDir) }
func manifestPath(root string) string  { return filepath.Join(dot(root), "library.toml") }

// CardsDir returns the card store directory.
func (r Root) CardsDir() string { return filepath.Join(dot(r.Path), "cards") }

// DBPath returns the path to the relational index database file.
func (r Root) DBPath() string { return filepath.Join(dot(r.Path), "db", "omniscope.db") }

// TantivyDir is reserved (spec.md §6) for a future full-text index.
func (r Root) TantivyDir() string { return filepath.Join(dot(r.Path), "db", "tantivy") }

// VectorsDir is reserved (spec.md §6) for future embedding storage.
func (r Root) VectorsDir() string { return filepath.Join(dot(r.Path), "vectors") }

// CacheDir returns the root of the namespaced disk caches.
func (r Root) CacheDir() string { return filepath.Join(dot(r.Path), "cache") }

// UndoDir returns the action-log spillover directory.
func (r Root) UndoDir() string { return filepath.Join(dot(r.Path), "undo") }

// BackupsDir returns the backups directory.
func (r Root) BackupsDir() string { return filepath.Join(dot(r.Path), "backups") }

// Discover walks up from start looking for a directory containing
// .libr/library.toml. If the OMNISCOPE_LIBRARY environment variable is set,
// it is tried first (and must itself validate). known is an optional list
// of previously registered library paths consulted after the walk, mirroring
// spec.md §4.4's "a discovery variant additionally consults ... a list of
// known libraries from a configuration map".
func Discover(start string, known []string) (Root, error) {
	if envPath := os.Getenv(EnvOverride); envPath != "" {
		if r, err := Validate(envPath); err == nil {
			return r, nil
		}
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return Root{}, err
	}
	dir := abs
	for {
		if r, err := Validate(dir); err == nil {
			return r, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, k := range known {
		if r, err := Validate(k); err == nil {
			return r, nil
		}
	}

	return Root{}, &errs.LibraryNotInitialized{Path: start}
}

// Validate checks that path/.libr exists and that its manifest parses.
func Validate(path string) (Root, error) {
	info, err := os.Stat(dot(path))
	if err != nil || !info.IsDir() {
		return Root{}, &errs.LibraryNotInitialized{Path: path}
	}
	m, err := manifest.Load(manifestPath(path))
	if err != nil {
		return Root{}, err
	}
	return Root{Path: path, Manifest: m}, nil
}

// InitOptions configures Init.
type InitOptions struct {
	// CreateDir requests that the parent directory be created if missing.
	CreateDir bool
}

// Init creates the full .libr subtree, writes a fresh manifest, and returns
// the resulting Root. Opening the index database against this root is the
// caller's responsibility (internal/index).
func Init(path, name string, opts InitOptions) (Root, error) {
	if _, err := os.Stat(dot(path)); err == nil {
		return Root{}, &errs.LibraryAlreadyExists{Path: path}
	}

	parent := filepath.Dir(path)
	if _, err := os.Stat(parent); err != nil {
		if !opts.CreateDir {
			return Root{}, &errs.DirectoryNotFound{Path: parent}
		}
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return Root{}, err
	}

	for _, sub := range []string{
		"cards",
		filepath.Join("db", "tantivy"),
		"vectors",
		filepath.Join("cache", "covers"),
		filepath.Join("cache", "crossref"),
		filepath.Join("cache", "s2"),
		filepath.Join("cache", "annas"),
		"undo",
		"backups",
	} {
		if err := os.MkdirAll(filepath.Join(dot(path), sub), 0755); err != nil {
			return Root{}, err
		}
	}
	// db/ itself, for the sqlite file alongside db/tantivy/.
	if err := os.MkdirAll(filepath.Join(dot(path), "db"), 0755); err != nil {
		return Root{}, err
	}

	m := manifest.New(name, model.NewID())
	if err := manifest.Save(manifestPath(path), m); err != nil {
		return Root{}, err
	}

	return Root{Path: path, Manifest: m}, nil
}
