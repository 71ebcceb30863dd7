// Package manifest reads and writes a library's library.toml file (spec.md
// §3 LibraryManifest, §6 on-disk format). Load decodes the file as written,
// without merging in New's defaults; WatchExtensions is the only accessor
// that falls back to a default when the file leaves its value empty.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/omniscope/omniscope/internal/errs"
)

// CurrentSchemaVersion is the manifest schema version new libraries are
// initialized with.
const CurrentSchemaVersion = 1

// OmniscopeVersion is stamped into new manifests for diagnostics.
const OmniscopeVersion = "0.1"

// Manifest is the decoded form of library.toml.
type Manifest struct {
	Library  libraryTable  `toml:"library"`
	Settings settingsTable `toml:"settings"`
}

type libraryTable struct {
	Name             string    `toml:"name"`
	ID               string    `toml:"id"`
	Version          int       `toml:"version"`
	CreatedAt        time.Time `toml:"created_at"`
	OmniscopeVersion string    `toml:"omniscope_version"`
	Roots            rootsTable `toml:"roots"`
}

type rootsTable struct {
	Extra []string `toml:"extra"`
}

type settingsTable struct {
	DefaultViewerPDF string       `toml:"default_viewer_pdf,omitempty"`
	Language         string       `toml:"language,omitempty"`
	AutoIndex        bool         `toml:"auto_index,omitempty"`
	Watcher          watcherTable `toml:"watcher"`
}

type watcherTable struct {
	AutoImport        bool     `toml:"auto_import"`
	DebounceMs        int      `toml:"debounce_ms"`
	MinFileSizeBytes  int64    `toml:"min_file_size_bytes"`
	WatchExtensions   []string `toml:"watch_extensions"`
}

// DefaultWatchExtensions mirrors spec.md §6's sample manifest.
var DefaultWatchExtensions = []string{"pdf", "epub", "djvu", "fb2", "mobi", "azw3", "cbz", "cbr"}

// New builds a fresh manifest for a library with the given name and ULID.
func New(name, id string) Manifest {
	return Manifest{
		Library: libraryTable{
			Name:             name,
			ID:               id,
			Version:          CurrentSchemaVersion,
			CreatedAt:        time.Now().UTC(),
			OmniscopeVersion: OmniscopeVersion,
		},
		Settings: settingsTable{
			Language: "en",
			Watcher: watcherTable{
				DebounceMs:       2000,
				MinFileSizeBytes: 1024,
				WatchExtensions:  DefaultWatchExtensions,
			},
		},
	}
}

// Load reads and decodes library.toml at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %q: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, &errs.Config{Msg: fmt.Sprintf("parse manifest %q: %v", path, err)}
	}
	if m.Library.ID == "" {
		return Manifest{}, &errs.Config{Msg: fmt.Sprintf("manifest %q missing library.id", path)}
	}
	return m, nil
}

// Save writes the manifest to path, creating parent directories as needed.
func Save(path string, m Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest dir for %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}
	return nil
}

// ID returns the library's stable ULID.
func (m Manifest) ID() string { return m.Library.ID }

// Name returns the library's display name.
func (m Manifest) Name() string { return m.Library.Name }

// ExtraRoots returns the configured extra root directories.
func (m Manifest) ExtraRoots() []string { return m.Library.Roots.Extra }

// WatchExtensions returns the configured watcher extensions, falling back to
// DefaultWatchExtensions if the manifest left the list empty.
func (m Manifest) WatchExtensions() []string {
	if len(m.Settings.Watcher.WatchExtensions) == 0 {
		return DefaultWatchExtensions
	}
	return m.Settings.Watcher.WatchExtensions
}

// DebounceInterval returns the configured watcher debounce interval.
func (m Manifest) DebounceInterval() time.Duration {
	return time.Duration(m.Settings.Watcher.DebounceMs) * time.Millisecond
}

// MinFileSizeBytes returns the configured watcher minimum book-file size.
func (m Manifest) MinFileSizeBytes() int64 { return m.Settings.Watcher.MinFileSizeBytes }

// AutoImport reports whether the watcher should automatically import new
// book files it detects rather than just reporting them.
func (m Manifest) AutoImport() bool { return m.Settings.Watcher.AutoImport }
