package model

// Library is a top-level logical grouping identified by a ULID inside its
// library.toml manifest (spec.md §3). The in-memory Library value mirrors
// the manifest plus the resolved root path; see internal/manifest for the
// on-disk TOML shape and internal/libroot for discovery/initialization.
type Library struct {
	ID          string
	Name        string
	RootPath    string
	ExtraRoots  []string
	SchemaVersion int
	CreatedAt   Time
}

// FolderType enumerates the three kinds of folder node (spec.md §3).
type FolderType string

const (
	FolderPhysical FolderType = "physical"
	FolderVirtual  FolderType = "virtual"
	FolderRoot     FolderType = "library-root"
)

// Folder is a single node in a library's folder tree.
type Folder struct {
	ID        string
	Name      string
	Type      FolderType
	ParentID  string // empty = no parent
	LibraryID string
	DiskPath  string // relative to library root; only meaningful for Physical
	Icon      string
	Color     string
	SortOrder int
	CreatedAt Time
	UpdatedAt Time
}
