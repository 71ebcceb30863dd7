// Package fssync reconciles the on-disk folder tree and book files against
// the relational index (spec.md §4.6). It never opens, creates or moves
// book files; only directories and folder rows move under its control
// (a directory removed under DatabaseWins takes its contents with it).
//
// The recursive walk (skip dotfiles, classify by extension, keep scanning
// past unreadable entries) generalizes a "build an in-memory catalog"
// directory scan into "diff disk state against index state".
package fssync

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/omniscope/omniscope/internal/index"
	"github.com/omniscope/omniscope/internal/model"
)

// SyncReport is the result of a read-only scan of the library root.
type SyncReport struct {
	NewOnDisk      []string // directories on disk with no matching folders.disk_path row, relative to root
	MissingOnDisk  []model.Folder // folders rows whose disk_path no longer exists
	InSync         int            // count of disk directories matched to index rows
	UntrackedFiles []string       // recognized book files whose path isn't any card's file.path
}

func isDotted(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Scan walks root recursively (skipping any path component starting with
// ".") and compares it against the folders and books rows in idx, plus the
// set of file paths already claimed by cards (filePaths).
func Scan(root string, idx *index.Index, watchExtensions []string, filePaths map[string]bool) (SyncReport, error) {
	knownFolders, err := idx.AllFolders()
	if err != nil {
		return SyncReport{}, err
	}
	byDiskPath := make(map[string]model.Folder, len(knownFolders))
	for _, f := range knownFolders {
		if f.Type == model.FolderPhysical && f.DiskPath != "" {
			byDiskPath[f.DiskPath] = f
		}
	}

	extSet := make(map[string]bool, len(watchExtensions))
	for _, e := range watchExtensions {
		extSet[strings.ToLower(e)] = true
	}

	var report SyncReport
	seenDiskPaths := make(map[string]bool)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep scanning
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isDotted(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			seenDiskPaths[rel] = true
			if _, ok := byDiskPath[rel]; ok {
				report.InSync++
			} else {
				report.NewOnDisk = append(report.NewOnDisk, rel)
			}
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if extSet[ext] && !filePaths[path] {
			report.UntrackedFiles = append(report.UntrackedFiles, path)
		}
		return nil
	})
	if err != nil {
		return SyncReport{}, err
	}

	for diskPath, f := range byDiskPath {
		if !seenDiskPaths[diskPath] {
			report.MissingOnDisk = append(report.MissingOnDisk, f)
		}
	}

	sort.Strings(report.NewOnDisk)
	sort.Strings(report.UntrackedFiles)
	sort.Slice(report.MissingOnDisk, func(i, j int) bool {
		return report.MissingOnDisk[i].DiskPath < report.MissingOnDisk[j].DiskPath
	})

	return report, nil
}

// Strategy selects how ApplySync resolves drift found by Scan.
type Strategy int

const (
	// DiskWins creates folder rows for new_on_disk and deletes rows for missing_on_disk.
	DiskWins Strategy = iota
	// DatabaseWins recreates missing directories and deletes untracked ones.
	DatabaseWins
	// Interactive makes no changes; the caller resolves entries individually.
	Interactive
)

// ApplySync resolves the drift in report against root and idx per strategy.
// It never creates book files. DatabaseWins removes each new_on_disk
// directory recursively, so any files inside such a directory are removed
// with it.
func ApplySync(root string, report SyncReport, strategy Strategy, idx *index.Index) error {
	switch strategy {
	case Interactive:
		return nil

	case DiskWins:
		for _, rel := range report.NewOnDisk {
			if err := createFolderRow(idx, rel); err != nil {
				return err
			}
		}
		for _, f := range report.MissingOnDisk {
			if err := idx.DeleteFolder(f.ID); err != nil {
				return err
			}
		}
		return nil

	case DatabaseWins:
		for _, f := range report.MissingOnDisk {
			if err := os.MkdirAll(filepath.Join(root, f.DiskPath), 0755); err != nil {
				return err
			}
		}
		for _, rel := range report.NewOnDisk {
			if err := os.RemoveAll(filepath.Join(root, rel)); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

// createFolderRow inserts a physical folder row for relative path rel,
// linking it under the folder whose disk_path is rel's parent (or leaving
// it rootless if no such folder exists).
func createFolderRow(idx *index.Index, rel string) error {
	parentRel := filepath.ToSlash(filepath.Dir(rel))
	var parentID string
	if parentRel != "." && parentRel != "" {
		if pf, ok, err := idx.FolderByDiskPath(parentRel); err != nil {
			return err
		} else if ok {
			parentID = pf.ID
		}
	}

	f := model.Folder{
		ID:        model.NewID(),
		Name:      filepath.Base(rel),
		Type:      model.FolderPhysical,
		ParentID:  parentID,
		DiskPath:  rel,
		CreatedAt: model.Now(),
		UpdatedAt: model.Now(),
	}
	return idx.UpsertFolder(f)
}
