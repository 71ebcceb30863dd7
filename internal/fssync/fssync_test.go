package fssync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscope/omniscope/internal/index"
	"github.com/omniscope/omniscope/internal/model"
)

func openIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.Open(filepath.Join(t.TempDir(), "omniscope.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestScanDetectsNewDirectoryAndUntrackedFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Fiction"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Fiction", "book.pdf"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".libr"), 0755); err != nil {
		t.Fatal(err)
	}

	idx := openIndex(t)
	report, err := Scan(root, idx, []string{"pdf", "epub"}, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.NewOnDisk) != 1 || report.NewOnDisk[0] != "Fiction" {
		t.Errorf("NewOnDisk = %v", report.NewOnDisk)
	}
	if len(report.UntrackedFiles) != 1 {
		t.Errorf("UntrackedFiles = %v", report.UntrackedFiles)
	}
}

func TestScanMatchesKnownFolder(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Fiction"), 0755); err != nil {
		t.Fatal(err)
	}
	idx := openIndex(t)
	if err := idx.UpsertFolder(model.Folder{ID: "f1", Name: "Fiction", Type: model.FolderPhysical, DiskPath: "Fiction"}); err != nil {
		t.Fatal(err)
	}

	report, err := Scan(root, idx, nil, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if report.InSync != 1 {
		t.Errorf("InSync = %d, want 1", report.InSync)
	}
	if len(report.NewOnDisk) != 0 {
		t.Errorf("NewOnDisk = %v, want none", report.NewOnDisk)
	}
}

func TestScanDetectsMissingOnDisk(t *testing.T) {
	root := t.TempDir()
	idx := openIndex(t)
	if err := idx.UpsertFolder(model.Folder{ID: "f1", Name: "Ghost", Type: model.FolderPhysical, DiskPath: "Ghost"}); err != nil {
		t.Fatal(err)
	}

	report, err := Scan(root, idx, nil, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.MissingOnDisk) != 1 || report.MissingOnDisk[0].ID != "f1" {
		t.Errorf("MissingOnDisk = %v", report.MissingOnDisk)
	}
}

func TestApplySyncDiskWinsCreatesAndDeletesRows(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "NewDir"), 0755); err != nil {
		t.Fatal(err)
	}
	idx := openIndex(t)
	if err := idx.UpsertFolder(model.Folder{ID: "f1", Name: "Ghost", Type: model.FolderPhysical, DiskPath: "Ghost"}); err != nil {
		t.Fatal(err)
	}

	report, err := Scan(root, idx, nil, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplySync(root, report, DiskWins, idx); err != nil {
		t.Fatal(err)
	}

	f, ok, err := idx.FolderByDiskPath("NewDir")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || f.Name != "NewDir" {
		t.Errorf("expected NewDir folder row created, got %+v ok=%v", f, ok)
	}

	all, err := idx.AllFolders()
	if err != nil {
		t.Fatal(err)
	}
	for _, fo := range all {
		if fo.ID == "f1" {
			t.Errorf("expected Ghost folder row deleted")
		}
	}
}

func TestApplySyncDatabaseWinsRecreatesDirectory(t *testing.T) {
	root := t.TempDir()
	idx := openIndex(t)
	if err := idx.UpsertFolder(model.Folder{ID: "f1", Name: "Ghost", Type: model.FolderPhysical, DiskPath: "Ghost"}); err != nil {
		t.Fatal(err)
	}

	report, err := Scan(root, idx, nil, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplySync(root, report, DatabaseWins, idx); err != nil {
		t.Fatal(err)
	}

	if info, err := os.Stat(filepath.Join(root, "Ghost")); err != nil || !info.IsDir() {
		t.Errorf("expected Ghost directory recreated on disk")
	}
}

func TestApplySyncInteractiveMakesNoChanges(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "NewDir"), 0755); err != nil {
		t.Fatal(err)
	}
	idx := openIndex(t)

	report, err := Scan(root, idx, nil, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplySync(root, report, Interactive, idx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := idx.FolderByDiskPath("NewDir"); ok {
		t.Errorf("Interactive strategy must not create rows")
	}
}
