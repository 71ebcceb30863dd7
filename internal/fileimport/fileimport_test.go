package fileimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscope/omniscope/internal/model"
)

func TestImportNonEpubSplitsFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Steve Klabnik - The Rust Programming Language.txt")
	if err := os.WriteFile(path, []byte("contents"), 0644); err != nil {
		t.Fatal(err)
	}

	card, err := Import(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if card.Metadata.Title != "The Rust Programming Language" {
		t.Errorf("title = %q, want %q", card.Metadata.Title, "The Rust Programming Language")
	}
	if len(card.Metadata.Authors) != 1 || card.Metadata.Authors[0] != "Steve Klabnik" {
		t.Errorf("authors = %v, want [Steve Klabnik]", card.Metadata.Authors)
	}
	if card.File == nil || card.File.Status != model.FileStatusPresent {
		t.Fatalf("file = %+v, want Present", card.File)
	}
	if card.File.Format != model.FormatTXT {
		t.Errorf("format = %q, want txt", card.File.Format)
	}
	if card.File.SHA256 == "" {
		t.Error("expected a non-empty sha256")
	}
}

func TestImportFilenameWithoutSeparator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "untitled-notes.pdf")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	card, err := Import(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if card.Metadata.Title != "untitled-notes" {
		t.Errorf("title = %q, want %q", card.Metadata.Title, "untitled-notes")
	}
	if len(card.Metadata.Authors) != 0 {
		t.Errorf("authors = %v, want none", card.Metadata.Authors)
	}
	if card.File.Format != model.FormatPDF {
		t.Errorf("format = %q, want pdf", card.File.Format)
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := Import(filepath.Join(t.TempDir(), "missing.pdf"), Options{}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
