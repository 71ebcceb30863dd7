package cardstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscope/omniscope/internal/errs"
	"github.com/omniscope/omniscope/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	card := model.NewCard(model.Metadata{Title: "The Rust Programming Language", Authors: []string{"Steve Klabnik"}})
	card.Organization.Tags = []string{"rust", "systems"}

	if err := s.Save(card); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Metadata.Title != card.Metadata.Title {
		t.Errorf("title = %q, want %q", loaded.Metadata.Title, card.Metadata.Title)
	}
	if len(loaded.Organization.Tags) != 2 {
		t.Errorf("tags = %v", loaded.Organization.Tags)
	}
}

func TestLoadNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Load("missing")
	var nf *errs.NotFound
	if !isNotFound(err, &nf) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func isNotFound(err error, target **errs.NotFound) bool {
	nf, ok := err.(*errs.NotFound)
	if ok {
		*target = nf
	}
	return ok
}

func TestDeleteIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete on missing card should be idempotent: %v", err)
	}
}

func TestListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	good := model.NewCard(model.Metadata{Title: "Good Book"})
	if err := s.Save(good); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "badid.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cards, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 {
		t.Fatalf("List() returned %d cards, want 1", len(cards))
	}
}
