package undo

import (
	"path/filepath"
	"testing"

	"github.com/omniscope/omniscope/internal/cardstore"
	"github.com/omniscope/omniscope/internal/index"
	"github.com/omniscope/omniscope/internal/model"
)

func newLog(t *testing.T) (*Log, *index.Index, *cardstore.Store) {
	t.Helper()
	dir := t.TempDir()
	idx, err := index.Open(filepath.Join(dir, "omniscope.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	store, err := cardstore.New(filepath.Join(dir, "cards"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return New(idx, store), idx, store
}

func TestUndoCreateRemovesCard(t *testing.T) {
	log, idx, store := newLog(t)
	card := model.NewCard(model.Metadata{Title: "New Card"})
	if err := store.Save(card); err != nil {
		t.Fatal(err)
	}
	if err := idx.Upsert(card); err != nil {
		t.Fatal(err)
	}
	if err := log.RecordCreate(card); err != nil {
		t.Fatal(err)
	}

	ok, err := log.Undo()
	if err != nil || !ok {
		t.Fatalf("expected undo to succeed, got ok=%v err=%v", ok, err)
	}
	if _, err := store.Load(card.ID); err == nil {
		t.Fatalf("expected card to be removed from store after undo")
	}
}

func TestUndoUpdateRestoresSnapshot(t *testing.T) {
	log, idx, store := newLog(t)
	before := model.NewCard(model.Metadata{Title: "Original"})
	store.Save(before)
	idx.Upsert(before)

	after := *before
	after.Metadata.Title = "Changed"
	after.Touch()
	store.Save(&after)
	idx.Upsert(&after)
	if err := log.RecordUpdate(before, &after); err != nil {
		t.Fatal(err)
	}

	ok, err := log.Undo()
	if err != nil || !ok {
		t.Fatalf("undo failed: ok=%v err=%v", ok, err)
	}
	restored, err := store.Load(before.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Metadata.Title != "Original" {
		t.Errorf("expected title restored to %q, got %q", "Original", restored.Metadata.Title)
	}
}

func TestRedoReappliesForwardChange(t *testing.T) {
	log, idx, store := newLog(t)
	before := model.NewCard(model.Metadata{Title: "Original"})
	store.Save(before)
	idx.Upsert(before)

	after := *before
	after.Metadata.Title = "Changed"
	after.Touch()
	store.Save(&after)
	idx.Upsert(&after)
	log.RecordUpdate(before, &after)

	if ok, err := log.Undo(); err != nil || !ok {
		t.Fatalf("undo failed: %v %v", ok, err)
	}
	if ok, err := log.Redo(); err != nil || !ok {
		t.Fatalf("redo failed: ok=%v err=%v", ok, err)
	}
	restored, err := store.Load(before.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Metadata.Title != "Changed" {
		t.Errorf("expected title %q after redo, got %q", "Changed", restored.Metadata.Title)
	}
}

func TestUndoDeleteRestoresCard(t *testing.T) {
	log, idx, store := newLog(t)
	card := model.NewCard(model.Metadata{Title: "Doomed"})
	store.Save(card)
	idx.Upsert(card)
	if err := log.RecordDelete(card); err != nil {
		t.Fatal(err)
	}
	store.Delete(card.ID)
	idx.Delete(card.ID)

	ok, err := log.Undo()
	if err != nil || !ok {
		t.Fatalf("undo failed: ok=%v err=%v", ok, err)
	}
	if _, err := store.Load(card.ID); err != nil {
		t.Fatalf("expected card restored: %v", err)
	}
}

func TestUndoWithNoEntriesReturnsFalse(t *testing.T) {
	log, _, _ := newLog(t)
	ok, err := log.Undo()
	if err != nil || ok {
		t.Fatalf("expected no-op undo, got ok=%v err=%v", ok, err)
	}
}
