package model

import "testing"

func TestAddNoteAppendsAndTouches(t *testing.T) {
	c := NewCard(Metadata{Title: "Test Book"})
	startVersion := c.Version

	n := c.AddNote("margin note", "alice")

	if len(c.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(c.Notes))
	}
	if n.ID == "" {
		t.Error("expected note ID to be set")
	}
	if n.Text != "margin note" || n.Author != "alice" {
		t.Errorf("unexpected note contents: %+v", n)
	}
	if c.Version != startVersion+1 {
		t.Errorf("expected Touch to bump version to %d, got %d", startVersion+1, c.Version)
	}
}

func TestAddNoteMultipleKeepOrder(t *testing.T) {
	c := NewCard(Metadata{Title: "Test Book"})
	c.AddNote("first", "alice")
	c.AddNote("second", "bob")

	if len(c.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(c.Notes))
	}
	if c.Notes[0].Text != "first" || c.Notes[1].Text != "second" {
		t.Errorf("notes out of order: %+v", c.Notes)
	}
	if c.Notes[0].ID == c.Notes[1].ID {
		t.Error("expected distinct note IDs")
	}
}

func TestCardValidateRejectsEmptyID(t *testing.T) {
	c := NewCard(Metadata{Title: "Test Book"})
	c.ID = ""
	if err := c.Validate(); err == nil {
		t.Error("expected validation error for empty ID")
	}
}
